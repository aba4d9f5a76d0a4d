package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
)

// fencePattern matches a whole reply wrapped in a ``` block with an optional
// language tag on the opening fence.
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z0-9_.+-]*[ \\t]*\\r?\\n?(.*?)\\s*```$")

// decodeJSON decodes a single JSON value, keeping numbers exact and rejecting
// trailing data.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// extractText pulls the generated text out of a provider envelope. The first
// candidate whose parts concatenate to non-empty text wins.
func extractText(envelope any) (string, error) {
	root, ok := envelope.(map[string]any)
	if !ok {
		return "", domain.NewProviderError("malformed data")
	}

	if raw, present := root["candidates"]; present && raw != nil {
		candidates, ok := raw.([]any)
		if !ok {
			return "", domain.NewProviderError("malformed data")
		}
		for _, candidate := range candidates {
			if text := candidateText(candidate); strings.TrimSpace(text) != "" {
				return text, nil
			}
		}
	}

	if reason := blockReason(root); reason != "" {
		return "", domain.NewProviderError("provider blocked the request: %s", reason)
	}

	return "", domain.NewProviderError("empty response")
}

func candidateText(candidate any) string {
	c, ok := candidate.(map[string]any)
	if !ok {
		return ""
	}
	content, ok := c["content"].(map[string]any)
	if !ok {
		return ""
	}
	parts, ok := content["parts"].([]any)
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, part := range parts {
		p, ok := part.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := p["text"].(string); ok {
			b.WriteString(text)
		}
	}
	return b.String()
}

func blockReason(root map[string]any) string {
	feedback, ok := root["promptFeedback"].(map[string]any)
	if !ok {
		return ""
	}
	reason, _ := feedback["blockReason"].(string)
	return strings.TrimSpace(reason)
}

// normalizeText strips a code fence, or else cuts surrounding prose away from
// the outermost JSON object.
func normalizeText(text string) string {
	t := strings.TrimSpace(text)

	if m := fencePattern.FindStringSubmatch(t); m != nil {
		t = strings.TrimSpace(m[1])
		if strings.HasPrefix(t, "{") {
			return t
		}
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1]
	}
	return t
}

// parseSuggestions validates the normalized text and maps it to records.
func parseSuggestions(text string) ([]domain.Suggestion, error) {
	payload, err := decodeJSON([]byte(text))
	if err != nil {
		return nil, domain.NewProviderError("non-JSON suggestions")
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, domain.NewProviderError("provider did not return suggestions")
	}
	items, ok := obj["suggestions"].([]any)
	if !ok {
		return nil, domain.NewProviderError("provider did not return suggestions")
	}

	out := make([]domain.Suggestion, 0, len(items))
	for _, item := range items {
		s, err := suggestionFromPayload(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func suggestionFromPayload(item any) (domain.Suggestion, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return domain.Suggestion{}, domain.NewProviderError("malformed suggestion payload")
	}

	heading, ok := obj["heading"]
	if !ok {
		return domain.Suggestion{}, domain.NewProviderError("missing expected field: heading")
	}
	description, ok := obj["description"]
	if !ok {
		return domain.Suggestion{}, domain.NewProviderError("missing expected field: description")
	}

	keywords, err := stringList("keywords", obj["keywords"])
	if err != nil {
		return domain.Suggestion{}, err
	}
	risks, err := stringList("risks", obj["risks"])
	if err != nil {
		return domain.Suggestion{}, err
	}

	return domain.Suggestion{
		Heading:     stringify(heading),
		Description: stringify(description),
		Keywords:    keywords,
		Risks:       risks,
	}, nil
}

// stringList accepts a JSON list or a comma-separated string. A missing or
// null field yields an empty list.
func stringList(field string, v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		out := []string{}
		for _, piece := range strings.Split(val, ",") {
			if p := strings.TrimSpace(piece); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, elem := range val {
			out = append(out, stringify(elem))
		}
		return out, nil
	default:
		return nil, domain.NewProviderError("malformed field: %s", field)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
