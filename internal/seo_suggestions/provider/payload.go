package provider

import (
	"fmt"
	"strings"

	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
)

// GenerateRequest is the single-turn generation body sent to the provider.
type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

const responseContract = `{"suggestions": [{"heading": string, "description": string, "keywords": [string], "risks": [string]}]}`

// BuildRequest validates the post fields and turns them into a provider
// payload. It performs no I/O.
func BuildRequest(title, summary, content string) (*GenerateRequest, error) {
	in, err := domain.SuggestionInput{Title: title, Summary: summary, Content: content}.Normalize()
	if err != nil {
		return nil, err
	}

	return &GenerateRequest{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: buildPrompt(in)}},
		}},
		GenerationConfig: GenerationConfig{ResponseMimeType: "application/json"},
	}, nil
}

func buildPrompt(in domain.SuggestionInput) string {
	var b strings.Builder
	b.WriteString("You are an SEO assistant. Provide actionable suggestions for blog optimisation, ")
	b.WriteString("including improved headings, meta descriptions, and keywords. ")
	b.WriteString("Point out risks such as unverifiable claims or keyword stuffing.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Summary: %s\n", in.Summary)
	fmt.Fprintf(&b, "Content:\n%s\n\n", in.Content)
	b.WriteString("Respond with only a JSON object matching this shape, with no commentary or code fences:\n")
	b.WriteString(responseContract)
	return b.String()
}
