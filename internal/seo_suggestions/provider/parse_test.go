package provider

import (
	"testing"

	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeOf(t *testing.T, raw string) any {
	t.Helper()
	v, err := decodeJSON([]byte(raw))
	require.NoError(t, err)
	return v
}

func TestExtractText(t *testing.T) {
	t.Run("concatenates parts of first non-empty candidate", func(t *testing.T) {
		env := envelopeOf(t, `{"candidates":[
			{"content":{"parts":[{"text":"  "}]}},
			{"content":{"parts":[{"text":"{\"sugg"},{"text":"estions\":[]}"}]}},
			{"content":{"parts":[{"text":"ignored"}]}}
		]}`)
		text, err := extractText(env)
		require.NoError(t, err)
		assert.Equal(t, `{"suggestions":[]}`, text)
	})

	t.Run("block reason without candidates", func(t *testing.T) {
		env := envelopeOf(t, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
		_, err := extractText(env)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProvider)
		assert.Contains(t, err.Error(), "SAFETY")
	})

	t.Run("no usable candidate", func(t *testing.T) {
		env := envelopeOf(t, `{"candidates":[{"content":{"parts":[]}},{"finishReason":"STOP"}]}`)
		_, err := extractText(env)
		require.Error(t, err)
		assert.EqualError(t, err, "empty response")
	})

	t.Run("candidates of wrong type", func(t *testing.T) {
		_, err := extractText(envelopeOf(t, `{"candidates":{"text":"x"}}`))
		assert.EqualError(t, err, "malformed data")
	})

	t.Run("envelope not an object", func(t *testing.T) {
		_, err := extractText(envelopeOf(t, `["a"]`))
		assert.EqualError(t, err, "malformed data")
	})
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"fence with language tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence on one line", "```json {\"a\":1}```", `{"a":1}`},
		{"crlf fence", "```json\r\n{\"a\":1}\r\n```", `{"a":1}`},
		{"surrounding prose", "Here you go:\n{\"a\":{\"b\":2}}\nHope it helps!", `{"a":{"b":2}}`},
		{"prose inside fence", "```\nSure! {\"a\":1} done\n```", `{"a":1}`},
		{"no braces", "nothing useful", "nothing useful"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeText(tc.in))
		})
	}
}

func TestParseSuggestions(t *testing.T) {
	t.Run("maps records in provider order", func(t *testing.T) {
		got, err := parseSuggestions(`{"suggestions":[
			{"heading":"First","description":"one","keywords":["go","seo"],"risks":[]},
			{"heading":"Second","description":"two"}
		]}`)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.Suggestion{Heading: "First", Description: "one", Keywords: []string{"go", "seo"}, Risks: []string{}}, got[0])
		assert.Equal(t, domain.Suggestion{Heading: "Second", Description: "two", Keywords: []string{}, Risks: []string{}}, got[1])
	})

	t.Run("comma separated keywords", func(t *testing.T) {
		got, err := parseSuggestions(`{"suggestions":[{"heading":"h","description":"d","keywords":"ai, blog, seo","risks":" , stuffing ,"}]}`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"ai", "blog", "seo"}, got[0].Keywords)
		assert.Equal(t, []string{"stuffing"}, got[0].Risks)
	})

	t.Run("coerces scalar values to strings", func(t *testing.T) {
		got, err := parseSuggestions(`{"suggestions":[{"heading":42,"description":null,"keywords":[1.50,true,{"k":"v"}]}]}`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "42", got[0].Heading)
		assert.Equal(t, "", got[0].Description)
		assert.Equal(t, []string{"1.50", "true", `{"k":"v"}`}, got[0].Keywords)
	})

	t.Run("empty list is not an error", func(t *testing.T) {
		got, err := parseSuggestions(`{"suggestions":[]}`)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	failures := []struct {
		name string
		in   string
		want string
	}{
		{"not json", `suggestions: none`, "non-JSON suggestions"},
		{"trailing garbage", `{"suggestions":[]} extra`, "non-JSON suggestions"},
		{"top level list", `[{"heading":"h"}]`, "provider did not return suggestions"},
		{"missing suggestions", `{"items":[]}`, "provider did not return suggestions"},
		{"suggestions is a map", `{"suggestions":{"heading":"h"}}`, "provider did not return suggestions"},
		{"element not object", `{"suggestions":["h"]}`, "malformed suggestion payload"},
		{"missing heading", `{"suggestions":[{"description":"d"}]}`, "missing expected field: heading"},
		{"missing description", `{"suggestions":[{"heading":"h"}]}`, "missing expected field: description"},
		{"keywords wrong type", `{"suggestions":[{"heading":"h","description":"d","keywords":7}]}`, "malformed field: keywords"},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSuggestions(tc.in)
			assert.Nil(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrProvider)
			assert.EqualError(t, err, tc.want)
		})
	}
}
