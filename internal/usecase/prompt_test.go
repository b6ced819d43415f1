package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSummaryAnswer(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		summary   string
		keyPoints []string
		errors    []string
	}{
		{
			name:      "strict json",
			raw:       `{"summary":"S","keyPoints":["a","b"],"errors":["e"]}`,
			summary:   "S",
			keyPoints: []string{"a", "b"},
			errors:    []string{"e"},
		},
		{
			name:      "json wrapped in prose",
			raw:       "Here you go:\n```json\n{\"summary\":\"S\",\"keyPoints\":[\"a\"]}\n```",
			summary:   "S",
			keyPoints: []string{"a"},
			errors:    []string{},
		},
		{
			name:      "wrong array types are dropped",
			raw:       `{"summary":"S","keyPoints":"not a list","errors":[1,2]}`,
			summary:   "S",
			keyPoints: []string{},
			errors:    []string{},
		},
		{
			name:      "missing summary falls back to raw text",
			raw:       `{"keyPoints":["a"]}`,
			summary:   `{"keyPoints":["a"]}`,
			keyPoints: []string{"a"},
			errors:    []string{},
		},
		{
			name:      "broken json",
			raw:       `{"summary": "S"`,
			summary:   `{"summary": "S"`,
			keyPoints: []string{},
			errors:    []string{},
		},
		{
			name:      "plain text",
			raw:       "  Just words.  ",
			summary:   "Just words.",
			keyPoints: []string{},
			errors:    []string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseSummaryAnswer(tc.raw)
			require.Equal(t, tc.summary, got.Summary)
			require.Equal(t, tc.keyPoints, got.KeyPoints)
			require.Equal(t, tc.errors, got.Errors)
		})
	}
}

func TestBuildSummaryMessages(t *testing.T) {
	msgs := buildSummaryMessages("pt", "xx", "[pt] oi")
	require.Len(t, msgs, 2)
	require.Contains(t, msgs[0].Content, "Português (pt) and xx.")
	require.Contains(t, msgs[0].Content, "keyPoints")
	require.Equal(t, "Analyze this conversation:\n\n[pt] oi", msgs[1].Content)
}
