package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"turn-translator/internal/domain"
)

type summaryAnswer struct {
	Summary   string
	KeyPoints []string
	Errors    []string
}

func buildSummaryMessages(source, target, transcript string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: buildAnalystPrompt(source, target)},
		{Role: "user", Content: "Analyze this conversation:\n\n" + transcript},
	}
}

func buildAnalystPrompt(source, target string) string {
	return strings.Join([]string{
		"Role:",
		fmt.Sprintf("You are a conversation analyst. The conversation is between two people speaking %s and %s.",
			languageLabel(source), languageLabel(target)),
		"Each line is prefixed with the language code of the text that follows.",
		"Lines in the second language are machine translations of the line before them.",
		"",
		"Provide:",
		"1) A brief summary (2-3 sentences) of the conversation.",
		"2) Key points discussed, as an array of strings.",
		"3) Any errors or issues detected, including mistranslations, as an array of strings.",
		"",
		"Output Contract:",
		"Return JSON only with keys summary (string), keyPoints (array of strings) and errors (array of strings).",
	}, "\n")
}

func languageLabel(code string) string {
	name := domain.DisplayName(code)
	if name == code {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

// parseSummaryAnswer extracts the outermost JSON object from the model
// output. Output without a usable object becomes the summary text itself;
// key points and errors that are not string arrays are dropped.
func parseSummaryAnswer(raw string) summaryAnswer {
	content := strings.TrimSpace(raw)
	out := summaryAnswer{Summary: content, KeyPoints: []string{}, Errors: []string{}}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return out
	}

	var parsed struct {
		Summary   json.RawMessage `json:"summary"`
		KeyPoints json.RawMessage `json:"keyPoints"`
		Errors    json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return out
	}

	var summary string
	if json.Unmarshal(parsed.Summary, &summary) == nil && strings.TrimSpace(summary) != "" {
		out.Summary = strings.TrimSpace(summary)
	}
	out.KeyPoints = stringArray(parsed.KeyPoints)
	out.Errors = stringArray(parsed.Errors)
	return out
}

func stringArray(raw json.RawMessage) []string {
	var items []string
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return []string{}
	}
	return items
}
