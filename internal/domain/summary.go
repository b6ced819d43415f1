package domain

// SummaryRequest is the body sent to the remote summarizer.
type SummaryRequest struct {
	Messages       string `json:"messages"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	TotalMessages  int    `json:"totalMessages"`
	TotalWords     int    `json:"totalWords"`
	Duration       string `json:"duration"`
}

// SummaryStatistics echoes the request statistics back to the caller.
type SummaryStatistics struct {
	TotalMessages int      `json:"totalMessages"`
	TotalWords    int      `json:"totalWords"`
	Duration      string   `json:"duration"`
	LanguagesUsed []string `json:"languagesUsed"`
}

// SummaryResult is the structured answer returned by the remote summarizer.
type SummaryResult struct {
	Summary    string            `json:"summary"`
	KeyPoints  []string          `json:"keyPoints"`
	Errors     []string          `json:"errors"`
	Statistics SummaryStatistics `json:"statistics"`
}
