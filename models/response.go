package models

// SkippedFile reports why one file in an upload batch was not ingested.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IngestBatchResponse summarises one upload batch. A batch never fails as a
// whole: bad files end up in Skipped and the rest are processed.
type IngestBatchResponse struct {
	Ingested []IngestedDocument `json:"ingested"`
	Skipped  []SkippedFile      `json:"skipped,omitempty"`
}

type ListDocumentsResponse struct {
	Count     int                `json:"count"`
	Documents []IngestedDocument `json:"documents"`
}

type SearchResponse struct {
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"sessionID"`
}

// ChatHistoryResponse returns the session transcript together with the
// per-role counters shown in the session statistics panel.
type ChatHistoryResponse struct {
	Messages          []Message `json:"messages"`
	TotalMessages     int       `json:"total_messages"`
	UserMessages      int       `json:"user_messages"`
	AssistantMessages int       `json:"assistant_messages"`
}
