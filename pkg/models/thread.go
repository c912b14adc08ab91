package models

import "encoding/json"

// RawUnit is one message unit inside a thread, AI-table or query
// document as the backend stores it. Content and Results carry the
// heterogeneous shapes the normalizer classifies.
type RawUnit struct {
	// Role is the actor role ("user" maps to sender user, anything else
	// to bot).
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	// Results may be a plain string or a structured object; decoded by
	// the normalizer.
	Results json.RawMessage `json:"results,omitempty"`
	// TableUsed marks internal table-usage records; units carrying it
	// never become chat messages.
	TableUsed json.RawMessage `json:"table_used,omitempty"`
}

// QueryGroup is one backend-assigned exchange unit within a thread.
// Messages may be a flat array of units or, in older documents, an
// array wrapped in another single-element array.
type QueryGroup struct {
	QueryID  string          `json:"query_id"`
	Messages json.RawMessage `json:"messages,omitempty"`
}

// ThreadDoc is a fetched server-side conversation.
type ThreadDoc struct {
	ThreadID string       `json:"thread_id"`
	Name     string       `json:"name,omitempty"`
	Queries  []QueryGroup `json:"queries"`
}

// AITableDoc is a fetched folder of queries, browsable like a thread.
type AITableDoc struct {
	TableID string       `json:"ai_table_id"`
	Name    string       `json:"name,omitempty"`
	Queries []QueryGroup `json:"queries"`
}

// AITableInfo is one entry of the per-user folder listing.
type AITableInfo struct {
	TableID string `json:"ai_table_id"`
	Name    string `json:"name,omitempty"`
}

// QueryDoc is a single query fetched by id.
type QueryDoc struct {
	QueryID  string          `json:"query_id"`
	ThreadID string          `json:"thread_id,omitempty"`
	Messages json.RawMessage `json:"messages,omitempty"`
}

// HistoryItem is one entry of the per-user history listing.
type HistoryItem struct {
	ThreadID  string `json:"thread_id"`
	Name      string `json:"name,omitempty"`
	UpdatedTS int64  `json:"updated_ts,omitempty"`
}
