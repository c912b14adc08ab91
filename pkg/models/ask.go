package models

// QueryType selects the backend handling mode for an ask call.
type QueryType string

const (
	QueryChat  QueryType = "CHAT"
	QueryDB    QueryType = "DB_QUERY"
	QueryScrap QueryType = "SCRAP"
)

// AskRequest is the JSON body of an outgoing ask call. The audio
// variant sends the same fields as multipart form values plus an
// "audio" file part.
type AskRequest struct {
	UserID       string    `json:"user_id"`
	Question     string    `json:"question"`
	Dashboard    string    `json:"dashboard"`
	Tile         string    `json:"tile"`
	ThreadID     string    `json:"thread_id"`
	BookmarkName string    `json:"bookmarkname"`
	BookmarkID   string    `json:"bookmark_id"`
	QueryType    QueryType `json:"query_type"`
	// AITable is set only when operating inside a folder context.
	AITable string `json:"ai_table,omitempty"`
}
