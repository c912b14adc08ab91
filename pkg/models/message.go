package models

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// MessageType classifies the displayable payload of a chat message.
type MessageType string

const (
	TypeText    MessageType = "text"
	TypeTabular MessageType = "tabular"
	TypeTable   MessageType = "table"
	TypeAudio   MessageType = "audio"
	TypePDF     MessageType = "pdf"
	TypeXLSX    MessageType = "xlsx"
	TypeDOCX    MessageType = "docx"
	TypeFile    MessageType = "file"
)

// ChatMessage is the uniform unit of conversation. The normalizer
// produces these from heterogeneous backend payloads; everything
// downstream (session, CLI, export) consumes only this shape.
type ChatMessage struct {
	ID     string `json:"id"`
	Sender Sender `json:"sender"`
	// Text is the primary displayable content; empty when the message
	// carries only RawAnswer.
	Text string `json:"text"`
	// Timestamp is client-generated at normalization time (ISO-8601),
	// not authoritative server time.
	Timestamp string      `json:"timestamp"`
	Type      MessageType `json:"type"`
	// RawAnswer carries non-text content: a 2D array, an array of row
	// objects, or a local file path for blob answers.
	RawAnswer any `json:"raw_answer,omitempty"`
	// QueryID links the message to a backend-assigned query identifier;
	// absent until the backend responds.
	QueryID string `json:"query_id,omitempty"`
	// ReplyTo references an earlier message id in the same conversation.
	ReplyTo    string `json:"reply_to,omitempty"`
	Bookmarked bool   `json:"bookmarked,omitempty"`
	BookmarkID string `json:"bookmark_id,omitempty"`
}
