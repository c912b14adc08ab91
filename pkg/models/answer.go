package models

// AnswerKind discriminates the decoded answer union.
type AnswerKind int

const (
	AnswerText AnswerKind = iota
	AnswerTable
	AnswerFile
)

// Answer is the decoded form of one live backend reply. The upstream
// wire format is duck-typed; it is decoded into this tagged union at
// the client boundary and matched exhaustively downstream.
type Answer struct {
	Kind AnswerKind
	// Text is set when Kind == AnswerText.
	Text string
	// Table is set when Kind == AnswerTable: either a raw 2D array with
	// a header row, or an array of row objects, exactly as received.
	Table any
	// File is set when Kind == AnswerFile.
	File FileRef
}

// FileRef points at a binary answer spooled to a local file.
type FileRef struct {
	Path string      `json:"path"`
	Kind MessageType `json:"kind"` // pdf, xlsx, docx or audio
}

// MessageType maps the answer to the chat message type it renders as.
func (a Answer) MessageType() MessageType {
	switch a.Kind {
	case AnswerTable:
		return TypeTabular
	case AnswerFile:
		return a.File.Kind
	default:
		return TypeText
	}
}

// Exchange is the result of one ask round-trip.
type Exchange struct {
	QueryID  string
	ThreadID string
	Answer   Answer
}
