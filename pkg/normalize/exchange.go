package normalize

import (
	"fmt"
	"strings"
	"time"

	"askdb/pkg/models"
)

// NoResponseText is the fallback shown when a JSON reply carries no
// answer field at all.
const NoResponseText = "No response received"

// IsTabular reports whether a decoded JSON answer is row/column data:
// an array of arrays whose first row is all strings (a header row), or
// an array of plain objects.
func IsTabular(v any) bool {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return false
	}
	switch first := arr[0].(type) {
	case []any:
		if len(first) == 0 {
			return false
		}
		for _, c := range first {
			if _, ok := c.(string); !ok {
				return false
			}
		}
		return true
	case map[string]any:
		return true
	default:
		return false
	}
}

// AnswerFromJSON classifies the answer field of a live JSON reply into
// the tagged union. Tabular payloads are passed through untouched (no
// header conversion here).
func AnswerFromJSON(v any) models.Answer {
	switch t := v.(type) {
	case nil:
		return models.Answer{Kind: models.AnswerText, Text: NoResponseText}
	case string:
		if strings.TrimSpace(t) == "" {
			return models.Answer{Kind: models.AnswerText, Text: NoResponseText}
		}
		return models.Answer{Kind: models.AnswerText, Text: t}
	default:
		if IsTabular(v) {
			return models.Answer{Kind: models.AnswerTable, Table: v}
		}
		return models.Answer{Kind: models.AnswerText, Text: fmt.Sprintf("%v", v)}
	}
}

// MessageFromExchange renders the bot message of one completed ask
// round-trip.
func MessageFromExchange(ex models.Exchange) models.ChatMessage {
	m := models.ChatMessage{
		ID:        ex.QueryID + "-0",
		Sender:    models.SenderBot,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Type:      ex.Answer.MessageType(),
		QueryID:   ex.QueryID,
	}
	switch ex.Answer.Kind {
	case models.AnswerText:
		m.Text = ex.Answer.Text
	case models.AnswerTable:
		m.RawAnswer = ex.Answer.Table
	case models.AnswerFile:
		m.RawAnswer = ex.Answer.File
	}
	return m
}
