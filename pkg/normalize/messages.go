package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"askdb/pkg/models"
)

// sqlTracePrefix marks internal SQL trace dumps the backend interleaves
// with real messages; such units never reach the conversation.
const sqlTracePrefix = "SQL Generated by LLM:"

// UnitOptions carries bookmark state propagated to every message of a
// query group. Thread loads set it from the bookmark cross-reference,
// folder loads leave it zero, bookmark loads force it on.
type UnitOptions struct {
	Bookmarked bool
	BookmarkID string
}

// MessagesFromUnits converts the raw units of one query group into
// chat messages. Filtered units (SQL traces, table-usage markers,
// empty content) produce no output; ids combine the query id with the
// zero-based index among the produced messages.
func MessagesFromUnits(queryID string, units []models.RawUnit, opts UnitOptions) []models.ChatMessage {
	now := time.Now().UTC().Format(time.RFC3339)
	var out []models.ChatMessage
	for _, u := range units {
		text, raw, typ, ok := classifyUnit(u)
		if !ok {
			continue
		}
		sender := models.SenderBot
		if strings.EqualFold(u.Role, "user") {
			sender = models.SenderUser
		}
		out = append(out, models.ChatMessage{
			ID:         fmt.Sprintf("%s-%d", queryID, len(out)),
			Sender:     sender,
			Text:       text,
			Timestamp:  now,
			Type:       typ,
			RawAnswer:  raw,
			QueryID:    queryID,
			Bookmarked: opts.Bookmarked,
			BookmarkID: opts.BookmarkID,
		})
	}
	return out
}

// classifyUnit applies the extraction priority: plain content string,
// plain results string, then structured results. ok is false for units
// that must be discarded.
func classifyUnit(u models.RawUnit) (text string, raw any, typ models.MessageType, ok bool) {
	if strings.HasPrefix(strings.TrimSpace(u.Content), sqlTracePrefix) {
		return "", nil, "", false
	}
	if len(u.TableUsed) > 0 && string(u.TableUsed) != "null" {
		return "", nil, "", false
	}
	if strings.TrimSpace(u.Content) != "" {
		return u.Content, nil, models.TypeText, true
	}
	if len(u.Results) == 0 || string(u.Results) == "null" {
		return "", nil, "", false
	}

	var s string
	if err := json.Unmarshal(u.Results, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", nil, "", false
		}
		return s, nil, models.TypeText, true
	}

	var res struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(u.Results, &res); err != nil {
		return "", nil, "", false
	}
	data := res.Data
	// tolerate the doubly nested {data:{data:...}} shape
	var inner struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &inner); err == nil && len(inner.Data) > 0 {
		data = inner.Data
	}

	if strings.EqualFold(res.Type, "text") {
		if err := json.Unmarshal(data, &s); err == nil && strings.TrimSpace(s) != "" {
			return s, nil, models.TypeText, true
		}
	}

	var rows []any
	if err := json.Unmarshal(data, &rows); err == nil {
		if len(rows) == 0 {
			return "", nil, "", false
		}
		t := models.MessageType(strings.ToLower(res.Type))
		if t == "" || t == models.TypeText {
			t = models.TypeTabular
		}
		return "", coerceRows(rows), t, true
	}
	if err := json.Unmarshal(data, &s); err == nil && strings.TrimSpace(s) != "" {
		return s, nil, models.TypeText, true
	}
	return "", nil, "", false
}

// coerceRows normalizes every cell of a tabular payload to primitive or
// string form.
func coerceRows(rows []any) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		switch row := r.(type) {
		case []any:
			cells := make([]any, 0, len(row))
			for _, c := range row {
				cells = append(cells, CoerceCell(c))
			}
			out = append(out, cells)
		case map[string]any:
			obj := make(map[string]any, len(row))
			for k, c := range row {
				obj[k] = CoerceCell(c)
			}
			out = append(out, obj)
		default:
			out = append(out, CoerceCell(r))
		}
	}
	return out
}

// CoerceCell converts one cell to primitive/string form. Numeric
// wrapper objects (a single-field object around a scalar) become the
// string representation of the wrapped value; other composites are
// serialized.
func CoerceCell(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			for _, inner := range t {
				return fmt.Sprintf("%v", inner)
			}
		}
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	case []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	default:
		return v
	}
}

// ConvertRows turns a 2D array whose first row is an all-string header
// into an array of row objects keyed by the header cells. Returns nil
// when the input has no usable header. This helper is distinct from the
// live-exchange classifier, which keeps raw 2D arrays untouched.
func ConvertRows(rows []any) []map[string]any {
	if len(rows) < 1 {
		return nil
	}
	head, ok := rows[0].([]any)
	if !ok || len(head) == 0 {
		return nil
	}
	header := make([]string, len(head))
	for i, h := range head {
		s, ok := h.(string)
		if !ok {
			return nil
		}
		header[i] = s
	}
	out := make([]map[string]any, 0, len(rows)-1)
	for _, r := range rows[1:] {
		cells, ok := r.([]any)
		if !ok {
			continue
		}
		obj := make(map[string]any, len(header))
		for i, c := range cells {
			if i >= len(header) {
				break
			}
			obj[header[i]] = CoerceCell(c)
		}
		out = append(out, obj)
	}
	return out
}

// FlattenUnits decodes a query group's message array, tolerating the
// legacy double-nested form (an array of arrays of units).
func FlattenUnits(raw json.RawMessage) []models.RawUnit {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var flat []models.RawUnit
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat
	}
	var nested [][]models.RawUnit
	if err := json.Unmarshal(raw, &nested); err == nil {
		var out []models.RawUnit
		for _, g := range nested {
			out = append(out, g...)
		}
		return out
	}
	return nil
}

// MessagesFromThread flattens a fetched thread document. A query's
// messages are marked bookmarked only when its id appears in one of the
// known bookmarks.
func MessagesFromThread(doc models.ThreadDoc, bookmarks []models.Bookmark) []models.ChatMessage {
	var out []models.ChatMessage
	for _, q := range doc.Queries {
		opts := UnitOptions{}
		for _, b := range bookmarks {
			if b.HasQuery(q.QueryID) {
				opts.Bookmarked = true
				opts.BookmarkID = b.ID
				break
			}
		}
		out = append(out, MessagesFromUnits(q.QueryID, FlattenUnits(q.Messages), opts)...)
	}
	return out
}

// MessagesFromTable flattens a fetched AI-table document. Folder
// messages are never auto-bookmarked.
func MessagesFromTable(doc models.AITableDoc) []models.ChatMessage {
	var out []models.ChatMessage
	for _, q := range doc.Queries {
		out = append(out, MessagesFromUnits(q.QueryID, FlattenUnits(q.Messages), UnitOptions{})...)
	}
	return out
}

// MessagesFromQuery converts a single fetched query. Bookmark-sourced
// loads pass the owning bookmark; its messages are always marked.
func MessagesFromQuery(doc models.QueryDoc, bm *models.Bookmark) []models.ChatMessage {
	opts := UnitOptions{}
	if bm != nil {
		opts.Bookmarked = true
		opts.BookmarkID = bm.ID
	}
	return MessagesFromUnits(doc.QueryID, FlattenUnits(doc.Messages), opts)
}
