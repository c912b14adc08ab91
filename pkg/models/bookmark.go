package models

import "encoding/json"

// QueryRefs is the set of query ids a bookmark covers. The backend
// stores it either as a single string or as an array of strings; both
// forms decode into a slice.
type QueryRefs []string

func (q *QueryRefs) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*q = nil
		} else {
			*q = QueryRefs{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*q = QueryRefs(many)
	return nil
}

// Bookmark is a named, user-curated collection of query ids,
// independent of thread structure.
type Bookmark struct {
	ID      string    `json:"bookmark_id"`
	Name    string    `json:"bookmarkname"`
	Queries QueryRefs `json:"query_ids"`
}

// HasQuery reports whether the bookmark covers the given query id.
func (b Bookmark) HasQuery(id string) bool {
	if id == "" {
		return false
	}
	for _, q := range b.Queries {
		if q == id {
			return true
		}
	}
	return false
}
