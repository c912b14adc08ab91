package models

// Tile is one saved query on a user dashboard.
type Tile struct {
	ID    string `json:"tile_id"`
	Title string `json:"title,omitempty"`
	Query string `json:"query"`
}

// Dashboard is the per-user saved dashboard document.
type Dashboard struct {
	UserID    string `json:"user_id"`
	Tiles     []Tile `json:"tiles,omitempty"`
	UpdatedTS int64  `json:"updated_ts,omitempty"`
}
