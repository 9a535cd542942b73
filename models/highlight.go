package models

import "time"

// Highlight — видеохайлайт турнира, опционально привязанный к матчу.
type Highlight struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	MatchID      *int      `json:"match_id,omitempty" db:"match_id"`
	Title        string    `json:"title" db:"title"`
	VideoURL     string    `json:"video_url" db:"video_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ThumbnailKey *string   `json:"-" db:"thumbnail_key"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty" db:"-"`
}
