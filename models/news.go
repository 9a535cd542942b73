package models

import "time"

// News — новость, опубликованная организатором. TournamentID опционален:
// новость может быть общей или привязанной к конкретному турниру.
type News struct {
	ID           int       `json:"id" db:"id"`
	TournamentID *int      `json:"tournament_id,omitempty" db:"tournament_id"`
	AuthorID     int       `json:"author_id" db:"author_id"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ImageKey     *string   `json:"-" db:"image_key"`
	ImageURL     *string   `json:"image_url,omitempty" db:"-"`

	Author *User `json:"author,omitempty" db:"-"`
}
