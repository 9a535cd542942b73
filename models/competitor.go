package models

import "time"

// Competitor binds one user to one tournament. The (TournamentID, UserID)
// pair is unique, a user holds at most one competitor record per tournament.
type Competitor struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	LogoURL      *string   `json:"logo_url,omitempty" db:"logo_url"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Mail         *string   `json:"mail,omitempty" db:"mail"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
