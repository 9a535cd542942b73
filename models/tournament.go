package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusCompleted TournamentStatus = "completed"
)

// Tournament представляет турнир.
//
// PlayerCount всегда равен числу записей Competitor, ссылающихся на турнир;
// оба значения меняются только вместе, в одной транзакции.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	GameName    string           `json:"game_name" db:"game_name"`
	Format      string           `json:"format" db:"format"`
	Description *string          `json:"description,omitempty" db:"description"`
	OrganizerID int              `json:"organizer_id" db:"organizer_id"`
	Status      TournamentStatus `json:"status" db:"status"`
	StartDate   *time.Time       `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time       `json:"end_date,omitempty" db:"end_date"`
	PlayerCount int              `json:"number_of_players" db:"player_count"`
	MaxPlayers  *int             `json:"max_players,omitempty" db:"max_players"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	LogoKey     *string          `json:"-" db:"logo_key"`
	LogoURL     *string          `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer   *User        `json:"organizer,omitempty" db:"-"`
	Competitors []Competitor `json:"competitors,omitempty" db:"-"`
}
