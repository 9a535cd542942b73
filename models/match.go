package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
)

// Match представляет матч между двумя участниками турнира.
type Match struct {
	ID            int         `json:"id" db:"id"`
	TournamentID  int         `json:"tournament_id" db:"tournament_id"`
	CompetitorAID *int        `json:"competitor_a_id,omitempty" db:"competitor_a_id"`
	CompetitorBID *int        `json:"competitor_b_id,omitempty" db:"competitor_b_id"`
	ScoreA        int         `json:"score_a" db:"score_a"`
	ScoreB        int         `json:"score_b" db:"score_b"`
	Status        MatchStatus `json:"status" db:"status"`
	ScheduledAt   *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`

	CompetitorA *Competitor `json:"competitor_a,omitempty" db:"-"`
	CompetitorB *Competitor `json:"competitor_b,omitempty" db:"-"`
}
