package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchCompetitorInvalid = errors.New("match competitor conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	UpdateScore(ctx context.Context, id int, scoreA, scoreB int, status models.MatchStatus) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	Delete(ctx context.Context, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, competitor_a_id, competitor_b_id, score_a, score_b, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		m.TournamentID,
		m.CompetitorAID,
		m.CompetitorBID,
		m.ScoreA,
		m.ScoreB,
		m.Status,
		m.ScheduledAt,
	).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "matches_tournament_id_fkey":
				return ErrMatchTournamentInvalid
			case "matches_competitor_a_id_fkey", "matches_competitor_b_id_fkey":
				return ErrMatchCompetitorInvalid
			}
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface {
	Scan(dest ...interface{}) error
}, m *models.Match) error {
	return rowScanner.Scan(
		&m.ID,
		&m.TournamentID,
		&m.CompetitorAID,
		&m.CompetitorBID,
		&m.ScoreA,
		&m.ScoreB,
		&m.Status,
		&m.ScheduledAt,
		&m.CreatedAt,
	)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, tournament_id, competitor_a_id, competitor_b_id, score_a, score_b, status, scheduled_at, created_at
		FROM matches WHERE id = $1`

	m := &models.Match{}
	err := r.scanMatch(r.db.QueryRowContext(ctx, query, id), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	query := `
		SELECT id, tournament_id, competitor_a_id, competitor_b_id, score_a, score_b, status, scheduled_at, created_at
		FROM matches WHERE tournament_id = $1`

	args := []interface{}{tournamentID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY scheduled_at ASC NULLS LAST, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches by tournament: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := r.scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id int, scoreA, scoreB int, status models.MatchStatus) error {
	query := `UPDATE matches SET score_a = $1, score_b = $2, status = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, scoreA, scoreB, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match score: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM matches WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE tournament_id = $1`
	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete matches of tournament %d: %w", tournamentID, err)
	}
	return nil
}
