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
	ErrHighlightNotFound          = errors.New("highlight not found")
	ErrHighlightTournamentInvalid = errors.New("highlight tournament conflict or invalid")
	ErrHighlightMatchInvalid      = errors.New("highlight match conflict or invalid")
)

type HighlightRepository interface {
	Create(ctx context.Context, h *models.Highlight) error
	GetByID(ctx context.Context, id int) (*models.Highlight, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Highlight, error)
	Update(ctx context.Context, h *models.Highlight) error
	UpdateThumbnailKey(ctx context.Context, highlightID int, thumbnailKey *string) error
	Delete(ctx context.Context, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresHighlightRepository struct {
	db *sql.DB
}

func NewPostgresHighlightRepository(db *sql.DB) HighlightRepository {
	return &postgresHighlightRepository{db: db}
}

func (r *postgresHighlightRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresHighlightRepository) Create(ctx context.Context, h *models.Highlight) error {
	query := `
		INSERT INTO highlights (tournament_id, match_id, title, video_url, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		h.TournamentID,
		h.MatchID,
		h.Title,
		h.VideoURL,
		h.ThumbnailKey,
	).Scan(&h.ID, &h.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "highlights_tournament_id_fkey":
				return ErrHighlightTournamentInvalid
			case "highlights_match_id_fkey":
				return ErrHighlightMatchInvalid
			}
		}
		return fmt.Errorf("failed to create highlight: %w", err)
	}
	return nil
}

func (r *postgresHighlightRepository) GetByID(ctx context.Context, id int) (*models.Highlight, error) {
	query := `
		SELECT id, tournament_id, match_id, title, video_url, thumbnail_key, created_at
		FROM highlights WHERE id = $1`

	h := &models.Highlight{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&h.ID, &h.TournamentID, &h.MatchID, &h.Title, &h.VideoURL, &h.ThumbnailKey, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHighlightNotFound
		}
		return nil, fmt.Errorf("failed to get highlight: %w", err)
	}
	return h, nil
}

func (r *postgresHighlightRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Highlight, error) {
	query := `
		SELECT id, tournament_id, match_id, title, video_url, thumbnail_key, created_at
		FROM highlights WHERE tournament_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	items := make([]models.Highlight, 0)
	for rows.Next() {
		var h models.Highlight
		if scanErr := rows.Scan(
			&h.ID, &h.TournamentID, &h.MatchID, &h.Title, &h.VideoURL, &h.ThumbnailKey, &h.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		items = append(items, h)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresHighlightRepository) Update(ctx context.Context, h *models.Highlight) error {
	query := `UPDATE highlights SET title = $1, video_url = $2, match_id = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, h.Title, h.VideoURL, h.MatchID, h.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrHighlightMatchInvalid
		}
		return fmt.Errorf("failed to update highlight: %w", err)
	}
	return checkAffectedRows(result, ErrHighlightNotFound)
}

func (r *postgresHighlightRepository) UpdateThumbnailKey(ctx context.Context, highlightID int, thumbnailKey *string) error {
	query := `UPDATE highlights SET thumbnail_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, thumbnailKey, highlightID)
	if err != nil {
		return fmt.Errorf("failed to update highlight thumbnail key: %w", err)
	}
	return checkAffectedRows(result, ErrHighlightNotFound)
}

func (r *postgresHighlightRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM highlights WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete highlight: %w", err)
	}
	return checkAffectedRows(result, ErrHighlightNotFound)
}

func (r *postgresHighlightRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM highlights WHERE tournament_id = $1`
	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete highlights of tournament %d: %w", tournamentID, err)
	}
	return nil
}
