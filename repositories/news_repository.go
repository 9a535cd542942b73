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
	ErrNewsNotFound          = errors.New("news not found")
	ErrNewsAuthorInvalid     = errors.New("news author conflict or invalid")
	ErrNewsTournamentInvalid = errors.New("news tournament conflict or invalid")
)

type ListNewsFilter struct {
	TournamentID *int
	AuthorID     *int
	Limit        int
	Offset       int
}

type NewsRepository interface {
	Create(ctx context.Context, news *models.News) error
	GetByID(ctx context.Context, id int) (*models.News, error)
	List(ctx context.Context, filter ListNewsFilter) ([]models.News, error)
	Update(ctx context.Context, news *models.News) error
	UpdateImageKey(ctx context.Context, newsID int, imageKey *string) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	Delete(ctx context.Context, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresNewsRepository struct {
	db *sql.DB
}

func NewPostgresNewsRepository(db *sql.DB) NewsRepository {
	return &postgresNewsRepository{db: db}
}

func (r *postgresNewsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresNewsRepository) Create(ctx context.Context, n *models.News) error {
	query := `
		INSERT INTO news (tournament_id, author_id, title, content, image_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.TournamentID,
		n.AuthorID,
		n.Title,
		n.Content,
		n.ImageKey,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "news_author_id_fkey":
				return ErrNewsAuthorInvalid
			case "news_tournament_id_fkey":
				return ErrNewsTournamentInvalid
			}
		}
		return fmt.Errorf("failed to create news: %w", err)
	}
	return nil
}

func (r *postgresNewsRepository) GetByID(ctx context.Context, id int) (*models.News, error) {
	query := `
		SELECT id, tournament_id, author_id, title, content, image_key, created_at
		FROM news WHERE id = $1`

	n := &models.News{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.TournamentID, &n.AuthorID, &n.Title, &n.Content, &n.ImageKey, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return n, nil
}

func (r *postgresNewsRepository) List(ctx context.Context, filter ListNewsFilter) ([]models.News, error) {
	query := `
		SELECT id, tournament_id, author_id, title, content, image_key, created_at
		FROM news WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.TournamentID != nil {
		query += fmt.Sprintf(" AND tournament_id = $%d", argID)
		args = append(args, *filter.TournamentID)
		argID++
	}
	if filter.AuthorID != nil {
		query += fmt.Sprintf(" AND author_id = $%d", argID)
		args = append(args, *filter.AuthorID)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	items := make([]models.News, 0)
	for rows.Next() {
		var n models.News
		if scanErr := rows.Scan(
			&n.ID, &n.TournamentID, &n.AuthorID, &n.Title, &n.Content, &n.ImageKey, &n.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		items = append(items, n)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresNewsRepository) Update(ctx context.Context, n *models.News) error {
	query := `UPDATE news SET title = $1, content = $2, tournament_id = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, n.Title, n.Content, n.TournamentID, n.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrNewsTournamentInvalid
		}
		return fmt.Errorf("failed to update news: %w", err)
	}
	return checkAffectedRows(result, ErrNewsNotFound)
}

func (r *postgresNewsRepository) UpdateImageKey(ctx context.Context, newsID int, imageKey *string) error {
	query := `UPDATE news SET image_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, imageKey, newsID)
	if err != nil {
		return fmt.Errorf("failed to update news image key: %w", err)
	}
	return checkAffectedRows(result, ErrNewsNotFound)
}

func (r *postgresNewsRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM news WHERE tournament_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count news: %w", err)
	}
	return count, nil
}

func (r *postgresNewsRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM news WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	return checkAffectedRows(result, ErrNewsNotFound)
}

func (r *postgresNewsRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM news WHERE tournament_id = $1`
	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete news of tournament %d: %w", tournamentID, err)
	}
	return nil
}
