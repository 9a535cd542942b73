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
	ErrCompetitorNotFound          = errors.New("competitor not found")
	ErrCompetitorConflict          = errors.New("competitor conflict: user already registered for this tournament")
	ErrCompetitorUserInvalid       = errors.New("competitor user conflict or invalid")
	ErrCompetitorTournamentInvalid = errors.New("competitor tournament conflict or invalid")
)

type CompetitorRepository interface {
	Create(ctx context.Context, exec SQLExecutor, c *models.Competitor) error
	FindByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competitor, error)
	FindByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (*models.Competitor, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Competitor, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresCompetitorRepository struct {
	db *sql.DB
}

func NewPostgresCompetitorRepository(db *sql.DB) CompetitorRepository {
	return &postgresCompetitorRepository{db: db}
}

func (r *postgresCompetitorRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCompetitorRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Competitor) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO competitors (tournament_id, user_id, name, logo_url, description, mail)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		c.TournamentID,
		c.UserID,
		c.Name,
		c.LogoURL,
		c.Description,
		c.Mail,
	).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "competitors_tournament_id_user_id_key" {
					return ErrCompetitorConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "competitors_user_id_fkey":
					return ErrCompetitorUserInvalid
				case "competitors_tournament_id_fkey":
					return ErrCompetitorTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create competitor: %w", err)
	}
	return nil
}

func (r *postgresCompetitorRepository) scanCompetitor(rowScanner interface {
	Scan(dest ...interface{}) error
}, c *models.Competitor) error {
	return rowScanner.Scan(
		&c.ID,
		&c.TournamentID,
		&c.UserID,
		&c.Name,
		&c.LogoURL,
		&c.Description,
		&c.Mail,
		&c.CreatedAt,
	)
}

func (r *postgresCompetitorRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Competitor, error) {
	executor := r.getExecutor(exec)
	c := &models.Competitor{}
	err := r.scanCompetitor(executor.QueryRowContext(ctx, query, args...), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to find competitor: %w", err)
	}
	return c, nil
}

func (r *postgresCompetitorRepository) FindByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competitor, error) {
	query := `
		SELECT id, tournament_id, user_id, name, logo_url, description, mail, created_at
		FROM competitors WHERE id = $1`
	return r.findOne(ctx, exec, query, id)
}

func (r *postgresCompetitorRepository) FindByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (*models.Competitor, error) {
	query := `
		SELECT id, tournament_id, user_id, name, logo_url, description, mail, created_at
		FROM competitors WHERE tournament_id = $1 AND user_id = $2`
	return r.findOne(ctx, exec, query, tournamentID, userID)
}

// ListByTournament возвращает участников турнира в порядке регистрации.
func (r *postgresCompetitorRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Competitor, error) {
	query := `
		SELECT
			c.id, c.tournament_id, c.user_id, c.name, c.logo_url, c.description, c.mail, c.created_at,
			u.id, u.full_name, u.email, u.role, u.created_at
		FROM competitors c
		JOIN users u ON c.user_id = u.id
		WHERE c.tournament_id = $1
		ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors by tournament: %w", err)
	}
	defer rows.Close()

	competitors := make([]models.Competitor, 0)
	for rows.Next() {
		var c models.Competitor
		var u models.User
		if err := rows.Scan(
			&c.ID, &c.TournamentID, &c.UserID, &c.Name, &c.LogoURL, &c.Description, &c.Mail, &c.CreatedAt,
			&u.ID, &u.FullName, &u.Email, &u.Role, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan competitor row: %w", err)
		}
		c.User = &u
		competitors = append(competitors, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competitor rows: %w", err)
	}
	return competitors, nil
}

func (r *postgresCompetitorRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM competitors WHERE tournament_id = $1`

	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count competitors: %w", err)
	}
	return count, nil
}

func (r *postgresCompetitorRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM competitors WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete competitor: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM competitors WHERE tournament_id = $1`
	// Ноль строк — не ошибка: у турнира могло не быть участников.
	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete competitors of tournament %d: %w", tournamentID, err)
	}
	return nil
}
