package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
	ErrTournamentInvalidOrg   = errors.New("invalid organizer reference")
	ErrTournamentInUse        = errors.New("tournament is in use (competitors/matches exist)")
)

type ListTournamentsFilter struct {
	OrganizerID *int
	Status      *models.TournamentStatus
	GameName    *string
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// GetByIDForUpdate читает турнир с блокировкой строки (SELECT ... FOR UPDATE).
	// Пока транзакция exec не завершится, конкурирующие регистрации ждут.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error
	// AddToPlayerCount изменяет счётчик участников на delta, не опускаясь ниже нуля.
	AddToPlayerCount(ctx context.Context, exec SQLExecutor, id int, delta int) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	GetTournamentsForAutoStatusUpdate(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, game_name, format, description, organizer_id,
	status, start_date, end_date, player_count, max_players, logo_key, created_at`

func scanTournament(row interface {
	Scan(dest ...interface{}) error
}, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.Name, &t.GameName, &t.Format, &t.Description, &t.OrganizerID,
		&t.Status, &t.StartDate, &t.EndDate, &t.PlayerCount, &t.MaxPlayers, &t.LogoKey, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	// player_count всегда начинается с нуля; им управляют только координаторы.
	query := `
		INSERT INTO tournaments (
			name, game_name, format, description, organizer_id,
			status, start_date, end_date, max_players, logo_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, player_count, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.GameName, t.Format, t.Description, t.OrganizerID,
		t.Status, t.StartDate, t.EndDate, t.MaxPlayers, t.LogoKey,
	).Scan(&t.ID, &t.PlayerCount, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := scanTournament(r.db.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`

	t := &models.Tournament{}
	err := scanTournament(executor.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.GameName != nil {
		query += fmt.Sprintf(" AND game_name = $%d", argID)
		args = append(args, *filter.GameName)
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
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	// player_count и logo_key обновляются только своими методами.
	query := `
		UPDATE tournaments SET
			name = $1,
			game_name = $2,
			format = $3,
			description = $4,
			status = $5,
			start_date = $6,
			end_date = $7,
			max_players = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.GameName, t.Format, t.Description,
		t.Status, t.StartDate, t.EndDate, t.MaxPlayers,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddToPlayerCount(ctx context.Context, exec SQLExecutor, id int, delta int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET player_count = GREATEST(player_count + $1, 0)
		WHERE id = $2
		RETURNING player_count`

	var count int
	err := executor.QueryRowContext(ctx, query, delta, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTournamentNotFound
		}
		return 0, fmt.Errorf("failed to update player count for tournament %d: %w", id, err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) GetTournamentsForAutoStatusUpdate(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error) {
	query := `
		SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE
			(status = $1 AND start_date IS NOT NULL AND start_date <= $3) OR
			(status = $2 AND end_date IS NOT NULL AND end_date <= $3)`

	rows, err := r.db.QueryContext(ctx, query, models.StatusUpcoming, models.StatusOngoing, currentTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for auto status update: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament for auto status update: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "tournaments_organizer_id_fkey":
				return ErrTournamentInvalidOrg
			default:
				// FK со стороны competitors/matches/highlights при удалении.
				return ErrTournamentInUse
			}
		}
	}
	return err
}
