package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/storage"
)

const maxTournamentNameLength = 150

type CreateTournamentInput struct {
	Name        string     `json:"name"`
	GameName    string     `json:"game_name"`
	Format      string     `json:"format"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MaxPlayers  *int       `json:"max_players"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name"`
	GameName    *string    `json:"game_name"`
	Format      *string    `json:"format"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MaxPlayers  *int       `json:"max_players"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetWithCompetitors(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, id, requesterID int, requesterRole models.UserRole, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id, requesterID int, requesterRole models.UserRole) error
	UploadLogo(ctx context.Context, id, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.Tournament, error)
	AutoUpdateStatusesByDates(ctx context.Context) (int, error)
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	competitorRepo repositories.CompetitorRepository
	matchRepo      repositories.MatchRepository
	newsRepo       repositories.NewsRepository
	highlightRepo  repositories.HighlightRepository
	userRepo       repositories.UserRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	competitorRepo repositories.CompetitorRepository,
	matchRepo repositories.MatchRepository,
	newsRepo repositories.NewsRepository,
	highlightRepo repositories.HighlightRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		competitorRepo: competitorRepo,
		matchRepo:      matchRepo,
		newsRepo:       newsRepo,
		highlightRepo:  highlightRepo,
		userRepo:       userRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load organizer %d: %w", organizerID, err)
	}
	if organizer.Role != models.RoleOrganizer && organizer.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if len(name) > maxTournamentNameLength {
		return nil, fmt.Errorf("%w: tournament name must be at most %d characters", ErrValidationFailed, maxTournamentNameLength)
	}
	if strings.TrimSpace(input.GameName) == "" {
		return nil, fmt.Errorf("%w: game_name is required", ErrValidationFailed)
	}
	if err := validateTournamentDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.MaxPlayers != nil && *input.MaxPlayers <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}

	tournament := &models.Tournament{
		Name:        name,
		GameName:    strings.TrimSpace(input.GameName),
		Format:      strings.TrimSpace(input.Format),
		Description: input.Description,
		OrganizerID: organizerID,
		Status:      models.StatusUpcoming,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		MaxPlayers:  input.MaxPlayers,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, s.mapTournamentRepoError(err)
	}

	tournament.Organizer = organizer
	populateUserDetailsFunc(tournament.Organizer, s.uploader)
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	populateTournamentLogoURLFunc(tournament, s.uploader)
	return tournament, nil
}

// GetWithCompetitors возвращает турнир вместе со списком участников
// в порядке регистрации.
func (s *tournamentService) GetWithCompetitors(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	competitors, err := s.competitorRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors for tournament %d: %w", id, err)
	}
	populateCompetitorListDetailsFunc(competitors, s.uploader)
	tournament.Competitors = competitors

	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	for i := range tournaments {
		populateTournamentLogoURLFunc(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id, requesterID int, requesterRole models.UserRole, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.getOwned(ctx, id, requesterID, requesterRole)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		if len(name) > maxTournamentNameLength {
			return nil, fmt.Errorf("%w: tournament name must be at most %d characters", ErrValidationFailed, maxTournamentNameLength)
		}
		tournament.Name = name
	}
	if input.GameName != nil {
		if strings.TrimSpace(*input.GameName) == "" {
			return nil, fmt.Errorf("%w: game_name cannot be empty", ErrValidationFailed)
		}
		tournament.GameName = strings.TrimSpace(*input.GameName)
	}
	if input.Format != nil {
		tournament.Format = strings.TrimSpace(*input.Format)
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.StartDate != nil {
		tournament.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = input.EndDate
	}
	if err := validateTournamentDates(tournament.StartDate, tournament.EndDate); err != nil {
		return nil, err
	}
	if input.MaxPlayers != nil {
		if *input.MaxPlayers <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		// Нельзя опустить лимит ниже уже зарегистрированных участников.
		if *input.MaxPlayers < tournament.PlayerCount {
			return nil, fmt.Errorf("%w: %d competitors already registered", ErrTournamentInvalidCapacity, tournament.PlayerCount)
		}
		tournament.MaxPlayers = input.MaxPlayers
	}
	if input.Status != nil {
		next := models.TournamentStatus(*input.Status)
		if !isValidStatusTransition(tournament.Status, next) {
			return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrTournamentInvalidStatus, tournament.Status, next)
		}
		tournament.Status = next
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, s.mapTournamentRepoError(err)
	}

	populateTournamentLogoURLFunc(tournament, s.uploader)
	return tournament, nil
}

// Delete удаляет турнир вместе со всеми зависимыми сущностями одной
// транзакцией: хайлайты, матчи, новости, участники, затем сам турнир.
func (s *tournamentService) Delete(ctx context.Context, id, requesterID int, requesterRole models.UserRole) error {
	tournament, err := s.getOwned(ctx, id, requesterID, requesterRole)
	if err != nil {
		return err
	}

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if err := s.highlightRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.matchRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.newsRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.competitorRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.tournamentRepo.Delete(ctx, exec, id); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		return mapStoreError(txErr)
	}

	if tournament.LogoKey != nil && *tournament.LogoKey != "" && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete tournament logo from storage",
				slog.Int("tournament_id", id),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := s.getOwned(ctx, id, requesterID, requesterRole)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := tournament.LogoKey
	newKey := fmt.Sprintf("tournaments/%d/logo%s", tournament.ID, ext)

	if _, err := s.uploader.Upload(ctx, newKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournament.ID, &newKey); err != nil {
		_ = s.uploader.Delete(ctx, newKey)
		return nil, fmt.Errorf("failed to save tournament logo key: %w", err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != newKey {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	tournament.LogoKey = &newKey
	populateTournamentLogoURLFunc(tournament, s.uploader)
	return tournament, nil
}

// AutoUpdateStatusesByDates переводит турниры по их датам:
// upcoming -> ongoing после start_date, ongoing -> completed после end_date.
// Возвращает число обновлённых турниров.
func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) (int, error) {
	now := time.Now()

	tournaments, err := s.tournamentRepo.GetTournamentsForAutoStatusUpdate(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to load tournaments for auto status update: %w", err)
	}

	updated := 0
	for _, t := range tournaments {
		var next models.TournamentStatus
		switch {
		case t.Status == models.StatusUpcoming && t.StartDate != nil && !t.StartDate.After(now):
			next = models.StatusOngoing
		case t.Status == models.StatusOngoing && t.EndDate != nil && !t.EndDate.After(now):
			next = models.StatusCompleted
		default:
			continue
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to auto-update tournament status",
					slog.Int("tournament_id", t.ID),
					slog.String("next_status", string(next)),
					slog.Any("error", err),
				)
			}
			continue
		}
		updated++
	}
	return updated, nil
}

// getOwned загружает турнир и проверяет, что запрашивающий — его организатор
// либо администратор.
func (s *tournamentService) getOwned(ctx context.Context, id, requesterID int, requesterRole models.UserRole) (*models.Tournament, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	if tournament.OrganizerID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

func (s *tournamentService) mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentInvalidOrg):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrTournamentInUse):
		return fmt.Errorf("%w: tournament has dependent records", ErrValidationFailed)
	default:
		return err
	}
}

func validateTournamentDates(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return ErrTournamentInvalidDateRange
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusUpcoming:  {models.StatusOngoing, models.StatusCompleted},
		models.StatusOngoing:   {models.StatusCompleted},
		models.StatusCompleted: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}
