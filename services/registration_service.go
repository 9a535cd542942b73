package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/minhkhoa23/npcnpm-final-sub001/live"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
)

// Имя команды по умолчанию, если после обрезки пробелов ничего не осталось.
const defaultTeamName = "Unnamed Team"

const (
	maxTeamNameLength    = 100
	maxDescriptionLength = 1000
)

// RegisterCompetitorInput — опциональный профиль команды, приходящий с заявкой.
// nil-поле означает "не передано", и для него действуют правила по умолчанию.
type RegisterCompetitorInput struct {
	Name        *string `json:"name"`
	LogoURL     *string `json:"logo_url"`
	Description *string `json:"description"`
	Mail        *string `json:"mail"`
}

// RegistrationResult — созданный участник и обновлённый турнир
// с заполненным списком участников.
type RegistrationResult struct {
	Competitor *models.Competitor `json:"competitor"`
	Tournament *models.Tournament `json:"tournament"`
}

// RegistrationService координирует вступление в турнир и выход из него.
//
// Счётчик участников турнира, его список участников и сами записи Competitor
// меняются только здесь и только одной транзакцией: либо фиксируются все три,
// либо ни одного. Сервис не выполняет повторных попыток — конфликт транзакций
// возвращается вызывающему как ErrTransactionConflict.
type RegistrationService interface {
	Register(ctx context.Context, tournamentID int, requesterID int, input RegisterCompetitorInput) (*RegistrationResult, error)
	Withdraw(ctx context.Context, tournamentID int, competitorID int, requesterID int) error
}

type registrationService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	competitorRepo repositories.CompetitorRepository
	userRepo       repositories.UserRepository
	hub            *live.Hub
}

func NewRegistrationService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	competitorRepo repositories.CompetitorRepository,
	userRepo repositories.UserRepository,
	hub *live.Hub,
) RegistrationService {
	return &registrationService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		competitorRepo: competitorRepo,
		userRepo:       userRepo,
		hub:            hub,
	}
}

func (s *registrationService) Register(ctx context.Context, tournamentID int, requesterID int, input RegisterCompetitorInput) (*RegistrationResult, error) {
	if tournamentID <= 0 {
		return nil, ErrInvalidID
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load requester %d: %w", requesterID, err)
	}

	if err := validateCompetitorInput(input); err != nil {
		return nil, err
	}

	var (
		competitor *models.Competitor
		tournament *models.Tournament
	)

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Блокировка строки турнира сериализует конкурирующие регистрации:
		// проверки статуса, вместимости и дубликата ниже видят зафиксированное
		// состояние, а не устаревший снимок.
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		if t.Status != models.StatusUpcoming {
			return ErrRegistrationClosed
		}

		if t.MaxPlayers != nil && t.PlayerCount >= *t.MaxPlayers {
			return ErrTournamentFull
		}

		_, err = s.competitorRepo.FindByTournamentAndUser(ctx, exec, tournamentID, requesterID)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, repositories.ErrCompetitorNotFound) {
			return fmt.Errorf("failed to check existing registration: %w", err)
		}

		name, err := resolveTeamName(input.Name, requester.FullName)
		if err != nil {
			return err
		}

		c := &models.Competitor{
			TournamentID: tournamentID,
			UserID:       requesterID,
			Name:         name,
			LogoURL:      input.LogoURL,
			Description:  input.Description,
			Mail:         resolveCompetitorMail(input.Mail, requester.Email),
		}

		if err := s.competitorRepo.Create(ctx, exec, c); err != nil {
			// Уникальный индекс (tournament_id, user_id) — вторая линия защиты
			// от двойной регистрации.
			if errors.Is(err, repositories.ErrCompetitorConflict) {
				return ErrAlreadyRegistered
			}
			return err
		}

		count, err := s.tournamentRepo.AddToPlayerCount(ctx, exec, tournamentID, 1)
		if err != nil {
			return err
		}
		t.PlayerCount = count

		competitor = c
		tournament = t
		return nil
	})
	if txErr != nil {
		return nil, mapStoreError(txErr)
	}

	competitors, err := s.competitorRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("registration committed, but failed to load competitor list: %w", err)
	}
	tournament.Competitors = competitors

	if s.hub != nil {
		s.hub.BroadcastToTournament(tournamentID, live.EventCompetitorRegistered, competitor)
	}

	return &RegistrationResult{Competitor: competitor, Tournament: tournament}, nil
}

func (s *registrationService) Withdraw(ctx context.Context, tournamentID int, competitorID int, requesterID int) error {
	if tournamentID <= 0 || competitorID <= 0 {
		return ErrInvalidID
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load requester %d: %w", requesterID, err)
	}

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		competitor, err := s.competitorRepo.FindByID(ctx, exec, competitorID)
		if err != nil {
			if errors.Is(err, repositories.ErrCompetitorNotFound) {
				return ErrCompetitorNotFound
			}
			return err
		}

		if competitor.TournamentID != tournamentID {
			return ErrOwnershipMismatch
		}

		if competitor.UserID != requester.ID && requester.Role != models.RoleAdmin {
			return ErrForbiddenOperation
		}

		if err := s.competitorRepo.Delete(ctx, exec, competitorID); err != nil {
			return err
		}

		if _, err := s.tournamentRepo.AddToPlayerCount(ctx, exec, tournamentID, -1); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return mapStoreError(txErr)
	}

	if s.hub != nil {
		s.hub.BroadcastToTournament(tournamentID, live.EventCompetitorWithdrawn, map[string]int{
			"competitor_id": competitorID,
		})
	}
	return nil
}

// resolveTeamName выбирает имя команды: явное из заявки, иначе имя заявителя.
// Отсутствие обоих — ошибка; пустое после обрезки — заглушка.
func resolveTeamName(inputName *string, requesterName string) (string, error) {
	var raw string
	switch {
	case inputName != nil:
		raw = *inputName
	case strings.TrimSpace(requesterName) != "":
		raw = requesterName
	default:
		return "", ErrTeamNameRequired
	}

	name := strings.TrimSpace(raw)
	if name == "" {
		return defaultTeamName, nil
	}
	return name, nil
}

func resolveCompetitorMail(inputMail *string, requesterEmail string) *string {
	if inputMail != nil && strings.TrimSpace(*inputMail) != "" {
		return inputMail
	}
	if requesterEmail != "" {
		return &requesterEmail
	}
	return nil
}

func validateCompetitorInput(input RegisterCompetitorInput) error {
	if input.Name != nil && len(*input.Name) > maxTeamNameLength {
		return fmt.Errorf("%w: team name must be at most %d characters", ErrValidationFailed, maxTeamNameLength)
	}
	if input.Description != nil && len(*input.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrValidationFailed, maxDescriptionLength)
	}
	if input.LogoURL != nil && strings.TrimSpace(*input.LogoURL) != "" {
		u, err := url.Parse(*input.LogoURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: logo_url must be a valid http(s) URL", ErrValidationFailed)
		}
	}
	if input.Mail != nil && strings.TrimSpace(*input.Mail) != "" {
		if _, err := mail.ParseAddress(*input.Mail); err != nil {
			return fmt.Errorf("%w: mail must be a valid email address", ErrValidationFailed)
		}
	}
	return nil
}

// mapStoreError переводит ошибки слоя хранения в сервисную таксономию.
// Бизнес-ошибки, возвращённые из замыкания транзакции, проходят как есть.
func mapStoreError(err error) error {
	if errors.Is(err, repositories.ErrTxConflict) {
		return fmt.Errorf("%w: %v", ErrTransactionConflict, err)
	}
	return err
}
