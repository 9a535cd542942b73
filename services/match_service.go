package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minhkhoa23/npcnpm-final-sub001/live"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
)

type CreateMatchInput struct {
	CompetitorAID *int       `json:"competitor_a_id"`
	CompetitorBID *int       `json:"competitor_b_id"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

type SetScoreInput struct {
	ScoreA int    `json:"score_a"`
	ScoreB int    `json:"score_b"`
	Status string `json:"status"`
}

type MatchService interface {
	Create(ctx context.Context, tournamentID, requesterID int, requesterRole models.UserRole, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	SetScore(ctx context.Context, matchID, requesterID int, requesterRole models.UserRole, input SetScoreInput) (*models.Match, error)
	Delete(ctx context.Context, matchID, requesterID int, requesterRole models.UserRole) error
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	competitorRepo repositories.CompetitorRepository
	hub            *live.Hub
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	competitorRepo repositories.CompetitorRepository,
	hub *live.Hub,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		competitorRepo: competitorRepo,
		hub:            hub,
	}
}

func (s *matchService) Create(ctx context.Context, tournamentID, requesterID int, requesterRole models.UserRole, input CreateMatchInput) (*models.Match, error) {
	if tournamentID <= 0 {
		return nil, ErrInvalidID
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament.OrganizerID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	// Оба участника, если указаны, должны принадлежать этому турниру.
	for _, cid := range []*int{input.CompetitorAID, input.CompetitorBID} {
		if cid == nil {
			continue
		}
		competitor, err := s.competitorRepo.FindByID(ctx, nil, *cid)
		if err != nil {
			if errors.Is(err, repositories.ErrCompetitorNotFound) {
				return nil, ErrCompetitorNotFound
			}
			return nil, fmt.Errorf("failed to load competitor %d: %w", *cid, err)
		}
		if competitor.TournamentID != tournamentID {
			return nil, ErrMatchCompetitorMismatch
		}
	}
	if input.CompetitorAID != nil && input.CompetitorBID != nil && *input.CompetitorAID == *input.CompetitorBID {
		return nil, fmt.Errorf("%w: competitor cannot play against itself", ErrValidationFailed)
	}

	match := &models.Match{
		TournamentID:  tournamentID,
		CompetitorAID: input.CompetitorAID,
		CompetitorBID: input.CompetitorBID,
		Status:        models.MatchStatusScheduled,
		ScheduledAt:   input.ScheduledAt,
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchTournamentInvalid):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrMatchCompetitorInvalid):
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	if tournamentID <= 0 {
		return nil, ErrInvalidID
	}
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) SetScore(ctx context.Context, matchID, requesterID int, requesterRole models.UserRole, input SetScoreInput) (*models.Match, error) {
	if matchID <= 0 {
		return nil, ErrInvalidID
	}
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}

	status := models.MatchStatus(input.Status)
	switch status {
	case models.MatchStatusScheduled, models.MatchStatusLive, models.MatchStatusFinished:
	default:
		return nil, fmt.Errorf("%w: unknown match status %q", ErrValidationFailed, input.Status)
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", match.TournamentID, err)
	}
	if tournament.OrganizerID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	if err := s.matchRepo.UpdateScore(ctx, matchID, input.ScoreA, input.ScoreB, status); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match score: %w", err)
	}

	match.ScoreA = input.ScoreA
	match.ScoreB = input.ScoreB
	match.Status = status

	if s.hub != nil {
		s.hub.BroadcastToTournament(match.TournamentID, live.EventMatchScoreUpdated, match)
	}
	return match, nil
}

func (s *matchService) Delete(ctx context.Context, matchID, requesterID int, requesterRole models.UserRole) error {
	if matchID <= 0 {
		return ErrInvalidID
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to get tournament %d: %w", match.TournamentID, err)
	}
	if tournament.OrganizerID != requesterID && requesterRole != models.RoleAdmin {
		return ErrForbiddenOperation
	}

	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %d: %w", matchID, err)
	}
	return nil
}
