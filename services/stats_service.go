package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
)

// TournamentStats — сводка по турниру для дашборда организатора.
type TournamentStats struct {
	TournamentID    int                     `json:"tournament_id"`
	Status          models.TournamentStatus `json:"status"`
	CompetitorCount int                     `json:"competitor_count"`
	MaxPlayers      *int                    `json:"max_players,omitempty"`
	SlotsLeft       *int                    `json:"slots_left,omitempty"`
	MatchCount      int                     `json:"match_count"`
	NewsCount       int                     `json:"news_count"`
}

type StatsService interface {
	TournamentStats(ctx context.Context, tournamentID int) (*TournamentStats, error)
}

type statsService struct {
	tournamentRepo repositories.TournamentRepository
	competitorRepo repositories.CompetitorRepository
	matchRepo      repositories.MatchRepository
	newsRepo       repositories.NewsRepository
}

func NewStatsService(
	tournamentRepo repositories.TournamentRepository,
	competitorRepo repositories.CompetitorRepository,
	matchRepo repositories.MatchRepository,
	newsRepo repositories.NewsRepository,
) StatsService {
	return &statsService{
		tournamentRepo: tournamentRepo,
		competitorRepo: competitorRepo,
		matchRepo:      matchRepo,
		newsRepo:       newsRepo,
	}
}

// TournamentStats собирает счётчики по турниру параллельно.
func (s *statsService) TournamentStats(ctx context.Context, tournamentID int) (*TournamentStats, error) {
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

	stats := &TournamentStats{
		TournamentID: tournament.ID,
		Status:       tournament.Status,
		MaxPlayers:   tournament.MaxPlayers,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.competitorRepo.CountByTournament(gctx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count competitors: %w", err)
		}
		stats.CompetitorCount = count
		return nil
	})
	g.Go(func() error {
		count, err := s.matchRepo.CountByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count matches: %w", err)
		}
		stats.MatchCount = count
		return nil
	})
	g.Go(func() error {
		count, err := s.newsRepo.CountByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count news: %w", err)
		}
		stats.NewsCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if tournament.MaxPlayers != nil {
		left := *tournament.MaxPlayers - stats.CompetitorCount
		if left < 0 {
			left = 0
		}
		stats.SlotsLeft = &left
	}
	return stats, nil
}
