package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/storage"
)

type CreateHighlightInput struct {
	MatchID  *int   `json:"match_id"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

type UpdateHighlightInput struct {
	Title    *string `json:"title"`
	VideoURL *string `json:"video_url"`
	MatchID  *int    `json:"match_id"`
}

type HighlightService interface {
	Create(ctx context.Context, tournamentID, requesterID int, requesterRole models.UserRole, input CreateHighlightInput) (*models.Highlight, error)
	GetByID(ctx context.Context, id int) (*models.Highlight, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Highlight, error)
	Update(ctx context.Context, highlightID, requesterID int, requesterRole models.UserRole, input UpdateHighlightInput) (*models.Highlight, error)
	UploadThumbnail(ctx context.Context, highlightID, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.Highlight, error)
	Delete(ctx context.Context, highlightID, requesterID int, requesterRole models.UserRole) error
}

type highlightService struct {
	highlightRepo  repositories.HighlightRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
}

func NewHighlightService(
	highlightRepo repositories.HighlightRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) HighlightService {
	return &highlightService{
		highlightRepo:  highlightRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
	}
}

func (s *highlightService) Create(ctx context.Context, tournamentID, requesterID int, requesterRole models.UserRole, input CreateHighlightInput) (*models.Highlight, error) {
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

	if err := validateHighlightFields(input.Title, input.VideoURL); err != nil {
		return nil, err
	}

	// Хайлайт можно привязать только к матчу этого же турнира.
	if input.MatchID != nil {
		match, err := s.matchRepo.GetByID(ctx, *input.MatchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil, ErrMatchNotFound
			}
			return nil, fmt.Errorf("failed to get match %d: %w", *input.MatchID, err)
		}
		if match.TournamentID != tournamentID {
			return nil, ErrMatchCompetitorMismatch
		}
	}

	highlight := &models.Highlight{
		TournamentID: tournamentID,
		MatchID:      input.MatchID,
		Title:        strings.TrimSpace(input.Title),
		VideoURL:     input.VideoURL,
	}

	if err := s.highlightRepo.Create(ctx, highlight); err != nil {
		switch {
		case errors.Is(err, repositories.ErrHighlightTournamentInvalid):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrHighlightMatchInvalid):
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to create highlight: %w", err)
	}
	return highlight, nil
}

func (s *highlightService) GetByID(ctx context.Context, id int) (*models.Highlight, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	highlight, err := s.highlightRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrHighlightNotFound) {
			return nil, ErrHighlightNotFound
		}
		return nil, fmt.Errorf("failed to get highlight %d: %w", id, err)
	}

	populateHighlightThumbnailURLFunc(highlight, s.uploader)
	return highlight, nil
}

func (s *highlightService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Highlight, error) {
	if tournamentID <= 0 {
		return nil, ErrInvalidID
	}
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	items, err := s.highlightRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}

	for i := range items {
		populateHighlightThumbnailURLFunc(&items[i], s.uploader)
	}
	return items, nil
}

func (s *highlightService) Update(ctx context.Context, highlightID, requesterID int, requesterRole models.UserRole, input UpdateHighlightInput) (*models.Highlight, error) {
	highlight, err := s.getOwned(ctx, highlightID, requesterID, requesterRole)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		highlight.Title = strings.TrimSpace(*input.Title)
	}
	if input.VideoURL != nil {
		highlight.VideoURL = *input.VideoURL
	}
	if err := validateHighlightFields(highlight.Title, highlight.VideoURL); err != nil {
		return nil, err
	}

	if input.MatchID != nil {
		match, err := s.matchRepo.GetByID(ctx, *input.MatchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil, ErrMatchNotFound
			}
			return nil, fmt.Errorf("failed to get match %d: %w", *input.MatchID, err)
		}
		if match.TournamentID != highlight.TournamentID {
			return nil, ErrMatchCompetitorMismatch
		}
		highlight.MatchID = input.MatchID
	}

	if err := s.highlightRepo.Update(ctx, highlight); err != nil {
		switch {
		case errors.Is(err, repositories.ErrHighlightNotFound):
			return nil, ErrHighlightNotFound
		case errors.Is(err, repositories.ErrHighlightMatchInvalid):
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update highlight %d: %w", highlightID, err)
	}

	populateHighlightThumbnailURLFunc(highlight, s.uploader)
	return highlight, nil
}

func (s *highlightService) UploadThumbnail(ctx context.Context, highlightID, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.Highlight, error) {
	highlight, err := s.getOwned(ctx, highlightID, requesterID, requesterRole)
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

	oldKey := highlight.ThumbnailKey
	newKey := fmt.Sprintf("highlights/%d/thumbnail%s", highlight.ID, ext)

	if _, err := s.uploader.Upload(ctx, newKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload highlight thumbnail: %w", err)
	}

	if err := s.highlightRepo.UpdateThumbnailKey(ctx, highlight.ID, &newKey); err != nil {
		_ = s.uploader.Delete(ctx, newKey)
		return nil, fmt.Errorf("failed to save highlight thumbnail key: %w", err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != newKey {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	highlight.ThumbnailKey = &newKey
	populateHighlightThumbnailURLFunc(highlight, s.uploader)
	return highlight, nil
}

func (s *highlightService) Delete(ctx context.Context, highlightID, requesterID int, requesterRole models.UserRole) error {
	highlight, err := s.getOwned(ctx, highlightID, requesterID, requesterRole)
	if err != nil {
		return err
	}

	if err := s.highlightRepo.Delete(ctx, highlightID); err != nil {
		if errors.Is(err, repositories.ErrHighlightNotFound) {
			return ErrHighlightNotFound
		}
		return fmt.Errorf("failed to delete highlight %d: %w", highlightID, err)
	}

	if highlight.ThumbnailKey != nil && *highlight.ThumbnailKey != "" && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *highlight.ThumbnailKey)
	}
	return nil
}

// getOwned проверяет, что запрашивающий — организатор турнира хайлайта
// либо администратор.
func (s *highlightService) getOwned(ctx context.Context, highlightID, requesterID int, requesterRole models.UserRole) (*models.Highlight, error) {
	if highlightID <= 0 {
		return nil, ErrInvalidID
	}

	highlight, err := s.highlightRepo.GetByID(ctx, highlightID)
	if err != nil {
		if errors.Is(err, repositories.ErrHighlightNotFound) {
			return nil, ErrHighlightNotFound
		}
		return nil, fmt.Errorf("failed to get highlight %d: %w", highlightID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, highlight.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", highlight.TournamentID, err)
	}
	if tournament.OrganizerID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return highlight, nil
}

func validateHighlightFields(title, videoURL string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	u, err := url.Parse(videoURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: video_url must be a valid http(s) URL", ErrValidationFailed)
	}
	return nil
}
