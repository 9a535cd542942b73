package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhkhoa23/npcnpm-final-sub001/live"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/storage"
)

const maxNewsTitleLength = 200

type CreateNewsInput struct {
	TournamentID *int   `json:"tournament_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
}

type UpdateNewsInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type NewsService interface {
	Create(ctx context.Context, authorID int, authorRole models.UserRole, input CreateNewsInput) (*models.News, error)
	GetByID(ctx context.Context, id int) (*models.News, error)
	List(ctx context.Context, filter repositories.ListNewsFilter) ([]models.News, error)
	Update(ctx context.Context, newsID, requesterID int, requesterRole models.UserRole, input UpdateNewsInput) (*models.News, error)
	UploadImage(ctx context.Context, newsID, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.News, error)
	Delete(ctx context.Context, newsID, requesterID int, requesterRole models.UserRole) error
}

type newsService struct {
	newsRepo       repositories.NewsRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	hub            *live.Hub
}

func NewNewsService(
	newsRepo repositories.NewsRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	hub *live.Hub,
) NewsService {
	return &newsService{
		newsRepo:       newsRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		hub:            hub,
	}
}

func (s *newsService) Create(ctx context.Context, authorID int, authorRole models.UserRole, input CreateNewsInput) (*models.News, error) {
	if authorRole != models.RoleOrganizer && authorRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	if err := validateNewsContent(input.Title, input.Content); err != nil {
		return nil, err
	}

	// Привязанная к турниру новость может публиковаться только его
	// организатором (или администратором).
	if input.TournamentID != nil {
		tournament, err := s.tournamentRepo.GetByID(ctx, *input.TournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, fmt.Errorf("failed to get tournament %d: %w", *input.TournamentID, err)
		}
		if tournament.OrganizerID != authorID && authorRole != models.RoleAdmin {
			return nil, ErrForbiddenOperation
		}
	}

	news := &models.News{
		TournamentID: input.TournamentID,
		AuthorID:     authorID,
		Title:        strings.TrimSpace(input.Title),
		Content:      input.Content,
	}

	if err := s.newsRepo.Create(ctx, news); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNewsTournamentInvalid):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrNewsAuthorInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create news: %w", err)
	}

	if s.hub != nil && news.TournamentID != nil {
		s.hub.BroadcastToTournament(*news.TournamentID, live.EventNewsPublished, news)
	}
	return news, nil
}

func (s *newsService) GetByID(ctx context.Context, id int) (*models.News, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	news, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news %d: %w", id, err)
	}

	populateNewsImageURLFunc(news, s.uploader)
	return news, nil
}

func (s *newsService) List(ctx context.Context, filter repositories.ListNewsFilter) ([]models.News, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	items, err := s.newsRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}

	for i := range items {
		populateNewsImageURLFunc(&items[i], s.uploader)
	}
	return items, nil
}

func (s *newsService) Update(ctx context.Context, newsID, requesterID int, requesterRole models.UserRole, input UpdateNewsInput) (*models.News, error) {
	news, err := s.getOwned(ctx, newsID, requesterID, requesterRole)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		news.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		news.Content = *input.Content
	}
	if err := validateNewsContent(news.Title, news.Content); err != nil {
		return nil, err
	}

	if err := s.newsRepo.Update(ctx, news); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNewsNotFound):
			return nil, ErrNewsNotFound
		case errors.Is(err, repositories.ErrNewsTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update news %d: %w", newsID, err)
	}

	populateNewsImageURLFunc(news, s.uploader)
	return news, nil
}

func (s *newsService) UploadImage(ctx context.Context, newsID, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.News, error) {
	news, err := s.getOwned(ctx, newsID, requesterID, requesterRole)
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

	oldKey := news.ImageKey
	newKey := fmt.Sprintf("news/%d/cover%s", news.ID, ext)

	if _, err := s.uploader.Upload(ctx, newKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload news image: %w", err)
	}

	if err := s.newsRepo.UpdateImageKey(ctx, news.ID, &newKey); err != nil {
		_ = s.uploader.Delete(ctx, newKey)
		return nil, fmt.Errorf("failed to save news image key: %w", err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != newKey {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	news.ImageKey = &newKey
	populateNewsImageURLFunc(news, s.uploader)
	return news, nil
}

func (s *newsService) Delete(ctx context.Context, newsID, requesterID int, requesterRole models.UserRole) error {
	news, err := s.getOwned(ctx, newsID, requesterID, requesterRole)
	if err != nil {
		return err
	}

	if err := s.newsRepo.Delete(ctx, newsID); err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return ErrNewsNotFound
		}
		return fmt.Errorf("failed to delete news %d: %w", newsID, err)
	}

	if news.ImageKey != nil && *news.ImageKey != "" && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *news.ImageKey)
	}
	return nil
}

func (s *newsService) getOwned(ctx context.Context, newsID, requesterID int, requesterRole models.UserRole) (*models.News, error) {
	if newsID <= 0 {
		return nil, ErrInvalidID
	}

	news, err := s.newsRepo.GetByID(ctx, newsID)
	if err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news %d: %w", newsID, err)
	}

	if news.AuthorID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return news, nil
}

func validateNewsContent(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if len(title) > maxNewsTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidationFailed, maxNewsTitleLength)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidationFailed)
	}
	return nil
}
