package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/storage"
	"github.com/minhkhoa23/npcnpm-final-sub001/utils"
)

type UpdateUserInput struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, requesterID int, requesterRole models.UserRole, input UpdateUserInput) (*models.User, error)
	UploadAvatar(ctx context.Context, userID, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID, requesterID int, requesterRole models.UserRole, input UpdateUserInput) (*models.User, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	if userID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full_name cannot be empty", ErrValidationFailed)
		}
		user.FullName = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if !utils.IsValidEmail(email) {
			return nil, fmt.Errorf("%w: email has invalid format", ErrValidationFailed)
		}
		user.Email = email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID, requesterID int, requesterRole models.UserRole, contentType string, file io.Reader) (*models.User, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	if userID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := user.LogoKey
	newKey := fmt.Sprintf("users/%d/avatar%s", user.ID, ext)

	if _, err := s.uploader.Upload(ctx, newKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.UpdateLogoKey(ctx, user.ID, &newKey); err != nil {
		// Загруженный файл остаётся сиротой; чистим его сразу.
		_ = s.uploader.Delete(ctx, newKey)
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != newKey {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	user.LogoKey = &newKey
	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}
