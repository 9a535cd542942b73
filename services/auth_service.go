package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/utils"
)

const minPasswordLength = 8

type SignUpInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SignInInput struct {
	Email    string
	Password string
}

type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*models.User, error)
	SignIn(ctx context.Context, input SignInInput) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if fullName == "" {
		return nil, fmt.Errorf("%w: full_name is required", ErrValidationFailed)
	}
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: email has invalid format", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: minimum %d characters", ErrPasswordTooShort, minPasswordLength)
	}

	role := models.RolePlayer
	switch models.UserRole(input.Role) {
	case models.RoleOrganizer:
		role = models.RoleOrganizer
	case models.RolePlayer, "":
		// роль по умолчанию
	default:
		// admin нельзя получить самозаписью
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, input.Role)
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) SignIn(ctx context.Context, input SignInInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Не раскрываем, зарегистрирован ли email.
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}
