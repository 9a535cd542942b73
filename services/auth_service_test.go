package services

import (
	"context"
	"errors"
	"testing"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
)

func newAuthFixture() (*fakeStore, AuthService) {
	store := newFakeStore()
	return store, NewAuthService(&fakeUserRepo{store: store})
}

func TestSignUpDefaultsToPlayer(t *testing.T) {
	_, service := newAuthFixture()

	user, err := service.SignUp(context.Background(), SignUpInput{
		FullName: "Alice Johnson",
		Email:    "  Alice@Example.COM ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != models.RolePlayer {
		t.Errorf("expected default role player, got %s", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Errorf("expected password hash stripped from response")
	}
}

func TestSignUpRoles(t *testing.T) {
	tests := []struct {
		role     string
		wantRole models.UserRole
		wantErr  bool
	}{
		{"", models.RolePlayer, false},
		{"player", models.RolePlayer, false},
		{"organizer", models.RoleOrganizer, false},
		{"admin", "", true},
		{"superuser", "", true},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			_, service := newAuthFixture()
			user, err := service.SignUp(context.Background(), SignUpInput{
				FullName: "Alice",
				Email:    "alice@example.com",
				Password: "correct horse",
				Role:     tt.role,
			})
			if tt.wantErr {
				if !errors.Is(err, ErrValidationFailed) {
					t.Fatalf("expected ErrValidationFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Role != tt.wantRole {
				t.Errorf("expected role %s, got %s", tt.wantRole, user.Role)
			}
		})
	}
}

func TestSignUpShortPassword(t *testing.T) {
	_, service := newAuthFixture()

	_, err := service.SignUp(context.Background(), SignUpInput{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	_, service := newAuthFixture()

	input := SignUpInput{FullName: "Alice", Email: "alice@example.com", Password: "correct horse"}
	if _, err := service.SignUp(context.Background(), input); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	input.FullName = "Alice Clone"
	_, err := service.SignUp(context.Background(), input)
	if !errors.Is(err, ErrUserEmailConflict) {
		t.Fatalf("expected ErrUserEmailConflict, got %v", err)
	}
}

func TestSignInFlow(t *testing.T) {
	_, service := newAuthFixture()

	if _, err := service.SignUp(context.Background(), SignUpInput{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	user, err := service.SignIn(context.Background(), SignInInput{
		Email:    "ALICE@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("signin failed: %v", err)
	}
	if user.PasswordHash != "" {
		t.Errorf("expected password hash stripped from response")
	}

	// Неверный пароль и незнакомый email дают один и тот же ответ.
	if _, err := service.SignIn(context.Background(), SignInInput{
		Email:    "alice@example.com",
		Password: "wrong password",
	}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Fatalf("expected ErrAuthInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.SignIn(context.Background(), SignInInput{
		Email:    "nobody@example.com",
		Password: "correct horse",
	}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Fatalf("expected ErrAuthInvalidCredentials for unknown email, got %v", err)
	}
}
