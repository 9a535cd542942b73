package models

import "time"

// UserRole представляет роль пользователя, соответствующую ENUM в БД.
type UserRole string

const (
	RolePlayer    UserRole = "player"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

// User представляет зарегистрированного пользователя (принципала).
type User struct {
	ID           int       `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	LogoKey      *string   `json:"-" db:"logo_key"`
	LogoURL      *string   `json:"logo_url,omitempty" db:"-"`
}
