package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrInvalidID              = errors.New("invalid identifier")
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrRegistrationClosed     = errors.New("tournament registration is closed")
	ErrTournamentFull         = errors.New("tournament is full")
	ErrAlreadyRegistered      = errors.New("user is already registered for this tournament")
	ErrOwnershipMismatch      = errors.New("competitor does not belong to this tournament")
	ErrTournamentNameRequired = errors.New("tournament name is required")

	// Ошибки конфликтов
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrNewsNotFound       = errors.New("news not found")
	ErrHighlightNotFound  = errors.New("highlight not found")

	// Ошибки турниров
	ErrTournamentInvalidDateRange = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity  = errors.New("tournament max players must be positive")
	ErrTournamentInvalidStatus    = errors.New("invalid tournament status provided")
	ErrMatchCompetitorMismatch    = errors.New("match competitors must belong to the tournament")

	// Ошибки хранилища: транзакция не зафиксирована, состояние не изменилось.
	// Обе безопасны для повтора на стороне вызывающего.
	ErrTransactionConflict = errors.New("concurrent update conflict, please retry")
	ErrStoreUnavailable    = errors.New("storage temporarily unavailable")
)
