package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/minhkhoa23/npcnpm-final-sub001/middleware"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

type jsonResponse map[string]interface{}

// errEmptyBody: тело запроса отсутствует. Обработчики, для которых тело
// опционально, распознают эту ошибку и продолжают со значениями по умолчанию.
var errEmptyBody = errors.New("body must not be empty")

// Категории отказов в теле ответа. Клиенты ветвятся по reason, не по message.
const (
	reasonInvalidRequest     = "invalid_request"
	reasonValidation         = "validation_failed"
	reasonNotFound           = "not_found"
	reasonUnauthorized       = "unauthorized"
	reasonForbidden          = "forbidden"
	reasonRegistrationClosed = "registration_closed"
	reasonTournamentFull     = "tournament_full"
	reasonAlreadyRegistered  = "already_registered"
	reasonConflict           = "conflict"
	reasonUnavailable        = "temporarily_unavailable"
	reasonInternal           = "internal_error"
)

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// failureResponse пишет единый конверт отказа.
func failureResponse(w http.ResponseWriter, status int, reason, message string) {
	env := jsonResponse{
		"success": false,
		"reason":  reason,
		"message": message,
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	failureResponse(w, http.StatusInternalServerError, reasonInternal,
		"the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, err error) {
	failureResponse(w, http.StatusBadRequest, reasonInvalidRequest, err.Error())
}

// requesterFromContext достаёт идентификатор и роль из JWT claims запроса.
func requesterFromContext(r *http.Request) (int, models.UserRole, error) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return 0, "", err
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return 0, "", err
	}
	return userID, role, nil
}

// fileFromMultipart читает файл из multipart-формы и возвращает его Content-Type.
func fileFromMultipart(r *http.Request, field string) (multipart.File, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", fmt.Errorf("failed to parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing file field %q", field)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		file.Close()
		return nil, "", errors.New("uploaded file has no Content-Type")
	}
	return file, contentType, nil
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

func errInvalidQueryParam(name string) error {
	return fmt.Errorf("invalid %s query parameter", name)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrCompetitorNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrNewsNotFound),
		errors.Is(err, services.ErrHighlightNotFound):
		failureResponse(w, http.StatusNotFound, reasonNotFound, err.Error())

	// Регистрация закрыта: состояние турнира не позволяет операцию
	case errors.Is(err, services.ErrRegistrationClosed):
		failureResponse(w, http.StatusForbidden, reasonRegistrationClosed, err.Error())

	// Конфликты текущего состояния
	case errors.Is(err, services.ErrTournamentFull):
		failureResponse(w, http.StatusConflict, reasonTournamentFull, err.Error())
	case errors.Is(err, services.ErrAlreadyRegistered):
		failureResponse(w, http.StatusConflict, reasonAlreadyRegistered, err.Error())
	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrTournamentNameConflict):
		failureResponse(w, http.StatusConflict, reasonConflict, err.Error())

	// Невалидные данные / бизнес-правила
	case errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrOwnershipMismatch),
		errors.Is(err, services.ErrTournamentInvalidDateRange),
		errors.Is(err, services.ErrTournamentInvalidCapacity),
		errors.Is(err, services.ErrTournamentInvalidStatus),
		errors.Is(err, services.ErrMatchCompetitorMismatch):
		failureResponse(w, http.StatusBadRequest, reasonValidation, err.Error())

	// Аутентификация и доступ
	case errors.Is(err, services.ErrAuthInvalidCredentials):
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbiddenOperation):
		failureResponse(w, http.StatusForbidden, reasonForbidden, err.Error())

	// Хранилище: состояние не изменилось, можно повторить
	case errors.Is(err, services.ErrTransactionConflict),
		errors.Is(err, services.ErrStoreUnavailable):
		failureResponse(w, http.StatusServiceUnavailable, reasonUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
