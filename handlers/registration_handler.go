package handlers

import (
	"errors"
	"net/http"

	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register godoc
// @Summary Зарегистрироваться участником турнира
// @Tags registrations
// @Description Тело опционально: имя команды берётся из профиля, почта — из аккаунта.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.RegisterCompetitorInput false "Профиль команды"
// @Success 201 {object} map[string]interface{} "Участник и обновлённый турнир"
// @Failure 403 {object} map[string]interface{} "Регистрация закрыта"
// @Failure 409 {object} map[string]interface{} "Нет мест / уже зарегистрирован"
// @Failure 503 {object} map[string]interface{} "Конфликт транзакций, повторите запрос"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/competitors [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, _, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	// Тело может отсутствовать вовсе, в том числе при chunked-запросе
	// без Content-Length; полагаемся на сам декодер, а не на заголовок.
	var input services.RegisterCompetitorInput
	if err := readJSON(w, r, &input); err != nil && !errors.Is(err, errEmptyBody) {
		badRequestResponse(w, err)
		return
	}

	result, err := h.registrationService.Register(r.Context(), tournamentID, requesterID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{
		"success":    true,
		"competitor": result.Competitor,
		"tournament": result.Tournament,
	}, nil)
}

// Withdraw godoc
// @Summary Снять участника с турнира
// @Tags registrations
// @Description Разрешено владельцу записи и администратору.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param competitorID path int true "Competitor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Чужая запись"
// @Failure 404 {object} map[string]interface{} "Участник не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/competitors/{competitorID} [delete]
func (h *RegistrationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, _, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	if err := h.registrationService.Withdraw(r.Context(), tournamentID, competitorID, requesterID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil)
}
