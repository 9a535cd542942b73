package handlers

import (
	"net/http"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// Create godoc
// @Summary Создать матч турнира
// @Tags matches
// @Description Оба участника (если указаны) должны принадлежать турниру.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.CreateMatchInput true "Данные матча"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Участник из другого турнира"
// @Failure 403 {object} map[string]interface{} "Чужой турнир"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches [post]
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), tournamentID, requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "match": match}, nil)
}

// GetByID godoc
// @Summary Получить матч
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Матч не найден"
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "match": match}, nil)
}

// ListByTournament godoc
// @Summary Матчи турнира
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param status query string false "scheduled | live | finished"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var statusFilter *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		switch status {
		case models.MatchStatusScheduled, models.MatchStatusLive, models.MatchStatusFinished:
			statusFilter = &status
		default:
			badRequestResponse(w, errInvalidQueryParam("status"))
			return
		}
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "matches": matches}, nil)
}

// SetScore godoc
// @Summary Обновить счёт матча
// @Tags matches
// @Description Изменение транслируется подписчикам живой ленты турнира.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body services.SetScoreInput true "Счёт и статус"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Чужой турнир"
// @Security BearerAuth
// @Router /matches/{matchID}/score [put]
func (h *MatchHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.SetScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.SetScore(r.Context(), id, requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "match": match}, nil)
}

// Delete godoc
// @Summary Удалить матч
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID} [delete]
func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	if err := h.matchService.Delete(r.Context(), id, requesterID, requesterRole); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil)
}
