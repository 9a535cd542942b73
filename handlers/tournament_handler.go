package handlers

import (
	"net/http"
	"strconv"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	statsService      services.StatsService
}

func NewTournamentHandler(tournamentService services.TournamentService, statsService services.StatsService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		statsService:      statsService,
	}
}

// Create godoc
// @Summary Создать турнир
// @Tags tournaments
// @Description Доступно организаторам и администраторам. Новый турнир всегда в статусе upcoming.
// @Accept json
// @Produce json
// @Param input body services.CreateTournamentInput true "Данные турнира"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 403 {object} map[string]interface{} "Недостаточно прав"
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	requesterID, _, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), requesterID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "tournament": tournament}, nil)
}

// GetByID godoc
// @Summary Получить турнир со списком участников
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Турнир не найден"
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.GetWithCompetitors(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "tournament": tournament}, nil)
}

// List godoc
// @Summary Список турниров с фильтрами
// @Tags tournaments
// @Produce json
// @Param organizer_id query int false "Фильтр по организатору"
// @Param status query string false "upcoming | ongoing | completed"
// @Param game_name query string false "Фильтр по игре"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{}

	q := r.URL.Query()
	if raw := q.Get("organizer_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			badRequestResponse(w, errInvalidQueryParam("organizer_id"))
			return
		}
		filter.OrganizerID = &id
	}
	if raw := q.Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		switch status {
		case models.StatusUpcoming, models.StatusOngoing, models.StatusCompleted:
			filter.Status = &status
		default:
			badRequestResponse(w, errInvalidQueryParam("status"))
			return
		}
	}
	if raw := q.Get("game_name"); raw != "" {
		filter.GameName = &raw
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequestResponse(w, errInvalidQueryParam("limit"))
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			badRequestResponse(w, errInvalidQueryParam("offset"))
			return
		}
		filter.Offset = offset
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "tournaments": tournaments}, nil)
}

// Update godoc
// @Summary Обновить турнир
// @Tags tournaments
// @Description Доступно организатору турнира и администратору. Статус меняется только вперёд.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.UpdateTournamentInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Недопустимый переход статуса или лимит"
// @Failure 403 {object} map[string]interface{} "Чужой турнир"
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [put]
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), id, requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "tournament": tournament}, nil)
}

// Delete godoc
// @Summary Удалить турнир со всеми зависимыми данными
// @Tags tournaments
// @Description Матчи, новости, хайлайты и участники удаляются одной транзакцией.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Чужой турнир"
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id, requesterID, requesterRole); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil)
}

// UploadLogo godoc
// @Summary Загрузить логотип турнира
// @Tags tournaments
// @Accept multipart/form-data
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param logo formData file true "Файл изображения"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/logo [post]
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	file, contentType, err := fileFromMultipart(r, "logo")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	defer file.Close()

	tournament, err := h.tournamentService.UploadLogo(r.Context(), id, requesterID, requesterRole, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "tournament": tournament}, nil)
}

// Stats godoc
// @Summary Сводка по турниру
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Счётчики участников, матчей и новостей"
// @Failure 404 {object} map[string]interface{} "Турнир не найден"
// @Router /tournaments/{tournamentID}/stats [get]
func (h *TournamentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	stats, err := h.statsService.TournamentStats(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "stats": stats}, nil)
}
