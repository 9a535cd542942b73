package handlers

import (
	"net/http"

	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

type HighlightHandler struct {
	highlightService services.HighlightService
}

func NewHighlightHandler(highlightService services.HighlightService) *HighlightHandler {
	return &HighlightHandler{highlightService: highlightService}
}

// Create godoc
// @Summary Добавить хайлайт турнира
// @Tags highlights
// @Description Матч, если указан, должен принадлежать тому же турниру.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.CreateHighlightInput true "Данные хайлайта"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Чужой турнир"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/highlights [post]
func (h *HighlightHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var input services.CreateHighlightInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	highlight, err := h.highlightService.Create(r.Context(), tournamentID, requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "highlight": highlight}, nil)
}

// GetByID godoc
// @Summary Получить хайлайт
// @Tags highlights
// @Produce json
// @Param highlightID path int true "Highlight ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Хайлайт не найден"
// @Router /highlights/{highlightID} [get]
func (h *HighlightHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "highlightID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	highlight, err := h.highlightService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "highlight": highlight}, nil)
}

// ListByTournament godoc
// @Summary Хайлайты турнира
// @Tags highlights
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/highlights [get]
func (h *HighlightHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	items, err := h.highlightService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "highlights": items}, nil)
}

// Update godoc
// @Summary Обновить хайлайт
// @Tags highlights
// @Accept json
// @Produce json
// @Param highlightID path int true "Highlight ID"
// @Param input body services.UpdateHighlightInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Чужой турнир"
// @Security BearerAuth
// @Router /highlights/{highlightID} [put]
func (h *HighlightHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "highlightID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.UpdateHighlightInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	highlight, err := h.highlightService.Update(r.Context(), id, requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "highlight": highlight}, nil)
}

// UploadThumbnail godoc
// @Summary Загрузить превью хайлайта
// @Tags highlights
// @Accept multipart/form-data
// @Produce json
// @Param highlightID path int true "Highlight ID"
// @Param thumbnail formData file true "Файл изображения"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /highlights/{highlightID}/thumbnail [post]
func (h *HighlightHandler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "highlightID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	file, contentType, err := fileFromMultipart(r, "thumbnail")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	defer file.Close()

	highlight, err := h.highlightService.UploadThumbnail(r.Context(), id, requesterID, requesterRole, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "highlight": highlight}, nil)
}

// Delete godoc
// @Summary Удалить хайлайт
// @Tags highlights
// @Produce json
// @Param highlightID path int true "Highlight ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /highlights/{highlightID} [delete]
func (h *HighlightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "highlightID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	if err := h.highlightService.Delete(r.Context(), id, requesterID, requesterRole); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil)
}
