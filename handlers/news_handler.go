package handlers

import (
	"net/http"
	"strconv"

	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

type NewsHandler struct {
	newsService services.NewsService
}

func NewNewsHandler(newsService services.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// Create godoc
// @Summary Опубликовать новость
// @Tags news
// @Description Новость с tournament_id может публиковать только организатор этого турнира или администратор.
// @Accept json
// @Produce json
// @Param input body services.CreateNewsInput true "Данные новости"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Недостаточно прав"
// @Security BearerAuth
// @Router /news [post]
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.CreateNewsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	news, err := h.newsService.Create(r.Context(), requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "news": news}, nil)
}

// GetByID godoc
// @Summary Получить новость
// @Tags news
// @Produce json
// @Param newsID path int true "News ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Новость не найдена"
// @Router /news/{newsID} [get]
func (h *NewsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "newsID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	news, err := h.newsService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "news": news}, nil)
}

// List godoc
// @Summary Лента новостей
// @Tags news
// @Produce json
// @Param tournament_id query int false "Фильтр по турниру"
// @Param author_id query int false "Фильтр по автору"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Router /news [get]
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListNewsFilter{}

	q := r.URL.Query()
	if raw := q.Get("tournament_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			badRequestResponse(w, errInvalidQueryParam("tournament_id"))
			return
		}
		filter.TournamentID = &id
	}
	if raw := q.Get("author_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			badRequestResponse(w, errInvalidQueryParam("author_id"))
			return
		}
		filter.AuthorID = &id
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

	items, err := h.newsService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "news": items}, nil)
}

// Update godoc
// @Summary Обновить новость
// @Tags news
// @Accept json
// @Produce json
// @Param newsID path int true "News ID"
// @Param input body services.UpdateNewsInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Чужая новость"
// @Security BearerAuth
// @Router /news/{newsID} [put]
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "newsID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.UpdateNewsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	news, err := h.newsService.Update(r.Context(), id, requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "news": news}, nil)
}

// UploadImage godoc
// @Summary Загрузить обложку новости
// @Tags news
// @Accept multipart/form-data
// @Produce json
// @Param newsID path int true "News ID"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /news/{newsID}/image [post]
func (h *NewsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "newsID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	file, contentType, err := fileFromMultipart(r, "image")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	defer file.Close()

	news, err := h.newsService.UploadImage(r.Context(), id, requesterID, requesterRole, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "news": news}, nil)
}

// Delete godoc
// @Summary Удалить новость
// @Tags news
// @Produce json
// @Param newsID path int true "News ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /news/{newsID} [delete]
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "newsID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	if err := h.newsService.Delete(r.Context(), id, requesterID, requesterRole); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil)
}
