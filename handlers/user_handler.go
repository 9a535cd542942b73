package handlers

import (
	"net/http"

	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

const maxUploadSize = 10 << 20 // 10MB

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetByID godoc
// @Summary Получить профиль пользователя
// @Tags users
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Пользователь не найден"
// @Router /users/{userID} [get]
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "user": user}, nil)
}

// Update godoc
// @Summary Обновить профиль пользователя
// @Tags users
// @Description Доступно самому пользователю и администратору.
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param input body services.UpdateUserInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Чужой профиль"
// @Security BearerAuth
// @Router /users/{userID} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	var input services.UpdateUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), id, requesterID, requesterRole, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "user": user}, nil)
}

// UploadAvatar godoc
// @Summary Загрузить аватар пользователя
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param userID path int true "User ID"
// @Param avatar formData file true "Файл изображения"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{userID}/avatar [post]
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	requesterID, requesterRole, err := requesterFromContext(r)
	if err != nil {
		failureResponse(w, http.StatusUnauthorized, reasonUnauthorized, err.Error())
		return
	}

	file, contentType, err := fileFromMultipart(r, "avatar")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	defer file.Close()

	user, err := h.userService.UploadAvatar(r.Context(), id, requesterID, requesterRole, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"success": true, "user": user}, nil)
}
