package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
	}
}

// SignUp godoc
// @Summary Регистрация нового пользователя
// @Tags auth
// @Description Создаёт аккаунт (роль player по умолчанию, organizer по запросу) и сразу выдаёт JWT.
// @Accept json
// @Produce json
// @Param input body services.SignUpInput true "Данные регистрации"
// @Success 201 {object} map[string]interface{} "Пользователь и токен"
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 409 {object} map[string]interface{} "Email уже занят"
// @Router /users/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input services.SignUpInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.authService.SignUp(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{
		"success": true,
		"user":    user,
		"token":   token,
	}, nil)
}

// SignIn godoc
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Пользователь и токен"
// @Failure 401 {object} map[string]interface{} "Неверные учётные данные"
// @Router /users/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.authService.SignIn(r.Context(), services.SignInInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{
		"success": true,
		"user":    user,
		"token":   token,
	}, nil)
}

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
