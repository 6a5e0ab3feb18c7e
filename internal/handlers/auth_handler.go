package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

type AuthHandler struct {
	users  services.UserService
	logger *slog.Logger
}

func NewAuthHandler(users services.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// @Summary      Регистрация
// @Description  Creates a USER account and sends a welcome email when mail is configured
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupInput  true  "New account"
// @Success      201     {object}  models.User
// @Failure      400     {object}  errorEnvelope
// @Failure      409     {object}  errorEnvelope
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var in models.SignupInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	user, err := h.users.Signup(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Вход в систему
// @Description  Exchanges credentials for a bearer access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  tokenResponse
// @Failure      400    {object}  errorEnvelope
// @Failure      401    {object}  errorEnvelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	token, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token})
}
