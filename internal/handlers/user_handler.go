package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

// multipart headers and boundaries on top of the file itself
const multipartOverhead = 1 << 20

type UserHandler struct {
	service        services.UserService
	maxAvatarBytes int64
	logger         *slog.Logger
}

func NewUserHandler(service services.UserService, maxAvatarBytes int64, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, maxAvatarBytes: maxAvatarBytes, logger: logger}
}

// @Summary  Current user profile
// @Tags     Users
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.User
// @Failure  401  {object}  errorEnvelope
// @Router   /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Update profile
// @Description  telegram_chat_id 0 unlinks Telegram notifications
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      models.UpdateProfileInput  true  "Fields to change"
// @Success      200      {object}  models.User
// @Failure      400      {object}  errorEnvelope
// @Failure      409      {object}  errorEnvelope
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	var in models.UpdateProfileInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary  Change password
// @Tags     Users
// @Accept   json
// @Security BearerAuth
// @Param    password  body  models.ChangePasswordInput  true  "Current and new password"
// @Success  204
// @Failure  400  {object}  errorEnvelope
// @Router   /users/me/password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	var in models.ChangePasswordInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), uid, in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  Upload avatar
// @Tags     Users
// @Accept   multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param    avatar  formData  file  true  "jpeg, png, gif or webp image"
// @Success  200     {object}  models.User
// @Failure  400     {object}  errorEnvelope
// @Router   /users/me/avatar [patch]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxAvatarBytes+multipartOverhead)

	fh, err := c.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			err = &models.ValidationError{Field: "avatar", Message: fmt.Sprintf("must not exceed %d bytes", h.maxAvatarBytes)}
		default:
			err = &models.ValidationError{Field: "avatar", Message: "no file uploaded"}
		}
		respondError(c, h.logger, err)
		return
	}
	if fh.Size > h.maxAvatarBytes {
		respondError(c, h.logger, &models.ValidationError{
			Field:   "avatar",
			Message: fmt.Sprintf("must not exceed %d bytes", h.maxAvatarBytes),
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()

	user, err := h.service.UploadAvatar(c.Request.Context(), uid, f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
