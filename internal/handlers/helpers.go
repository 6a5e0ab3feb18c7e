package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskboard/internal/middleware"
	"taskboard/internal/models"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

var registerOnce sync.Once

// RegisterValidators installs the enum rules used by the input structs and
// makes validation errors report JSON field names. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
			return models.TaskStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
			return models.TaskPriority(fl.Field().String()).Valid()
		})
	})
}

// bindJSON decodes the body into dst and converts binding failures into
// domain validation errors.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &models.ValidationError{Field: fe.Field(), Message: ruleMessage(fe)}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &models.ValidationError{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: malformed JSON", models.ErrInvalidInput)
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty body", models.ErrInvalidInput)
	}
	// encoding/json has no typed error for unknown fields
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return &models.ValidationError{Field: field, Message: "is not allowed"}
	}
	return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid address"
	case "taskstatus":
		return "must be one of TODO, IN_PROGRESS, DONE"
	case "taskpriority":
		return "must be one of LOW, MEDIUM, HIGH"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt", "gte":
		return "must be a positive number"
	}
	return fmt.Sprintf("failed on '%s' validation", fe.Tag())
}

// respondError writes the error envelope for err. Unexpected errors are
// logged and answered with a generic 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, body := mapError(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"err", err,
			"path", c.FullPath(),
			"request_id", c.GetString(middleware.CtxRequestID),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorEnvelope{Error: body})
}

func mapError(err error) (int, APIError) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, APIError{
			Code:    "validation_error",
			Message: "Validation failed",
			Details: []FieldError{{Field: vErr.Field, Message: vErr.Message}},
		}
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, APIError{Code: "invalid_input", Message: err.Error()}
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, APIError{Code: "unauthorized", Message: "Authentication is required"}
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, APIError{Code: "forbidden", Message: "You do not have permission to perform this action"}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, APIError{Code: "not_found", Message: "The requested resource was not found"}
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, APIError{Code: "conflict", Message: "The resource already exists or conflicts with current state"}
	}
	return http.StatusInternalServerError, APIError{Code: "internal_error", Message: "An unexpected error occurred"}
}

// currentUserID returns the authenticated caller set by the auth middleware.
func currentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// caller resolves the current user or answers 401.
func caller(c *gin.Context, logger *slog.Logger) (int64, bool) {
	id, ok := currentUserID(c)
	if !ok {
		respondError(c, logger, models.ErrUnauthorized)
	}
	return id, ok
}

// parseID reads a positive int64 path parameter.
func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}
