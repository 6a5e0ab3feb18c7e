package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/analytics"
	"taskboard/internal/models"
	"taskboard/internal/pdf"
)

// AnalyticsService is the read side the analytics endpoints need.
type AnalyticsService interface {
	TaskStats(ctx context.Context, ownerID int64) (*analytics.TaskStats, error)
	Productivity(ctx context.Context, ownerID int64) ([]analytics.DayCount, error)
	ProjectStats(ctx context.Context, ownerID int64) ([]analytics.ProjectStats, error)
	Overview(ctx context.Context, ownerID int64) (*analytics.Overview, error)
	Report(ctx context.Context, ownerID int64) (*analytics.Report, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type AnalyticsHandler struct {
	stats  AnalyticsService
	users  UserLookup
	pdf    pdf.Generator
	logger *slog.Logger
}

func NewAnalyticsHandler(stats AnalyticsService, users UserLookup, gen pdf.Generator, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{stats: stats, users: users, pdf: gen, logger: logger}
}

// @Summary  Task counts across own projects
// @Tags     Analytics
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  analytics.TaskStats
// @Router   /analytics/stats/tasks [get]
func (h *AnalyticsHandler) TaskStats(c *gin.Context) {
	respond(c, h, h.stats.TaskStats)
}

// @Summary  Tasks completed per day over the last 7 days
// @Tags     Analytics
// @Produce  json
// @Security BearerAuth
// @Success  200  {array}  analytics.DayCount
// @Router   /analytics/stats/productivity [get]
func (h *AnalyticsHandler) Productivity(c *gin.Context) {
	respond(c, h, h.stats.Productivity)
}

// @Summary  Per-project progress
// @Tags     Analytics
// @Produce  json
// @Security BearerAuth
// @Success  200  {array}  analytics.ProjectStats
// @Router   /analytics/stats/projects [get]
func (h *AnalyticsHandler) ProjectStats(c *gin.Context) {
	respond(c, h, h.stats.ProjectStats)
}

// @Summary  Dashboard overview
// @Tags     Analytics
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  analytics.Overview
// @Router   /analytics/stats/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	respond(c, h, h.stats.Overview)
}

// @Summary  Analytics report as PDF
// @Tags     Analytics
// @Produce  application/pdf
// @Security BearerAuth
// @Success  200  {file}  binary
// @Router   /analytics/report.pdf [get]
func (h *AnalyticsHandler) ReportPDF(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, err := h.stats.Report(ctx, uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// рендерим в буфер, чтобы ошибка не оборвала ответ на середине
	var buf bytes.Buffer
	if err := h.pdf.AnalyticsReport(&buf, user.Name, report); err != nil {
		respondError(c, h.logger, fmt.Errorf("render report: %w", err))
		return
	}
	filename := fmt.Sprintf("analytics-%s.pdf", report.GeneratedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func respond[T any](c *gin.Context, h *AnalyticsHandler, load func(context.Context, int64) (T, error)) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	v, err := load(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
