package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/board"
	"taskboard/internal/models"
	"taskboard/internal/realtime"
	"taskboard/internal/services"
)

// BoardSubscriber streams a project's task events to a connection.
type BoardSubscriber interface {
	Subscribe(projectID int64, sink realtime.Sink) (unsubscribe func())
}

type ProjectHandler struct {
	service services.ProjectService
	hub     BoardSubscriber
	logger  *slog.Logger
}

func NewProjectHandler(service services.ProjectService, hub BoardSubscriber, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, hub: hub, logger: logger}
}

type boardResponse struct {
	ProjectID int64          `json:"project_id"`
	Name      string         `json:"name"`
	Columns   []board.Column `json:"columns"`
}

// @Summary  List own projects with their tasks
// @Tags     Projects
// @Produce  json
// @Security BearerAuth
// @Success  200  {array}  models.Project
// @Router   /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	projects, err := h.service.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// @Summary  Create project
// @Tags     Projects
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    project  body      models.CreateProjectInput  true  "Project"
// @Success  201      {object}  models.Project
// @Failure  400      {object}  errorEnvelope
// @Router   /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	var in models.CreateProjectInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary  Project with tasks
// @Tags     Projects
// @Produce  json
// @Security BearerAuth
// @Param    id   path      int  true  "Project ID"
// @Success  200  {object}  models.Project
// @Failure  403  {object}  errorEnvelope
// @Failure  404  {object}  errorEnvelope
// @Router   /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary  Update project
// @Tags     Projects
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id       path      int                        true  "Project ID"
// @Param    project  body      models.UpdateProjectInput  true  "Fields to change"
// @Success  200      {object}  models.Project
// @Router   /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var in models.UpdateProjectInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary  Delete project and its tasks
// @Tags     Projects
// @Security BearerAuth
// @Param    id  path  int  true  "Project ID"
// @Success  204
// @Router   /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  Project board grouped into status columns
// @Tags     Projects
// @Produce  json
// @Security BearerAuth
// @Param    id   path      int  true  "Project ID"
// @Success  200  {object}  boardResponse
// @Router   /projects/{id}/board [get]
func (h *ProjectHandler) Board(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, boardResponse{ProjectID: p.ID, Name: p.Name, Columns: board.Group(p.Tasks)})
}

// Events upgrades to a websocket and streams the project's task events until
// the client goes away.
func (h *ProjectHandler) Events(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		respondError(c, h.logger, &models.ValidationError{Field: "upgrade", Message: err.Error()})
		return
	}
	unsubscribe := h.hub.Subscribe(p.ID, conn)
	defer unsubscribe()

	// клиент ничего не шлёт, читаем только ради close/ping
	for {
		if _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ProjectHandler) load(c *gin.Context) (*models.Project, bool) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return nil, false
	}
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	p, err := h.service.Get(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return p, true
}
