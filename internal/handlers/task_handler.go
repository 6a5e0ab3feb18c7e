package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	logger  *slog.Logger
}

func NewTaskHandler(service services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// @Summary      Create task
// @Description  status defaults to TODO, priority to MEDIUM; the caller must own the project
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      models.CreateTaskInput  true  "Task"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	var in models.CreateTaskInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	task, err := h.service.Create(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary  Get task
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Param    id   path      int  true  "Task ID"
// @Success  200  {object}  models.Task
// @Failure  403  {object}  errorEnvelope
// @Failure  404  {object}  errorEnvelope
// @Router   /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      List tasks
// @Description  Tasks the caller created or is assigned to
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status      query  string  false  "TODO | IN_PROGRESS | DONE"
// @Param        project_id  query  int     false  "Project ID"
// @Success      200  {array}  models.Task
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	var filter models.TaskFilter
	if v, ok := c.GetQuery("status"); ok {
		s, err := models.ParseTaskStatus(v)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		filter.Status = &s
	}
	if v, ok := c.GetQuery("project_id"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, h.logger, &models.ValidationError{Field: "project_id", Message: "must be a positive integer"})
			return
		}
		filter.ProjectID = &id
	}

	tasks, err := h.service.List(c.Request.Context(), uid, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Update task
// @Description  Partial update; assignee_id 0 clears the assignee. The project cannot change.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                     true  "Task ID"
// @Param        task  body      models.UpdateTaskInput  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	uid, ok := caller(c, h.logger)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var in models.UpdateTaskInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	task, err := h.service.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary  Delete task
// @Tags     Tasks
// @Security BearerAuth
// @Param    id  path  int  true  "Task ID"
// @Success  204
// @Router   /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
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
