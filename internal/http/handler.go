package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-sync.com/task-sync/internal/data_models"
	"task-sync.com/task-sync/internal/engine"
	apperrors "task-sync.com/task-sync/internal/errors"
	"task-sync.com/task-sync/internal/http/validators"
)

type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

func (h *Handler) Login(c echo.Context) error {
	var req dto.SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateSessionRequest(&req); err != nil {
		return err
	}

	h.engine.Initialize(req.UserID)
	return c.JSON(http.StatusOK, h.engine.Session())
}

func (h *Handler) Logout(c echo.Context) error {
	h.engine.Initialize("")
	return c.JSON(http.StatusOK, h.engine.Session())
}

func (h *Handler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.Session())
}

func (h *Handler) ListTasks(c echo.Context) error {
	tasks := h.engine.Tasks()
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.engine.Submit(req.Title, req.Description, "")
	if err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	var req dto.TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.engine.Submit(req.Title, req.Description, id)
	if err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ToggleTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	task, err := h.engine.ToggleComplete(id)
	if err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	if err := h.engine.Delete(id); err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) BeginEdit(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	task, err := h.engine.BeginEdit(id)
	if err != nil {
		return echo.NewHTTPError(apperrors.StatusCode(err), err.Error())
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CancelEdit(c echo.Context) error {
	h.engine.CancelEdit()
	return c.NoContent(http.StatusNoContent)
}
