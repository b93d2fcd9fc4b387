package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "task-sync.com/task-sync/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.POST("/session", h.Login)
	e.GET("/session", h.GetSession)
	e.DELETE("/session", h.Logout)
	e.DELETE("/session/edit", h.CancelEdit)

	e.GET("/tasks", h.ListTasks)
	e.POST("/tasks", h.CreateTask)
	e.PUT("/tasks/:id", h.UpdateTask)
	e.POST("/tasks/:id/toggle", h.ToggleTask)
	e.POST("/tasks/:id/edit", h.BeginEdit)
	e.DELETE("/tasks/:id", h.DeleteTask)
}
