package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	dto "task-sync.com/task-sync/internal/data_models"
)

func ValidateTaskRequest(r *dto.TaskRequest) error {
	if strings.TrimSpace(r.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	return nil
}

func ValidateSessionRequest(r *dto.SessionRequest) error {
	if strings.TrimSpace(r.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	return nil
}
