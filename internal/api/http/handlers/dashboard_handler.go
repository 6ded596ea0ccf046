package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-service/internal/api/dto"
	"github.com/spec-kit/appointment-service/internal/service"
)

// DashboardHandler serves the statistics endpoint.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// GetStatistics GET /dashboard/statistics. Accepts startDate/endDate or
// weekStart query parameters; with neither, the current Monday-start week
// is used.
func (h *DashboardHandler) GetStatistics(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}

	start := parseTime(c.Query("startDate"))
	end := parseTime(c.Query("endDate"))
	weekStart := parseDate(c.Query("weekStart"))

	stats, from, to, err := h.service.GetStatistics(c.UserContext(), start, end, weekStart)
	if err != nil {
		return err
	}

	const layout = "2006-01-02"
	return c.JSON(fiber.Map{
		"data": dto.NewDashboardStatisticsResponse(*stats, from.Format(layout), to.Format(layout)),
	})
}
