package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/demodeck-hq/demodeck_api/shared"
)

type AnalyticsHandler struct {
	analyticsSvc AnalyticsServiceInterface
}

func NewAnalyticsHandler(analyticsSvc AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

// @Summary Demo analytics
// @Description Aggregated view metrics for one demo over a trailing window
// @Tags analytics
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Param days query int false "Window size in days (default 7, max 90)"
// @Success 200 {object} shared.Response{data=dto.AnalyticsSummary}
// @Router /api/v1/demos/{demoId}/analytics [get]
func (h *AnalyticsHandler) GetDemoAnalytics(c *fiber.Ctx) error {
	demoID := c.Params("demoId")
	ownerID := c.Locals(shared.UserID).(string)
	windowDays := parseWindowDays(c)

	summary, err := h.analyticsSvc.GetDemoAnalytics(demoID, ownerID, windowDays)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", summary)
}

// @Summary Dashboard analytics
// @Description Aggregated view metrics across all demos owned by the user
// @Tags analytics
// @Produce json
// @Security Bearer
// @Param days query int false "Window size in days (default 7, max 90)"
// @Success 200 {object} shared.Response{data=dto.AnalyticsSummary}
// @Router /api/v1/analytics [get]
func (h *AnalyticsHandler) GetUserAnalytics(c *fiber.Ctx) error {
	ownerID := c.Locals(shared.UserID).(string)
	windowDays := parseWindowDays(c)

	summary, err := h.analyticsSvc.GetUserAnalytics(ownerID, windowDays)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", summary)
}

func parseWindowDays(c *fiber.Ctx) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil {
		return 0 // service applies the default
	}
	return days
}
