package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/shared"
)

type ViewHandler struct {
	viewSvc ViewTrackingServiceInterface
}

func NewViewHandler(viewSvc ViewTrackingServiceInterface) *ViewHandler {
	return &ViewHandler{
		viewSvc: viewSvc,
	}
}

// @Summary Update session progress
// @Description Record the viewer's current time spent and completed steps (last write wins)
// @Tags views
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param updateProgressRequest body dto.UpdateProgressRequest true "Progress snapshot"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/views/{sessionId}/progress [post]
func (h *ViewHandler) UpdateProgress(c *fiber.Ctx) error {
	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	sessionID := c.Params("sessionId")

	// Best-effort contract: progress loss is acceptable, a broken
	// player is not, so failures are logged and the client gets 200.
	if err := h.viewSvc.UpdateProgress(sessionID, req.TimeSpent, req.CompletedSteps); err != nil {
		log.WithError(err).WithField("session_id", sessionID).Warn("Failed to update session progress")
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", nil)
}

// @Summary Close viewing session
// @Description Record the final progress snapshot for a session
// @Tags views
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param closeSessionRequest body dto.CloseSessionRequest true "Final progress snapshot"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/views/{sessionId}/close [post]
func (h *ViewHandler) CloseSession(c *fiber.Ctx) error {
	var req dto.CloseSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	sessionID := c.Params("sessionId")

	if err := h.viewSvc.CloseSession(sessionID, req.TimeSpent, req.CompletedSteps); err != nil {
		log.WithError(err).WithField("session_id", sessionID).Warn("Failed to close session")
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", nil)
}
