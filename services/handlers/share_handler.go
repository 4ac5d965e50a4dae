package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/shared"
)

type ShareHandler struct {
	shareSvc ShareLinkServiceInterface
	demoSvc  DemoServiceInterface
	viewSvc  ViewTrackingServiceInterface
}

func NewShareHandler(shareSvc ShareLinkServiceInterface, demoSvc DemoServiceInterface, viewSvc ViewTrackingServiceInterface) *ShareHandler {
	return &ShareHandler{
		shareSvc: shareSvc,
		demoSvc:  demoSvc,
		viewSvc:  viewSvc,
	}
}

// @Summary Create share link
// @Description Issue a tokenized share link for a demo
// @Tags share
// @Accept json
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Param createShareLinkRequest body dto.CreateShareLinkRequest true "Expiry and view cap"
// @Success 201 {object} shared.Response{data=dto.ShareLinkResponse}
// @Router /api/v1/demos/{demoId}/share [post]
func (h *ShareHandler) CreateShareLink(c *fiber.Ctx) error {
	var req dto.CreateShareLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	demoID := c.Params("demoId")
	ownerID := c.Locals(shared.UserID).(string)

	resp, err := h.shareSvc.CreateShareLink(demoID, ownerID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Share link created successfully", resp)
}

// @Summary List share links
// @Description List share links issued for a demo
// @Tags share
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Success 200 {object} shared.Response{data=dto.ShareLinkListResponse}
// @Router /api/v1/demos/{demoId}/share [get]
func (h *ShareHandler) ListShareLinks(c *fiber.Ctx) error {
	demoID := c.Params("demoId")
	ownerID := c.Locals(shared.UserID).(string)

	resp, err := h.shareSvc.ListShareLinks(demoID, ownerID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Deactivate share link
// @Description Deactivate a share link so its token stops granting access
// @Tags share
// @Produce json
// @Security Bearer
// @Param linkId path string true "Share link ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/share-links/{linkId} [delete]
func (h *ShareHandler) DeactivateShareLink(c *fiber.Ctx) error {
	linkID := c.Params("linkId")
	ownerID := c.Locals(shared.UserID).(string)

	if err := h.shareSvc.DeactivateShareLink(linkID, ownerID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Share link deactivated", nil)
}

// @Summary View shared demo
// @Description Resolve a share token to its demo and open a tracked viewing session
// @Tags share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} shared.Response{data=dto.SharedDemoResponse}
// @Failure 404 {object} shared.Response "Unknown or inactive token"
// @Failure 410 {object} shared.Response "Link expired"
// @Failure 403 {object} shared.Response "View cap reached"
// @Router /api/v1/shared/{token} [get]
func (h *ShareHandler) ViewSharedDemo(c *fiber.Ctx) error {
	token := c.Params("token")

	lc, err := h.shareSvc.ValidateToken(token)
	if err != nil {
		return err
	}

	demo, err := h.demoSvc.GetDemoWithSteps(lc.DemoID)
	if err != nil {
		return err
	}

	resp := &dto.SharedDemoResponse{
		Demo:           demo.Demo,
		Steps:          demo.Steps,
		ViewsRemaining: lc.ViewsRemaining(),
	}

	// Access is already granted here. A tracking failure costs a view
	// record, never the viewer's playback.
	linkID := lc.LinkID
	view, err := h.viewSvc.OpenSession(lc.DemoID, &linkID, c.IP())
	if err != nil {
		log.WithError(err).WithField("demo_id", lc.DemoID).Error("Failed to open viewing session")
	} else {
		resp.SessionID = view.ID
		if resp.ViewsRemaining > 0 {
			resp.ViewsRemaining--
		}
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
