package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/shared"
)

type DemoHandler struct {
	demoSvc DemoServiceInterface
}

func NewDemoHandler(demoSvc DemoServiceInterface) *DemoHandler {
	return &DemoHandler{
		demoSvc: demoSvc,
	}
}

// @Summary Create demo
// @Description Create a new product demo owned by the authenticated user
// @Tags demos
// @Accept json
// @Produce json
// @Security Bearer
// @Param createDemoRequest body dto.CreateDemoRequest true "Demo details"
// @Success 201 {object} shared.Response{data=model.Demo}
// @Router /api/v1/demos [post]
func (h *DemoHandler) CreateDemo(c *fiber.Ctx) error {
	var req dto.CreateDemoRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	ownerID := c.Locals(shared.UserID).(string)

	demo, err := h.demoSvc.CreateDemo(ownerID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Demo created successfully", demo)
}

// @Summary List own demos
// @Description List demos owned by the authenticated user
// @Tags demos
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.DemoListResponse}
// @Router /api/v1/demos [get]
func (h *DemoHandler) ListDemos(c *fiber.Ctx) error {
	ownerID := c.Locals(shared.UserID).(string)

	resp, err := h.demoSvc.ListDemos(ownerID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List public demos
// @Description List demos published as public
// @Tags demos
// @Produce json
// @Success 200 {object} shared.Response{data=dto.DemoListResponse}
// @Router /api/v1/demos/public [get]
func (h *DemoHandler) ListPublicDemos(c *fiber.Ctx) error {
	resp, err := h.demoSvc.ListPublicDemos()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get demo
// @Description Get a demo with its steps. Private demos are owner-only.
// @Tags demos
// @Produce json
// @Param demoId path string true "Demo ID"
// @Success 200 {object} shared.Response{data=dto.DemoResponse}
// @Router /api/v1/demos/{demoId} [get]
func (h *DemoHandler) GetDemo(c *fiber.Ctx) error {
	demoID := c.Params("demoId")

	requesterID := ""
	if userID := c.Locals(shared.UserID); userID != nil {
		requesterID, _ = userID.(string)
	}

	resp, err := h.demoSvc.GetDemo(demoID, requesterID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Update demo
// @Description Update demo metadata
// @Tags demos
// @Accept json
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Param updateDemoRequest body dto.UpdateDemoRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=model.Demo}
// @Router /api/v1/demos/{demoId} [put]
func (h *DemoHandler) UpdateDemo(c *fiber.Ctx) error {
	var req dto.UpdateDemoRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	demoID := c.Params("demoId")
	ownerID := c.Locals(shared.UserID).(string)

	demo, err := h.demoSvc.UpdateDemo(demoID, ownerID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Demo updated successfully", demo)
}

// @Summary Delete demo
// @Description Delete a demo with its steps, share links and view records
// @Tags demos
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/demos/{demoId} [delete]
func (h *DemoHandler) DeleteDemo(c *fiber.Ctx) error {
	demoID := c.Params("demoId")
	ownerID := c.Locals(shared.UserID).(string)

	if err := h.demoSvc.DeleteDemo(demoID, ownerID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Demo deleted successfully", nil)
}

// @Summary Add step
// @Description Append a step to a demo
// @Tags demos
// @Accept json
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Param createStepRequest body dto.CreateStepRequest true "Step details"
// @Success 201 {object} shared.Response{data=model.DemoStep}
// @Router /api/v1/demos/{demoId}/steps [post]
func (h *DemoHandler) AddStep(c *fiber.Ctx) error {
	var req dto.CreateStepRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	demoID := c.Params("demoId")
	ownerID := c.Locals(shared.UserID).(string)

	step, err := h.demoSvc.AddStep(demoID, ownerID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Step created successfully", step)
}

// @Summary Update step
// @Description Update a step of a demo
// @Tags demos
// @Accept json
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Param stepId path string true "Step ID"
// @Param updateStepRequest body dto.UpdateStepRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=model.DemoStep}
// @Router /api/v1/demos/{demoId}/steps/{stepId} [put]
func (h *DemoHandler) UpdateStep(c *fiber.Ctx) error {
	var req dto.UpdateStepRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	demoID := c.Params("demoId")
	stepID := c.Params("stepId")
	ownerID := c.Locals(shared.UserID).(string)

	step, err := h.demoSvc.UpdateStep(demoID, stepID, ownerID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Step updated successfully", step)
}

// @Summary Delete step
// @Description Remove a step from a demo
// @Tags demos
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Param stepId path string true "Step ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/demos/{demoId}/steps/{stepId} [delete]
func (h *DemoHandler) DeleteStep(c *fiber.Ctx) error {
	demoID := c.Params("demoId")
	stepID := c.Params("stepId")
	ownerID := c.Locals(shared.UserID).(string)

	if err := h.demoSvc.DeleteStep(demoID, stepID, ownerID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Step deleted successfully", nil)
}
