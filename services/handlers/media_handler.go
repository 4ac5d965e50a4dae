package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/demodeck-hq/demodeck_api/shared"
)

type MediaHandler struct {
	mediaSvc MediaServiceInterface
}

func NewMediaHandler(mediaSvc MediaServiceInterface) *MediaHandler {
	return &MediaHandler{
		mediaSvc: mediaSvc,
	}
}

// @Summary Upload step image
// @Description Upload an image for a demo step and attach it as the step's image URL
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param demoId path string true "Demo ID"
// @Param stepId path string true "Step ID"
// @Param image formData file true "Image file (PNG, JPG, JPEG, GIF, WEBP, max 10MB)"
// @Success 200 {object} shared.Response{data=dto.MediaUploadResponse}
// @Router /api/v1/demos/{demoId}/steps/{stepId}/image [post]
func (h *MediaHandler) UploadStepImage(c *fiber.Ctx) error {
	demoID := c.Params("demoId")
	stepID := c.Params("stepId")
	ownerID := c.Locals(shared.UserID).(string)

	file, err := c.FormFile("image")
	if err != nil {
		return shared.NewBadRequestError(err, "Image file is required")
	}

	resp, err := h.mediaSvc.UploadStepImage(demoID, stepID, ownerID, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Image uploaded successfully", resp)
}
