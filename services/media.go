package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

// MediaService stores step images in object storage. When storage is
// unavailable the upload degrades to an inline data-URL so authors can
// keep working; the image just isn't durable until re-uploaded.
type MediaService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	minioSvc *MinIOService

	demos *repositories.DemoRepository
}

const MEDIA_SVC = "media_svc"

const maxImageSize = 10 * 1024 * 1024 // 10MB

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	svc.demos = svc.sqlSvc.Demos()
	return nil
}

// UploadStepImage stores the image and points the step's image_url at
// it. Ownership is checked against the demo, not the step.
func (svc *MediaService) UploadStepImage(demoID, stepID, ownerID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	if !isValidImageFile(file.Filename) {
		return nil, shared.NewBadRequestError(nil, "Invalid image file format. Supported: PNG, JPG, JPEG, GIF, WEBP")
	}

	if file.Size > maxImageSize {
		return nil, shared.NewBadRequestError(nil, "Image file too large. Maximum size: 10MB")
	}

	demo, err := svc.demos.GetDemo(demoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Demo not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load demo")
	}
	if demo.OwnerID != ownerID {
		return nil, shared.NewForbiddenError(nil, "Not the demo owner")
	}

	step, err := svc.demos.GetStep(stepID)
	if err != nil || step.DemoID != demoID {
		return nil, shared.NewNotFoundError(err, "Step not found")
	}

	src, err := file.Open()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to read upload")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to read upload")
	}

	resp := svc.storeImage(stepID, file.Filename, data)

	step.ImageURL = resp.URL
	if err := svc.demos.UpdateStep(step); err != nil {
		return nil, shared.NewInternalError(err, "Failed to attach image to step")
	}

	return resp, nil
}

// storeImage tries object storage first and falls back to an inline
// data-URL when the store rejects the write.
func (svc *MediaService) storeImage(stepID, filename string, data []byte) *dto.MediaUploadResponse {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := contentTypeForExt(ext)

	resp := &dto.MediaUploadResponse{
		FileName: filename,
		FileType: contentType,
		FileSize: int64(len(data)),
	}

	objectName := fmt.Sprintf("steps/%s/%s%s", stepID, uuid.New().String(), ext)

	_, err := svc.minioSvc.UploadFile(objectName, bytes.NewReader(data), int64(len(data)), contentType)
	if err == nil {
		url, urlErr := svc.minioSvc.GetFileURL(objectName, 7*24*time.Hour)
		if urlErr == nil {
			resp.URL = url
			return resp
		}
		err = urlErr
	}

	log.WithError(err).WithField("step_id", stepID).Warn("Object storage unavailable, falling back to inline data-URL")

	resp.URL = fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	resp.Inline = true
	return resp
}

func isValidImageFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
