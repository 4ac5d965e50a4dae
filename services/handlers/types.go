package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/model"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	RequiredAuth() fiber.Handler
	OptionalAuth() fiber.Handler
}

type DemoServiceInterface interface {
	CreateDemo(ownerID string, req dto.CreateDemoRequest) (*model.Demo, error)
	GetDemo(demoID, requesterID string) (*dto.DemoResponse, error)
	GetDemoWithSteps(demoID string) (*dto.DemoResponse, error)
	ListDemos(ownerID string) (*dto.DemoListResponse, error)
	ListPublicDemos() (*dto.DemoListResponse, error)
	UpdateDemo(demoID, ownerID string, req dto.UpdateDemoRequest) (*model.Demo, error)
	DeleteDemo(demoID, ownerID string) error
	AddStep(demoID, ownerID string, req dto.CreateStepRequest) (*model.DemoStep, error)
	UpdateStep(demoID, stepID, ownerID string, req dto.UpdateStepRequest) (*model.DemoStep, error)
	DeleteStep(demoID, stepID, ownerID string) error
}

type ShareLinkServiceInterface interface {
	CreateShareLink(demoID, ownerID string, req dto.CreateShareLinkRequest) (*dto.ShareLinkResponse, error)
	ListShareLinks(demoID, ownerID string) (*dto.ShareLinkListResponse, error)
	DeactivateShareLink(linkID, ownerID string) error
	ValidateToken(token string) (*dto.LinkContext, error)
}

type ViewTrackingServiceInterface interface {
	OpenSession(demoID string, shareLinkID *string, viewerIP string) (*model.DemoView, error)
	UpdateProgress(sessionID string, timeSpent, completedSteps int) error
	CloseSession(sessionID string, timeSpent, completedSteps int) error
}

type AnalyticsServiceInterface interface {
	GetDemoAnalytics(demoID, ownerID string, windowDays int) (*dto.AnalyticsSummary, error)
	GetUserAnalytics(ownerID string, windowDays int) (*dto.AnalyticsSummary, error)
}

type MediaServiceInterface interface {
	UploadStepImage(demoID, stepID, ownerID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
}
