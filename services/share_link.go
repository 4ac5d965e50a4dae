package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

// ShareLinkService owns share link issuance and the access guard that
// gates shared playback. Validation is a pure read: the view counter is
// only ever bumped by the view service once a session is granted.
type ShareLinkService struct {
	context.DefaultService

	sqlSvc *PostgresService

	links *repositories.ShareLinkRepository
	demos *repositories.DemoRepository

	baseURL string
}

const SHARE_LINK_SVC = "share_link_svc"

func (svc ShareLinkService) Id() string {
	return SHARE_LINK_SVC
}

func (svc *ShareLinkService) Configure(ctx *context.Context) error {
	svc.baseURL = os.Getenv("BASE_URL")
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *ShareLinkService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.links = svc.sqlSvc.ShareLinks()
	svc.demos = svc.sqlSvc.Demos()
	return nil
}

func (svc *ShareLinkService) CreateShareLink(demoID, ownerID string, req dto.CreateShareLinkRequest) (*dto.ShareLinkResponse, error) {
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

	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return nil, shared.NewBadRequestError(nil, "Expiry must be in the future")
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate token")
	}

	link, err := svc.links.CreateShareLink(&model.ShareLink{
		DemoID:    demoID,
		Token:     token,
		ExpiresAt: req.ExpiresAt,
		IsActive:  true,
		MaxViews:  req.MaxViews,
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create share link")
	}

	return svc.toResponse(link), nil
}

func (svc *ShareLinkService) ListShareLinks(demoID, ownerID string) (*dto.ShareLinkListResponse, error) {
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

	links, err := svc.links.GetShareLinksByDemo(demoID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list share links")
	}

	resp := &dto.ShareLinkListResponse{Links: make([]dto.ShareLinkResponse, 0, len(links))}
	for i := range links {
		resp.Links = append(resp.Links, *svc.toResponse(&links[i]))
	}
	return resp, nil
}

func (svc *ShareLinkService) DeactivateShareLink(linkID, ownerID string) error {
	link, err := svc.links.GetShareLink(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(err, "Share link not found")
		}
		return shared.NewInternalError(err, "Failed to load share link")
	}

	demo, err := svc.demos.GetDemo(link.DemoID)
	if err != nil {
		return shared.NewInternalError(err, "Failed to load demo")
	}
	if demo.OwnerID != ownerID {
		return shared.NewForbiddenError(nil, "Not the demo owner")
	}

	return svc.links.DeactivateShareLink(linkID)
}

// ValidateToken checks a share token against activation, expiry and
// view-ceiling rules. It never increments the counter: revalidating a
// link (a client re-fetch, a preview) must not burn a view.
func (svc *ShareLinkService) ValidateToken(token string) (*dto.LinkContext, error) {
	link, err := svc.links.GetActiveLinkByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			recordShareValidation("invalid")
			return nil, shared.ErrLinkInvalid
		}
		log.WithError(err).Error("Share link lookup failed")
		recordShareValidation("error")
		return nil, shared.NewInternalError(err, "Failed to validate link")
	}

	now := time.Now()
	if link.ExpiresAt != nil && !link.ExpiresAt.After(now) {
		recordShareValidation("expired")
		return nil, shared.ErrLinkExpired
	}

	if link.MaxViews != nil && link.ViewCount >= *link.MaxViews {
		recordShareValidation("exhausted")
		return nil, shared.ErrLinkExhausted
	}

	recordShareValidation("ok")
	return &dto.LinkContext{
		LinkID:    link.ID,
		DemoID:    link.DemoID,
		ViewCount: link.ViewCount,
		MaxViews:  link.MaxViews,
	}, nil
}

func (svc *ShareLinkService) toResponse(link *model.ShareLink) *dto.ShareLinkResponse {
	return &dto.ShareLinkResponse{
		ID:        link.ID,
		DemoID:    link.DemoID,
		Token:     link.Token,
		URL:       fmt.Sprintf("%s/shared/%s", svc.baseURL, link.Token),
		ExpiresAt: link.ExpiresAt,
		IsActive:  link.IsActive,
		ViewCount: link.ViewCount,
		MaxViews:  link.MaxViews,
		CreatedAt: link.CreatedAt,
	}
}

// generateShareToken returns 32 bytes of crypto randomness as lowercase
// hex. Collisions are negligible at this size and the unique index on
// token would surface one anyway.
func generateShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
