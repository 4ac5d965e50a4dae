package services

import (
	"errors"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

// ViewTrackingService owns the lifetime of one viewer's playback
// session: opening the record, periodic progress updates, and the final
// close. Tracking is best-effort by contract; callers at the transport
// boundary absorb every error this service returns so that playback is
// never blocked by analytics.
type ViewTrackingService struct {
	context.DefaultService

	sqlSvc *PostgresService
	geoSvc *GeolocationService

	views *repositories.ViewRepository
	links *repositories.ShareLinkRepository
	demos *repositories.DemoRepository
}

const VIEW_SVC = "view_svc"

func (svc ViewTrackingService) Id() string {
	return VIEW_SVC
}

func (svc *ViewTrackingService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ViewTrackingService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.views = svc.sqlSvc.Views()
	svc.links = svc.sqlSvc.ShareLinks()
	svc.demos = svc.sqlSvc.Demos()

	svc.geoSvc = svc.Service(GEOLOCATION_SVC).(*GeolocationService)
	return nil
}

// OpenSession creates exactly one view record for a playback session.
// The share link counter is incremented only after the record is
// durably created, as one atomic counter mutation; a failed increment
// is logged and the session still stands, so a crash between the two
// writes can undercount but never overcount.
func (svc *ViewTrackingService) OpenSession(demoID string, shareLinkID *string, viewerIP string) (*model.DemoView, error) {
	totalSteps, err := svc.demos.CountSteps(demoID)
	if err != nil {
		recordTrackingFailure("open")
		return nil, shared.NewInternalError(err, "Failed to snapshot step count")
	}

	view, err := svc.views.CreateView(&model.DemoView{
		DemoID:         demoID,
		ShareLinkID:    shareLinkID,
		ViewerIP:       viewerIP,
		ViewedAt:       time.Now(),
		TimeSpent:      0,
		CompletedSteps: 0,
		TotalSteps:     totalSteps,
	})
	if err != nil {
		recordTrackingFailure("open")
		return nil, shared.NewInternalError(err, "Failed to create view record")
	}

	if shareLinkID != nil {
		if err := svc.links.IncrementViewCount(*shareLinkID); err != nil {
			log.WithError(err).WithField("share_link_id", *shareLinkID).
				Error("Failed to increment share link view count")
			recordTrackingFailure("increment")
		}
	}

	recordViewTracked()

	if svc.geoSvc != nil && viewerIP != "" {
		go svc.resolveLocation(view.ID, viewerIP)
	}

	return view, nil
}

func (svc *ViewTrackingService) resolveLocation(viewID, viewerIP string) {
	location, err := svc.geoSvc.GetLocationByIP(viewerIP)
	if err != nil || location == "" {
		return
	}
	if err := svc.views.UpdateViewLocation(viewID, location); err != nil {
		log.WithError(err).WithField("view_id", viewID).Warn("Failed to store viewer location")
	}
}

// UpdateProgress overwrites time_spent and completed_steps with the
// supplied values (last write wins, no accumulation). Completed steps
// are clamped to the session's total_steps snapshot.
func (svc *ViewTrackingService) UpdateProgress(sessionID string, timeSpent, completedSteps int) error {
	if timeSpent < 0 || completedSteps < 0 {
		return shared.NewBadRequestError(nil, "Progress values must be non-negative")
	}

	view, err := svc.views.GetView(sessionID)
	if err != nil {
		recordTrackingFailure("progress")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(err, "Session not found")
		}
		return shared.NewInternalError(err, "Failed to load session")
	}

	if completedSteps > view.TotalSteps {
		completedSteps = view.TotalSteps
	}

	if err := svc.views.UpdateViewProgress(sessionID, timeSpent, completedSteps); err != nil {
		recordTrackingFailure("progress")
		return shared.NewInternalError(err, "Failed to update progress")
	}
	return nil
}

// CloseSession is semantically a final UpdateProgress. Delivery is
// best-effort: a viewer closing the tab mid-flight may never reach this
// and the last heartbeat value stands.
func (svc *ViewTrackingService) CloseSession(sessionID string, timeSpent, completedSteps int) error {
	return svc.UpdateProgress(sessionID, timeSpent, completedSteps)
}
