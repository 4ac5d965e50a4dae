package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

func newViewService(db *gorm.DB) *ViewTrackingService {
	return &ViewTrackingService{
		views: repositories.NewViewRepository(db),
		links: repositories.NewShareLinkRepository(db),
		demos: repositories.NewDemoRepository(db),
	}
}

func TestOpenSession(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 4)

	view, err := svc.OpenSession(demo.ID, nil, "203.0.113.7")
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, demo.ID, view.DemoID)
	assert.Nil(t, view.ShareLinkID)
	assert.Equal(t, "203.0.113.7", view.ViewerIP)
	assert.Equal(t, 4, view.TotalSteps)
	assert.Equal(t, 0, view.TimeSpent)
	assert.Equal(t, 0, view.CompletedSteps)
	assert.WithinDuration(t, time.Now(), view.ViewedAt, 5*time.Second)
}

// Each granted session bumps the link counter exactly once, after the
// view record exists.
func TestOpenSessionIncrementsLinkOnce(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 4)
	link := seedShareLink(t, db, demo.ID, nil, nil)

	for i := 0; i < 5; i++ {
		_, err := svc.OpenSession(demo.ID, &link.ID, "203.0.113.7")
		require.NoError(t, err)
	}

	links := repositories.NewShareLinkRepository(db)
	stored, err := links.GetShareLink(link.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.ViewCount)

	var viewCount int64
	require.NoError(t, db.Table("demo_views").Where("share_link_id = ?", link.ID).Count(&viewCount).Error)
	assert.EqualValues(t, 5, viewCount)
}

// A missing link row means the increment fails, but the session already
// stands: undercount over overcount.
func TestOpenSessionSurvivesIncrementFailure(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 4)

	missingLinkID := "no-such-link"
	view, err := svc.OpenSession(demo.ID, &missingLinkID, "203.0.113.7")
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
}

func TestUpdateProgressLastWriteWins(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 5)

	view, err := svc.OpenSession(demo.ID, nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProgress(view.ID, 30, 2))
	require.NoError(t, svc.UpdateProgress(view.ID, 45, 3))
	// A late or out-of-order heartbeat still overwrites; values are
	// snapshots, not deltas.
	require.NoError(t, svc.UpdateProgress(view.ID, 10, 1))

	views := repositories.NewViewRepository(db)
	stored, err := views.GetView(view.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.TimeSpent)
	assert.Equal(t, 1, stored.CompletedSteps)
}

func TestUpdateProgressClampsToTotalSteps(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	view, err := svc.OpenSession(demo.ID, nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProgress(view.ID, 60, 99))

	views := repositories.NewViewRepository(db)
	stored, err := views.GetView(view.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CompletedSteps)
	assert.True(t, stored.Completed())
}

func TestUpdateProgressRejectsNegativeValues(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	view, err := svc.OpenSession(demo.ID, nil, "")
	require.NoError(t, err)

	err = svc.UpdateProgress(view.ID, -1, 0)
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode)

	err = svc.UpdateProgress(view.ID, 0, -1)
	require.Error(t, err)
}

func TestUpdateProgressUnknownSession(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)

	err := svc.UpdateProgress("no-such-session", 10, 1)
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

// The total_steps snapshot is taken at session open. Steps added later
// do not change what an existing session can complete.
func TestTotalStepsSnapshotIsImmutable(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 2)

	view, err := svc.OpenSession(demo.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalSteps)

	demos := repositories.NewDemoRepository(db)
	for i := 2; i < 6; i++ {
		_, err := demos.CreateStep(&model.DemoStep{
			DemoID:     demo.ID,
			Title:      fmt.Sprintf("Step %d", i+1),
			OrderIndex: i,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.UpdateProgress(view.ID, 10, 6))

	views := repositories.NewViewRepository(db)
	stored, err := views.GetView(view.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalSteps)
	assert.Equal(t, 2, stored.CompletedSteps)
}

func TestCloseSession(t *testing.T) {
	db := testDB(t)
	svc := newViewService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	view, err := svc.OpenSession(demo.ID, nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.CloseSession(view.ID, 120, 3))

	views := repositories.NewViewRepository(db)
	stored, err := views.GetView(view.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, stored.TimeSpent)
	assert.Equal(t, 3, stored.CompletedSteps)
}
