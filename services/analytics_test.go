package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

func newAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		views: repositories.NewViewRepository(db),
		demos: repositories.NewDemoRepository(db),
	}
}

func TestSummarizeWindowBoundaries(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	// 6 days back is inside a 7-day window, 8 days back is outside.
	seedView(t, db, &model.DemoView{
		DemoID:     demo.ID,
		ViewedAt:   time.Now().AddDate(0, 0, -6),
		TotalSteps: 3,
	})
	seedView(t, db, &model.DemoView{
		DemoID:     demo.ID,
		ViewedAt:   time.Now().AddDate(0, 0, -8),
		TotalSteps: 3,
	})

	summary := svc.Summarize([]string{demo.ID}, 7)
	assert.Equal(t, 1, summary.TotalViews)
}

func TestSummarizeMetrics(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)
	demo := seedDemo(t, db, "owner-1", 4)

	seedView(t, db, &model.DemoView{
		DemoID:         demo.ID,
		ViewerIP:       "203.0.113.1",
		ViewedAt:       time.Now(),
		TimeSpent:      10,
		CompletedSteps: 4,
		TotalSteps:     4,
	})
	seedView(t, db, &model.DemoView{
		DemoID:         demo.ID,
		ViewerIP:       "203.0.113.2",
		ViewedAt:       time.Now(),
		TimeSpent:      30,
		CompletedSteps: 2,
		TotalSteps:     4,
	})

	summary := svc.Summarize([]string{demo.ID}, 7)

	assert.Equal(t, 2, summary.TotalViews)
	assert.Equal(t, 2, summary.UniqueViewers)
	assert.InDelta(t, 20.0, summary.AvgTimeSpent, 0.001)
	assert.InDelta(t, 50.0, summary.CompletionRate, 0.001)
}

// Views with no viewer IP collapse into a single anonymous bucket, they
// are not dropped from the unique count.
func TestSummarizeAnonymousViewers(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	for i := 0; i < 3; i++ {
		seedView(t, db, &model.DemoView{
			DemoID:     demo.ID,
			ViewerIP:   "",
			ViewedAt:   time.Now(),
			TotalSteps: 3,
		})
	}
	seedView(t, db, &model.DemoView{
		DemoID:     demo.ID,
		ViewerIP:   "203.0.113.1",
		ViewedAt:   time.Now(),
		TotalSteps: 3,
	})

	summary := svc.Summarize([]string{demo.ID}, 7)

	assert.Equal(t, 4, summary.TotalViews)
	assert.Equal(t, 2, summary.UniqueViewers)
}

func TestSummarizeViewsByDayShape(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	seedView(t, db, &model.DemoView{
		DemoID:     demo.ID,
		ViewedAt:   time.Now(),
		TotalSteps: 3,
	})
	seedView(t, db, &model.DemoView{
		DemoID:     demo.ID,
		ViewedAt:   time.Now().AddDate(0, 0, -2),
		TotalSteps: 3,
	})

	summary := svc.Summarize([]string{demo.ID}, 7)

	require.Len(t, summary.ViewsByDay, 7)

	// Oldest first, strictly ascending dates, today last.
	for i := 1; i < len(summary.ViewsByDay); i++ {
		assert.Less(t, summary.ViewsByDay[i-1].Date, summary.ViewsByDay[i].Date)
	}
	assert.Equal(t, time.Now().Local().Format(dateLayout), summary.ViewsByDay[6].Date)

	total := 0
	for _, bucket := range summary.ViewsByDay {
		total += bucket.Count
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, summary.ViewsByDay[6].Count)
	assert.Equal(t, 1, summary.ViewsByDay[4].Count)
}

func TestSummarizeTopDemos(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)
	demos := repositories.NewDemoRepository(db)

	alpha, err := demos.CreateDemo(&model.Demo{Title: "Alpha", OwnerID: "owner-1"})
	require.NoError(t, err)
	beta, err := demos.CreateDemo(&model.Demo{Title: "Beta", OwnerID: "owner-1"})
	require.NoError(t, err)
	gamma, err := demos.CreateDemo(&model.Demo{Title: "Gamma", OwnerID: "owner-1"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		seedView(t, db, &model.DemoView{DemoID: alpha.ID, ViewedAt: time.Now()})
		seedView(t, db, &model.DemoView{DemoID: beta.ID, ViewedAt: time.Now()})
	}
	seedView(t, db, &model.DemoView{DemoID: gamma.ID, ViewedAt: time.Now()})

	summary := svc.Summarize([]string{alpha.ID, beta.ID, gamma.ID}, 7)

	require.Len(t, summary.TopDemos, 3)
	// Tie on views resolves by title ascending.
	assert.Equal(t, "Alpha", summary.TopDemos[0].Title)
	assert.Equal(t, 2, summary.TopDemos[0].Views)
	assert.Equal(t, "Beta", summary.TopDemos[1].Title)
	assert.Equal(t, "Gamma", summary.TopDemos[2].Title)
}

func TestSummarizeNoDemos(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)

	summary := svc.Summarize([]string{}, 7)

	assert.Equal(t, 0, summary.TotalViews)
	assert.Equal(t, 0, summary.UniqueViewers)
	assert.Zero(t, summary.AvgTimeSpent)
	assert.Zero(t, summary.CompletionRate)
	assert.Len(t, summary.ViewsByDay, 7)
	assert.NotNil(t, summary.TopDemos)
	assert.Empty(t, summary.TopDemos)
}

// A broken store yields a zeroed summary with the full day series, not
// an error.
func TestSummarizeDegradesOnFetchError(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	require.NoError(t, db.Migrator().DropTable(&model.DemoView{}))

	summary := svc.Summarize([]string{demo.ID}, 7)

	assert.Equal(t, 0, summary.TotalViews)
	assert.Len(t, summary.ViewsByDay, 7)
}

func TestGetDemoAnalyticsOwnerGate(t *testing.T) {
	db := testDB(t)
	svc := newAnalyticsService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	_, err := svc.GetDemoAnalytics(demo.ID, "someone-else", 7)
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)
}

func TestClampWindow(t *testing.T) {
	assert.Equal(t, DefaultWindowDays, clampWindow(0))
	assert.Equal(t, DefaultWindowDays, clampWindow(-3))
	assert.Equal(t, 30, clampWindow(30))
	assert.Equal(t, MaxWindowDays, clampWindow(365))
}
