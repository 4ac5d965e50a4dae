package services

import (
	goContext "context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

const (
	ANALYTICS_SVC = "analytics_svc"

	DefaultWindowDays = 7
	MaxWindowDays     = 90

	analyticsCacheTTL = time.Minute
	dateLayout        = "2006-01-02"
)

// AnalyticsService computes dashboard summaries as a read-time
// projection over raw view records. Summaries are never persisted and a
// failed fetch degrades to a zeroed summary rather than an error: a
// dashboard may show zeros, it may not crash.
type AnalyticsService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService

	views *repositories.ViewRepository
	demos *repositories.DemoRepository
}

func (svc AnalyticsService) Id() string {
	return ANALYTICS_SVC
}

func (svc *AnalyticsService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AnalyticsService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.views = svc.sqlSvc.Views()
	svc.demos = svc.sqlSvc.Demos()
	return nil
}

// GetDemoAnalytics summarizes a single demo over the trailing window.
// Owner-gated: viewers never see analytics.
func (svc *AnalyticsService) GetDemoAnalytics(demoID, ownerID string, windowDays int) (*dto.AnalyticsSummary, error) {
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

	windowDays = clampWindow(windowDays)

	cacheKey := fmt.Sprintf("analytics:demo:%s:%d", demoID, windowDays)
	if cached := svc.cachedSummary(cacheKey); cached != nil {
		return cached, nil
	}

	summary := svc.Summarize([]string{demoID}, windowDays)
	svc.cacheSummary(cacheKey, summary)
	return summary, nil
}

// GetUserAnalytics summarizes every demo owned by the user.
func (svc *AnalyticsService) GetUserAnalytics(ownerID string, windowDays int) (*dto.AnalyticsSummary, error) {
	windowDays = clampWindow(windowDays)

	cacheKey := fmt.Sprintf("analytics:user:%s:%d", ownerID, windowDays)
	if cached := svc.cachedSummary(cacheKey); cached != nil {
		return cached, nil
	}

	demos, err := svc.demos.GetDemosByOwner(ownerID)
	if err != nil {
		log.WithError(err).WithField("owner_id", ownerID).Error("Failed to list demos for analytics")
		return zeroSummary(windowDays), nil
	}

	demoIDs := make([]string, 0, len(demos))
	for _, d := range demos {
		demoIDs = append(demoIDs, d.ID)
	}

	summary := svc.Summarize(demoIDs, windowDays)
	svc.cacheSummary(cacheKey, summary)
	return summary, nil
}

// Summarize aggregates raw view records for the given demos over the
// trailing window. The window lower bound is inclusive; future-dated
// records (clock skew) are counted, not filtered.
func (svc *AnalyticsService) Summarize(demoIDs []string, windowDays int) *dto.AnalyticsSummary {
	windowDays = clampWindow(windowDays)
	now := time.Now()
	since := now.AddDate(0, 0, -windowDays)

	views, err := svc.views.GetViewsSince(demoIDs, since)
	if err != nil {
		log.WithError(err).Error("Failed to fetch view records, returning zeroed summary")
		return zeroSummary(windowDays)
	}

	summary := zeroSummary(windowDays)
	summary.TotalViews = len(views)
	if len(views) == 0 {
		return summary
	}

	viewers := make(map[string]struct{})
	totalTime := 0
	completed := 0
	perDemo := make(map[string]int)
	perDay := make(map[string]int)
	perLocation := make(map[string]int)

	for i := range views {
		v := &views[i]

		viewer := v.ViewerIP
		if viewer == "" {
			viewer = shared.AnonymousViewer
		}
		viewers[viewer] = struct{}{}

		totalTime += v.TimeSpent
		if v.Completed() {
			completed++
		}

		perDemo[v.DemoID]++
		perDay[v.ViewedAt.Local().Format(dateLayout)]++

		if v.ViewerLocation != "" {
			perLocation[v.ViewerLocation]++
		}
	}

	summary.UniqueViewers = len(viewers)
	summary.AvgTimeSpent = float64(totalTime) / float64(max(summary.TotalViews, 1))
	summary.CompletionRate = float64(completed) / float64(max(summary.TotalViews, 1)) * 100

	for i := range summary.ViewsByDay {
		summary.ViewsByDay[i].Count = perDay[summary.ViewsByDay[i].Date]
	}

	summary.TopDemos = svc.rankDemos(perDemo)
	summary.Locations = rankLocations(perLocation)

	return summary
}

// rankDemos orders demos by view count descending, ties broken by title
// ascending, and keeps the top 5.
func (svc *AnalyticsService) rankDemos(perDemo map[string]int) []dto.TopDemo {
	if len(perDemo) == 0 {
		return []dto.TopDemo{}
	}

	demoIDs := make([]string, 0, len(perDemo))
	for id := range perDemo {
		demoIDs = append(demoIDs, id)
	}

	titles, err := svc.demos.GetDemoTitles(demoIDs)
	if err != nil {
		log.WithError(err).Warn("Failed to resolve demo titles for ranking")
		titles = map[string]string{}
	}

	ranked := make([]dto.TopDemo, 0, len(perDemo))
	for id, count := range perDemo {
		ranked = append(ranked, dto.TopDemo{
			DemoID: id,
			Title:  titles[id],
			Views:  count,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Views != ranked[j].Views {
			return ranked[i].Views > ranked[j].Views
		}
		if ranked[i].Title != ranked[j].Title {
			return ranked[i].Title < ranked[j].Title
		}
		return ranked[i].DemoID < ranked[j].DemoID
	})

	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	return ranked
}

func rankLocations(perLocation map[string]int) []dto.LocationCount {
	if len(perLocation) == 0 {
		return nil
	}

	ranked := make([]dto.LocationCount, 0, len(perLocation))
	for location, count := range perLocation {
		ranked = append(ranked, dto.LocationCount{Location: location, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Location < ranked[j].Location
	})

	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	return ranked
}

// zeroSummary builds the degraded-but-valid summary shape: the day
// series still spans the full window, oldest first, all zeros.
func zeroSummary(windowDays int) *dto.AnalyticsSummary {
	now := time.Now()
	buckets := make([]dto.DayBucket, windowDays)
	for i := 0; i < windowDays; i++ {
		day := now.AddDate(0, 0, -(windowDays - 1 - i))
		buckets[i] = dto.DayBucket{Date: day.Local().Format(dateLayout)}
	}

	return &dto.AnalyticsSummary{
		ViewsByDay: buckets,
		TopDemos:   []dto.TopDemo{},
	}
}

func clampWindow(windowDays int) int {
	if windowDays <= 0 {
		return DefaultWindowDays
	}
	if windowDays > MaxWindowDays {
		return MaxWindowDays
	}
	return windowDays
}

func (svc *AnalyticsService) cachedSummary(key string) *dto.AnalyticsSummary {
	if svc.redisSvc == nil {
		return nil
	}

	var summary dto.AnalyticsSummary
	if err := svc.redisSvc.GetJSON(goContext.Background(), key, &summary); err != nil {
		return nil
	}
	if summary.ViewsByDay == nil {
		return nil
	}
	return &summary
}

func (svc *AnalyticsService) cacheSummary(key string, summary *dto.AnalyticsSummary) {
	if svc.redisSvc == nil {
		return
	}

	if err := svc.redisSvc.Set(goContext.Background(), key, summary, analyticsCacheTTL); err != nil {
		log.WithError(err).WithField("key", key).Debug("Failed to cache analytics summary")
	}
}
