package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
)

// testDB opens an isolated in-memory database migrated to the same
// schema the live service uses.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	return db
}

func seedDemo(t *testing.T, db *gorm.DB, ownerID string, stepCount int) *model.Demo {
	t.Helper()

	demos := repositories.NewDemoRepository(db)

	demo, err := demos.CreateDemo(&model.Demo{
		Title:   "Test Demo",
		OwnerID: ownerID,
	})
	require.NoError(t, err)

	for i := 0; i < stepCount; i++ {
		_, err := demos.CreateStep(&model.DemoStep{
			DemoID:     demo.ID,
			Title:      fmt.Sprintf("Step %d", i+1),
			OrderIndex: i,
		})
		require.NoError(t, err)
	}

	return demo
}

func seedShareLink(t *testing.T, db *gorm.DB, demoID string, expiresAt *time.Time, maxViews *int) *model.ShareLink {
	t.Helper()

	links := repositories.NewShareLinkRepository(db)

	token, err := generateShareToken()
	require.NoError(t, err)

	link, err := links.CreateShareLink(&model.ShareLink{
		DemoID:    demoID,
		Token:     token,
		ExpiresAt: expiresAt,
		IsActive:  true,
		MaxViews:  maxViews,
	})
	require.NoError(t, err)

	return link
}

func seedView(t *testing.T, db *gorm.DB, view *model.DemoView) *model.DemoView {
	t.Helper()

	views := repositories.NewViewRepository(db)
	created, err := views.CreateView(view)
	require.NoError(t, err)
	return created
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }
