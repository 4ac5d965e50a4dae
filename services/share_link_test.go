package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

func newShareLinkService(db *gorm.DB) *ShareLinkService {
	return &ShareLinkService{
		links:   repositories.NewShareLinkRepository(db),
		demos:   repositories.NewDemoRepository(db),
		baseURL: "http://localhost:8000",
	}
}

func TestCreateShareLink(t *testing.T) {
	db := testDB(t)
	svc := newShareLinkService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	resp, err := svc.CreateShareLink(demo.ID, "owner-1", dto.CreateShareLinkRequest{})
	require.NoError(t, err)

	assert.Len(t, resp.Token, shared.ShareTokenLength)
	assert.True(t, resp.IsActive)
	assert.Equal(t, 0, resp.ViewCount)
	assert.Nil(t, resp.MaxViews)
	assert.Contains(t, resp.URL, resp.Token)
}

func TestCreateShareLinkNotOwner(t *testing.T) {
	db := testDB(t)
	svc := newShareLinkService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	_, err := svc.CreateShareLink(demo.ID, "someone-else", dto.CreateShareLinkRequest{})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)
}

func TestCreateShareLinkPastExpiry(t *testing.T) {
	db := testDB(t)
	svc := newShareLinkService(db)
	demo := seedDemo(t, db, "owner-1", 3)

	_, err := svc.CreateShareLink(demo.ID, "owner-1", dto.CreateShareLinkRequest{
		ExpiresAt: timePtr(time.Now().Add(-time.Hour)),
	})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestValidateToken(t *testing.T) {
	db := testDB(t)
	svc := newShareLinkService(db)
	demo := seedDemo(t, db, "owner-1", 3)
	links := repositories.NewShareLinkRepository(db)

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.ValidateToken("deadbeef")
		assert.ErrorIs(t, err, shared.ErrLinkInvalid)
	})

	t.Run("deactivated link", func(t *testing.T) {
		link := seedShareLink(t, db, demo.ID, nil, nil)
		require.NoError(t, links.DeactivateShareLink(link.ID))

		_, err := svc.ValidateToken(link.Token)
		assert.ErrorIs(t, err, shared.ErrLinkInvalid)
	})

	t.Run("expired link", func(t *testing.T) {
		link := seedShareLink(t, db, demo.ID, timePtr(time.Now().Add(-time.Minute)), nil)

		_, err := svc.ValidateToken(link.Token)
		assert.ErrorIs(t, err, shared.ErrLinkExpired)
	})

	t.Run("exhausted link", func(t *testing.T) {
		link := seedShareLink(t, db, demo.ID, nil, intPtr(2))
		require.NoError(t, links.IncrementViewCount(link.ID))
		require.NoError(t, links.IncrementViewCount(link.ID))

		_, err := svc.ValidateToken(link.Token)
		assert.ErrorIs(t, err, shared.ErrLinkExhausted)
	})

	t.Run("valid link", func(t *testing.T) {
		link := seedShareLink(t, db, demo.ID, timePtr(time.Now().Add(time.Hour)), intPtr(5))

		lc, err := svc.ValidateToken(link.Token)
		require.NoError(t, err)
		assert.Equal(t, link.ID, lc.LinkID)
		assert.Equal(t, demo.ID, lc.DemoID)
		assert.Equal(t, 5, lc.ViewsRemaining())
	})
}

// Validation must never consume a view: revalidating the same token any
// number of times leaves the counter untouched.
func TestValidateTokenIsPureRead(t *testing.T) {
	db := testDB(t)
	svc := newShareLinkService(db)
	demo := seedDemo(t, db, "owner-1", 3)
	link := seedShareLink(t, db, demo.ID, nil, intPtr(1))

	for i := 0; i < 10; i++ {
		_, err := svc.ValidateToken(link.Token)
		require.NoError(t, err)
	}

	links := repositories.NewShareLinkRepository(db)
	stored, err := links.GetShareLink(link.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.ViewCount)
}

func TestDeactivateShareLinkNotOwner(t *testing.T) {
	db := testDB(t)
	svc := newShareLinkService(db)
	demo := seedDemo(t, db, "owner-1", 3)
	link := seedShareLink(t, db, demo.ID, nil, nil)

	err := svc.DeactivateShareLink(link.ID, "someone-else")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)
}

func TestGenerateShareToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := generateShareToken()
		require.NoError(t, err)
		assert.Len(t, token, shared.ShareTokenLength)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
