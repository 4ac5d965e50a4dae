package dto

import (
	"time"

	"github.com/demodeck-hq/demodeck_api/model"
)

type CreateShareLinkRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
	MaxViews  *int       `json:"max_views" validate:"omitempty,gte=1"`
}

func (r CreateShareLinkRequest) Validate() error {
	return validate.Struct(r)
}

type ShareLinkResponse struct {
	ID        string     `json:"id"`
	DemoID    string     `json:"demo_id"`
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active"`
	ViewCount int        `json:"view_count"`
	MaxViews  *int       `json:"max_views,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ShareLinkListResponse struct {
	Links []ShareLinkResponse `json:"links"`
}

// LinkContext is what a successful token validation yields: enough to
// load the demo and show remaining views, without touching the counter.
type LinkContext struct {
	LinkID    string `json:"link_id"`
	DemoID    string `json:"demo_id"`
	ViewCount int    `json:"view_count"`
	MaxViews  *int   `json:"max_views,omitempty"`
}

// ViewsRemaining returns the number of grants left, or -1 when the link
// is uncapped.
func (lc *LinkContext) ViewsRemaining() int {
	if lc.MaxViews == nil {
		return -1
	}
	remaining := *lc.MaxViews - lc.ViewCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

type SharedDemoResponse struct {
	Demo           *model.Demo      `json:"demo"`
	Steps          []model.DemoStep `json:"steps"`
	SessionID      string           `json:"session_id,omitempty"`
	ViewsRemaining int              `json:"views_remaining"`
}
