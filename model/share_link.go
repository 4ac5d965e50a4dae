package model

import "time"

// ShareLink is a token-gated, optionally time/view-limited access grant
// to a single demo. ViewCount only ever moves up, and only once per
// granted session.
type ShareLink struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	DemoID    string     `json:"demo_id" gorm:"not null;index"`
	Token     string     `json:"token" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	ViewCount int        `json:"view_count" gorm:"not null;default:0"`
	MaxViews  *int       `json:"max_views"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null"`
}

// Usable reports whether the link grants access at the given instant.
func (l *ShareLink) Usable(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
		return false
	}
	if l.MaxViews != nil && l.ViewCount >= *l.MaxViews {
		return false
	}
	return true
}
