package model

import "time"

// DemoView is one tracked playback session. DemoID, ShareLinkID,
// ViewedAt and TotalSteps are fixed at creation; TimeSpent and
// CompletedSteps are overwritten in place by progress updates.
type DemoView struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	DemoID         string    `json:"demo_id" gorm:"not null;index"`
	ShareLinkID    *string   `json:"share_link_id" gorm:"index"`
	ViewerIP       string    `json:"viewer_ip"`
	ViewerLocation string    `json:"viewer_location"`
	ViewedAt       time.Time `json:"viewed_at" gorm:"not null;index"`
	TimeSpent      int       `json:"time_spent" gorm:"not null"` // seconds
	CompletedSteps int       `json:"completed_steps" gorm:"not null"`
	TotalSteps     int       `json:"total_steps" gorm:"not null"`
}

// Completed reports whether the session reached the last step.
func (v *DemoView) Completed() bool {
	return v.TotalSteps > 0 && v.CompletedSteps == v.TotalSteps
}
