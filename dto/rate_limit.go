package dto

import "time"

// RateLimitInfo describes the caller's current standing against a limit.
type RateLimitInfo struct {
	Allowed      bool       `json:"allowed"`
	Remaining    int        `json:"remaining"`
	ResetTime    *time.Time `json:"reset_time,omitempty"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}
