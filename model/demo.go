package model

import (
	"encoding/json"
	"time"
)

type Demo struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public" gorm:"not null;default:false"`
	OwnerID     string    `json:"owner_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

type DemoStep struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	DemoID      string          `json:"demo_id" gorm:"not null;index"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	OrderIndex  int             `json:"order_index" gorm:"not null"`
	Annotations json.RawMessage `json:"annotations" gorm:"type:jsonb"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}
