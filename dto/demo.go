package dto

import (
	"encoding/json"

	"github.com/demodeck-hq/demodeck_api/model"
)

type CreateDemoRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    bool   `json:"is_public"`
}

func (r CreateDemoRequest) Validate() error {
	return validate.Struct(r)
}

type UpdateDemoRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public"`
}

func (r UpdateDemoRequest) Validate() error {
	return validate.Struct(r)
}

type CreateStepRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=4096"`
	OrderIndex  int             `json:"order_index" validate:"gte=0"`
	Annotations json.RawMessage `json:"annotations"`
}

func (r CreateStepRequest) Validate() error {
	return validate.Struct(r)
}

type UpdateStepRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,max=4096"`
	OrderIndex  *int            `json:"order_index" validate:"omitempty,gte=0"`
	Annotations json.RawMessage `json:"annotations"`
}

func (r UpdateStepRequest) Validate() error {
	return validate.Struct(r)
}

type DemoResponse struct {
	Demo  *model.Demo      `json:"demo"`
	Steps []model.DemoStep `json:"steps"`
}

type DemoListResponse struct {
	Demos []model.Demo `json:"demos"`
	Total int          `json:"total"`
}
