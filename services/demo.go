package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

// DemoService is the thin CRUD layer over demos and their steps. The
// interesting invariant it carries: step counts are what viewing
// sessions snapshot as total_steps.
type DemoService struct {
	context.DefaultService

	sqlSvc *PostgresService

	demos *repositories.DemoRepository
}

const DEMO_SVC = "demo_svc"

func (svc DemoService) Id() string {
	return DEMO_SVC
}

func (svc *DemoService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *DemoService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.demos = svc.sqlSvc.Demos()
	return nil
}

func (svc *DemoService) CreateDemo(ownerID string, req dto.CreateDemoRequest) (*model.Demo, error) {
	demo, err := svc.demos.CreateDemo(&model.Demo{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create demo")
	}
	return demo, nil
}

// GetDemo returns a demo with its steps. Private demos are only visible
// to their owner; public demos to anyone.
func (svc *DemoService) GetDemo(demoID, requesterID string) (*dto.DemoResponse, error) {
	demo, err := svc.demos.GetDemo(demoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Demo not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load demo")
	}

	if !demo.IsPublic && demo.OwnerID != requesterID {
		return nil, shared.NewNotFoundError(nil, "Demo not found")
	}

	steps, err := svc.demos.GetSteps(demoID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load steps")
	}

	return &dto.DemoResponse{Demo: demo, Steps: steps}, nil
}

// GetDemoWithSteps loads a demo for shared playback without visibility
// checks; the share link guard has already authorized access.
func (svc *DemoService) GetDemoWithSteps(demoID string) (*dto.DemoResponse, error) {
	demo, err := svc.demos.GetDemo(demoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Demo not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load demo")
	}

	steps, err := svc.demos.GetSteps(demoID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load steps")
	}

	return &dto.DemoResponse{Demo: demo, Steps: steps}, nil
}

func (svc *DemoService) ListDemos(ownerID string) (*dto.DemoListResponse, error) {
	demos, err := svc.demos.GetDemosByOwner(ownerID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list demos")
	}
	return &dto.DemoListResponse{Demos: demos, Total: len(demos)}, nil
}

func (svc *DemoService) ListPublicDemos() (*dto.DemoListResponse, error) {
	demos, err := svc.demos.GetPublicDemos()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list demos")
	}
	return &dto.DemoListResponse{Demos: demos, Total: len(demos)}, nil
}

func (svc *DemoService) UpdateDemo(demoID, ownerID string, req dto.UpdateDemoRequest) (*model.Demo, error) {
	demo, err := svc.ownedDemo(demoID, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		demo.Title = *req.Title
	}
	if req.Description != nil {
		demo.Description = *req.Description
	}
	if req.IsPublic != nil {
		demo.IsPublic = *req.IsPublic
	}

	if err := svc.demos.UpdateDemo(demo); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update demo")
	}
	return demo, nil
}

// DeleteDemo removes the demo and cascades to steps, share links and
// view records. The only path on which view records die.
func (svc *DemoService) DeleteDemo(demoID, ownerID string) error {
	if _, err := svc.ownedDemo(demoID, ownerID); err != nil {
		return err
	}

	if err := svc.demos.DeleteDemo(demoID); err != nil {
		return shared.NewInternalError(err, "Failed to delete demo")
	}
	return nil
}

// ==================== STEPS ====================

func (svc *DemoService) AddStep(demoID, ownerID string, req dto.CreateStepRequest) (*model.DemoStep, error) {
	if _, err := svc.ownedDemo(demoID, ownerID); err != nil {
		return nil, err
	}

	step, err := svc.demos.CreateStep(&model.DemoStep{
		DemoID:      demoID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		OrderIndex:  req.OrderIndex,
		Annotations: req.Annotations,
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create step")
	}
	return step, nil
}

func (svc *DemoService) UpdateStep(demoID, stepID, ownerID string, req dto.UpdateStepRequest) (*model.DemoStep, error) {
	if _, err := svc.ownedDemo(demoID, ownerID); err != nil {
		return nil, err
	}

	step, err := svc.demos.GetStep(stepID)
	if err != nil || step.DemoID != demoID {
		return nil, shared.NewNotFoundError(err, "Step not found")
	}

	if req.Title != nil {
		step.Title = *req.Title
	}
	if req.Description != nil {
		step.Description = *req.Description
	}
	if req.ImageURL != nil {
		step.ImageURL = *req.ImageURL
	}
	if req.OrderIndex != nil {
		step.OrderIndex = *req.OrderIndex
	}
	if req.Annotations != nil {
		step.Annotations = req.Annotations
	}

	if err := svc.demos.UpdateStep(step); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update step")
	}
	return step, nil
}

func (svc *DemoService) DeleteStep(demoID, stepID, ownerID string) error {
	if _, err := svc.ownedDemo(demoID, ownerID); err != nil {
		return err
	}

	step, err := svc.demos.GetStep(stepID)
	if err != nil || step.DemoID != demoID {
		return shared.NewNotFoundError(err, "Step not found")
	}

	return svc.demos.DeleteStep(stepID)
}

func (svc *DemoService) ownedDemo(demoID, ownerID string) (*model.Demo, error) {
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
	return demo, nil
}
