package repositories

import (
	"time"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemoRepository handles demo and demo step database operations
type DemoRepository struct {
	BaseRepository
}

func NewDemoRepository(db *gorm.DB) *DemoRepository {
	return &DemoRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (r *DemoRepository) CreateDemo(demo *model.Demo) (*model.Demo, error) {
	if demo.ID == "" {
		id, _ := uuid.NewV7()
		demo.ID = id.String()
	}
	demo.CreatedAt = time.Now()
	demo.UpdatedAt = time.Now()
	if err := r.db.Create(demo).Error; err != nil {
		return nil, err
	}
	return demo, nil
}

func (r *DemoRepository) GetDemo(id string) (*model.Demo, error) {
	var demo model.Demo
	if err := r.db.Where("id = ?", id).First(&demo).Error; err != nil {
		return nil, err
	}
	return &demo, nil
}

func (r *DemoRepository) GetDemosByOwner(ownerID string) ([]model.Demo, error) {
	var demos []model.Demo
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&demos).Error; err != nil {
		return nil, err
	}
	return demos, nil
}

func (r *DemoRepository) GetPublicDemos() ([]model.Demo, error) {
	var demos []model.Demo
	if err := r.db.Where("is_public = ?", true).Order("created_at DESC").Find(&demos).Error; err != nil {
		return nil, err
	}
	return demos, nil
}

func (r *DemoRepository) UpdateDemo(demo *model.Demo) error {
	demo.UpdatedAt = time.Now()
	return r.db.Save(demo).Error
}

// DeleteDemo removes the demo and everything hanging off it. View
// records are only ever deleted through this cascade.
func (r *DemoRepository) DeleteDemo(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("demo_id = ?", id).Delete(&model.DemoView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("demo_id = ?", id).Delete(&model.ShareLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("demo_id = ?", id).Delete(&model.DemoStep{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Demo{}).Error
	})
}

func (r *DemoRepository) GetDemoTitles(demoIDs []string) (map[string]string, error) {
	var demos []model.Demo
	if err := r.db.Select("id", "title").Where("id IN ?", demoIDs).Find(&demos).Error; err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(demos))
	for _, d := range demos {
		titles[d.ID] = d.Title
	}
	return titles, nil
}

// ==================== STEPS ====================

func (r *DemoRepository) CreateStep(step *model.DemoStep) (*model.DemoStep, error) {
	if step.ID == "" {
		id, _ := uuid.NewV7()
		step.ID = id.String()
	}
	step.CreatedAt = time.Now()
	step.UpdatedAt = time.Now()
	if err := r.db.Create(step).Error; err != nil {
		return nil, err
	}
	return step, nil
}

func (r *DemoRepository) GetStep(id string) (*model.DemoStep, error) {
	var step model.DemoStep
	if err := r.db.Where("id = ?", id).First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *DemoRepository) GetSteps(demoID string) ([]model.DemoStep, error) {
	var steps []model.DemoStep
	if err := r.db.Where("demo_id = ?", demoID).Order("order_index ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// CountSteps returns the step count used as the total_steps snapshot
// when a viewing session opens.
func (r *DemoRepository) CountSteps(demoID string) (int, error) {
	var count int64
	if err := r.db.Model(&model.DemoStep{}).Where("demo_id = ?", demoID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *DemoRepository) UpdateStep(step *model.DemoStep) error {
	step.UpdatedAt = time.Now()
	return r.db.Save(step).Error
}

func (r *DemoRepository) DeleteStep(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.DemoStep{}).Error
}
