package repositories

import (
	"time"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ViewRepository is the durable store for raw view records: append-only
// creation plus in-place updates of the two mutable columns.
type ViewRepository struct {
	BaseRepository
}

func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (r *ViewRepository) CreateView(view *model.DemoView) (*model.DemoView, error) {
	id, _ := uuid.NewV7()
	view.ID = id.String()
	if err := r.db.Create(view).Error; err != nil {
		return nil, err
	}
	return view, nil
}

func (r *ViewRepository) GetView(id string) (*model.DemoView, error) {
	var view model.DemoView
	if err := r.db.Where("id = ?", id).First(&view).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateViewProgress overwrites time_spent and completed_steps.
// demo_id, share_link_id, viewed_at and total_steps never change after
// creation, so only the mutable columns appear here.
func (r *ViewRepository) UpdateViewProgress(id string, timeSpent, completedSteps int) error {
	result := r.db.Model(&model.DemoView{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"time_spent":      timeSpent,
			"completed_steps": completedSteps,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateViewLocation fills in the resolved viewer location once the
// best-effort geolocation lookup completes.
func (r *ViewRepository) UpdateViewLocation(id, location string) error {
	return r.db.Model(&model.DemoView{}).
		Where("id = ?", id).
		UpdateColumn("viewer_location", location).Error
}

// GetViewsSince returns every record for the given demos whose
// viewed_at is at or after the cutoff. Future-dated rows are included;
// clock skew correction is not this layer's job.
func (r *ViewRepository) GetViewsSince(demoIDs []string, since time.Time) ([]model.DemoView, error) {
	if len(demoIDs) == 0 {
		return []model.DemoView{}, nil
	}
	var views []model.DemoView
	if err := r.db.Where("demo_id IN ? AND viewed_at >= ?", demoIDs, since).Find(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}
