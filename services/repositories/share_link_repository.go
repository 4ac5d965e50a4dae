package repositories

import (
	"time"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareLinkRepository handles share link database operations
type ShareLinkRepository struct {
	BaseRepository
}

func NewShareLinkRepository(db *gorm.DB) *ShareLinkRepository {
	return &ShareLinkRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (r *ShareLinkRepository) CreateShareLink(link *model.ShareLink) (*model.ShareLink, error) {
	id, _ := uuid.NewV7()
	link.ID = id.String()
	link.CreatedAt = time.Now()
	if err := r.db.Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// GetActiveLinkByToken looks up a link by exact token match only.
// Inactive links are indistinguishable from missing ones.
func (r *ShareLinkRepository) GetActiveLinkByToken(token string) (*model.ShareLink, error) {
	var link model.ShareLink
	if err := r.db.Where("token = ? AND is_active = ?", token, true).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ShareLinkRepository) GetShareLink(id string) (*model.ShareLink, error) {
	var link model.ShareLink
	if err := r.db.Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ShareLinkRepository) GetShareLinksByDemo(demoID string) ([]model.ShareLink, error) {
	var links []model.ShareLink
	if err := r.db.Where("demo_id = ?", demoID).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// IncrementViewCount bumps view_count as a single atomic counter
// mutation so concurrent session opens never lose an update.
func (r *ShareLinkRepository) IncrementViewCount(id string) error {
	return r.db.Model(&model.ShareLink{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *ShareLinkRepository) DeactivateShareLink(id string) error {
	return r.db.Model(&model.ShareLink{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}
