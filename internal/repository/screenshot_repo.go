package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"offio/backend/internal/model"
)

// ScreenshotRepository screenshot metadata access
type ScreenshotRepository interface {
	Create(ctx context.Context, s *model.Screenshot) error
	GetByID(ctx context.Context, sessionID string, id int64) (*model.Screenshot, error)
	ListBySession(ctx context.Context, sessionID string, includeDeleted bool) ([]model.Screenshot, error)
	SetDeleted(ctx context.Context, id int64, deleted bool, at *time.Time) error
}

type screenshotRepo struct {
	db *gorm.DB
}

func NewScreenshotRepo(db *gorm.DB) ScreenshotRepository {
	return &screenshotRepo{db: db}
}

func (r *screenshotRepo) Create(ctx context.Context, s *model.Screenshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *screenshotRepo) GetByID(ctx context.Context, sessionID string, id int64) (*model.Screenshot, error) {
	var s model.Screenshot
	err := r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", id, sessionID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *screenshotRepo) ListBySession(ctx context.Context, sessionID string, includeDeleted bool) ([]model.Screenshot, error) {
	var shots []model.Screenshot
	db := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if !includeDeleted {
		db = db.Where("is_deleted = ?", false)
	}
	err := db.Order("captured_at ASC, id ASC").Find(&shots).Error
	return shots, err
}

// SetDeleted toggles the tombstone; at is nil when restoring
func (r *screenshotRepo) SetDeleted(ctx context.Context, id int64, deleted bool, at *time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Screenshot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": deleted,
			"deleted_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
