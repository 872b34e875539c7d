package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"offio/backend/internal/model"
	pkgerrors "offio/backend/pkg/errors"
)

// VacationListFilters vacation listing filters. From/To select requests
// overlapping the window.
type VacationListFilters struct {
	CompanyID  string
	Department *string
	UserID     string
	Status     *model.VacationStatus
	Type       *model.VacationType
	From       *time.Time
	To         *time.Time
}

// VacationRepository vacation request data access
type VacationRepository interface {
	Create(ctx context.Context, v *model.Vacation) error
	GetByID(ctx context.Context, id string) (*model.Vacation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Vacation, error)
	List(ctx context.Context, filters *VacationListFilters, offset, limit int) ([]model.Vacation, int64, error)
	UpdateStatus(ctx context.Context, v *model.Vacation, from model.VacationStatus) error
	Delete(ctx context.Context, id string) error
}

type vacationRepo struct {
	db *gorm.DB
}

func NewVacationRepo(db *gorm.DB) VacationRepository {
	return &vacationRepo{db: db}
}

func (r *vacationRepo) Create(ctx context.Context, v *model.Vacation) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *vacationRepo) GetByID(ctx context.Context, id string) (*model.Vacation, error) {
	var v model.Vacation
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("vacation_id = ?", id).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vacationRepo) ListByUser(ctx context.Context, userID string) ([]model.Vacation, error) {
	var vs []model.Vacation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&vs).Error
	return vs, err
}

func (r *vacationRepo) List(ctx context.Context, filters *VacationListFilters, offset, limit int) ([]model.Vacation, int64, error) {
	var vs []model.Vacation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Vacation{}).
		Joins("JOIN users ON users.user_id = vacations.user_id").
		Where("users.company_id = ?", filters.CompanyID)

	if filters.Department != nil {
		db = db.Where("users.department = ?", *filters.Department)
	}
	if filters.UserID != "" {
		db = db.Where("vacations.user_id = ?", filters.UserID)
	}
	if filters.Status != nil {
		db = db.Where("vacations.status = ?", *filters.Status)
	}
	if filters.Type != nil {
		db = db.Where("vacations.type = ?", *filters.Type)
	}
	if filters.From != nil {
		db = db.Where("vacations.end_date >= ?", filters.From.Format("2006-01-02"))
	}
	if filters.To != nil {
		db = db.Where("vacations.start_date <= ?", filters.To.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("User").
		Order("vacations.start_date DESC, vacations.created_at DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&vs).Error; err != nil {
		return nil, 0, err
	}

	return vs, total, nil
}

// UpdateStatus writes the decision only while the row is still in from
func (r *vacationRepo) UpdateStatus(ctx context.Context, v *model.Vacation, from model.VacationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Vacation{}).
		Where("vacation_id = ? AND status = ?", v.VacationID, from).
		Updates(map[string]interface{}{
			"status":          v.Status,
			"rejected_reason": v.RejectReason,
			"approved_by":     v.ApprovedBy,
			"approved_at":     v.ApprovedAt,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *vacationRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("vacation_id = ?", id).
		Delete(&model.Vacation{}).Error
}
