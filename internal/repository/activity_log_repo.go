package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"offio/backend/internal/model"
)

// ActivityLogRepository activity samples, window usage and manual excluded ranges
type ActivityLogRepository interface {
	Append(ctx context.Context, log *model.ActivityLog, usages []model.WindowUsage) error
	ListBySession(ctx context.Context, sessionID string) ([]model.ActivityLog, error)
	ListUsagesBySession(ctx context.Context, sessionID string) ([]model.WindowUsage, error)
	SumActiveSeconds(ctx context.Context, sessionID string) (int, error)
	SetExcluded(ctx context.Context, sessionID string, from, to time.Time, excluded bool, reason *string) (int64, error)

	CreateRange(ctx context.Context, rng *model.ExcludedRange) error
	ListRanges(ctx context.Context, sessionID string) ([]model.ExcludedRange, error)
	DeleteRanges(ctx context.Context, sessionID string, from, to time.Time) (int64, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

// Append stores one sample and its per-program usages atomically
func (r *activityLogRepo) Append(ctx context.Context, log *model.ActivityLog, usages []model.WindowUsage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		if len(usages) == 0 {
			return nil
		}
		for i := range usages {
			usages[i].ActivityLogID = log.ID
		}
		return tx.Create(&usages).Error
	})
}

func (r *activityLogRepo) ListBySession(ctx context.Context, sessionID string) ([]model.ActivityLog, error) {
	var logs []model.ActivityLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("start_time ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

func (r *activityLogRepo) ListUsagesBySession(ctx context.Context, sessionID string) ([]model.WindowUsage, error) {
	var usages []model.WindowUsage
	err := r.db.WithContext(ctx).
		Joins("JOIN activity_logs ON activity_logs.id = window_usages.activity_log_id").
		Where("activity_logs.session_id = ?", sessionID).
		Order("window_usages.id ASC").
		Find(&usages).Error
	return usages, err
}

// SumActiveSeconds duration of the non-excluded samples
func (r *activityLogRepo) SumActiveSeconds(ctx context.Context, sessionID string) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).
		Model(&model.ActivityLog{}).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Where("session_id = ? AND is_excluded = ?", sessionID, false).
		Scan(&sum).Error
	return sum, err
}

// SetExcluded flags every sample starting in [from, to)
func (r *activityLogRepo) SetExcluded(ctx context.Context, sessionID string, from, to time.Time, excluded bool, reason *string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.ActivityLog{}).
		Where("session_id = ? AND start_time >= ? AND start_time < ?", sessionID, from, to).
		Updates(map[string]interface{}{
			"is_excluded":    excluded,
			"exclude_reason": reason,
		})
	return result.RowsAffected, result.Error
}

func (r *activityLogRepo) CreateRange(ctx context.Context, rng *model.ExcludedRange) error {
	return r.db.WithContext(ctx).Create(rng).Error
}

func (r *activityLogRepo) ListRanges(ctx context.Context, sessionID string) ([]model.ExcludedRange, error) {
	var ranges []model.ExcludedRange
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("start_time ASC").
		Find(&ranges).Error
	return ranges, err
}

// DeleteRanges removes manual ranges overlapping [from, to)
func (r *activityLogRepo) DeleteRanges(ctx context.Context, sessionID string, from, to time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("session_id = ? AND start_time < ? AND end_time > ?", sessionID, to, from).
		Delete(&model.ExcludedRange{})
	return result.RowsAffected, result.Error
}
