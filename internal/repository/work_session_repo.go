package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"offio/backend/internal/model"
	pkgerrors "offio/backend/pkg/errors"
)

// SessionListFilters session listing filters. CompanyID is always applied;
// Department and UserID narrow the result to a reviewer's team or one user.
type SessionListFilters struct {
	CompanyID  string
	Department *string
	UserID     string
	Status     *model.SessionStatus
	From       *time.Time // inclusive, compared against date
	To         *time.Time // inclusive
}

// WorkSessionRepository work session data access
type WorkSessionRepository interface {
	Create(ctx context.Context, s *model.WorkSession) error
	GetByID(ctx context.Context, id string) (*model.WorkSession, error)
	GetRecordingByUser(ctx context.Context, userID string) (*model.WorkSession, error)
	Update(ctx context.Context, s *model.WorkSession) error
	List(ctx context.Context, filters *SessionListFilters, offset, limit int) ([]model.WorkSession, int64, error)
}

type workSessionRepo struct {
	db *gorm.DB
}

func NewWorkSessionRepo(db *gorm.DB) WorkSessionRepository {
	return &workSessionRepo{db: db}
}

// Create the partial unique index on recording sessions surfaces as
// gorm.ErrDuplicatedKey
func (r *workSessionRepo) Create(ctx context.Context, s *model.WorkSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *workSessionRepo) GetByID(ctx context.Context, id string) (*model.WorkSession, error) {
	var s model.WorkSession
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("session_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *workSessionRepo) GetRecordingByUser(ctx context.Context, userID string) (*model.WorkSession, error) {
	var s model.WorkSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.SessionRecording).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update writes the mutable columns guarded by version. The caller's copy
// gets the bumped version on success.
func (r *workSessionRepo) Update(ctx context.Context, s *model.WorkSession) error {
	result := r.db.WithContext(ctx).
		Model(&model.WorkSession{}).
		Where("session_id = ? AND version = ?", s.SessionID, s.Version).
		Updates(map[string]interface{}{
			"end_time":             s.EndTime,
			"status":               s.Status,
			"total_work_seconds":   s.TotalWorkSeconds,
			"total_active_seconds": s.TotalActiveSeconds,
			"memo":                 s.Memo,
			"admin_comment":        s.AdminComment,
			"reject_reason":        s.RejectReason,
			"submitted_at":         s.SubmittedAt,
			"approved_at":          s.ApprovedAt,
			"approved_by":          s.ApprovedBy,
			"version":              s.Version + 1,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	return nil
}

func (r *workSessionRepo) List(ctx context.Context, filters *SessionListFilters, offset, limit int) ([]model.WorkSession, int64, error) {
	var sessions []model.WorkSession
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WorkSession{}).
		Joins("JOIN users ON users.user_id = work_sessions.user_id").
		Where("users.company_id = ?", filters.CompanyID)

	if filters.Department != nil {
		db = db.Where("users.department = ?", *filters.Department)
	}
	if filters.UserID != "" {
		db = db.Where("work_sessions.user_id = ?", filters.UserID)
	}
	if filters.Status != nil {
		db = db.Where("work_sessions.status = ?", *filters.Status)
	}
	if filters.From != nil {
		db = db.Where("work_sessions.date >= ?", filters.From.Format("2006-01-02"))
	}
	if filters.To != nil {
		db = db.Where("work_sessions.date <= ?", filters.To.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("User").
		Order("work_sessions.date DESC, work_sessions.start_time DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}
