package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregate of every repository
type Repository struct {
	db *gorm.DB

	Company    CompanyRepository
	User       UserRepository
	Department DepartmentRepository
	WorkPolicy WorkPolicyRepository
	Session    WorkSessionRepository
	Activity   ActivityLogRepository
	Screenshot ScreenshotRepository
	Vacation   VacationRepository
}

// NewRepository wires every repository onto db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Company:    NewCompanyRepo(db),
		User:       NewUserRepo(db),
		Department: NewDepartmentRepo(db),
		WorkPolicy: NewWorkPolicyRepo(db),
		Session:    NewWorkSessionRepo(db),
		Activity:   NewActivityLogRepo(db),
		Screenshot: NewScreenshotRepo(db),
		Vacation:   NewVacationRepo(db),
	}
}

// Transaction runs fn with repositories bound to one transaction. Without a
// database (unit tests with mocks) fn runs against r directly.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
