package repository

import (
	"context"

	"gorm.io/gorm"

	"offio/backend/internal/model"
)

// WorkPolicyRepository work policy data access
type WorkPolicyRepository interface {
	GetByCompany(ctx context.Context, companyID string) (*model.WorkPolicy, error)
	Save(ctx context.Context, policy *model.WorkPolicy) error
}

type workPolicyRepo struct {
	db *gorm.DB
}

func NewWorkPolicyRepo(db *gorm.DB) WorkPolicyRepository {
	return &workPolicyRepo{db: db}
}

func (r *workPolicyRepo) GetByCompany(ctx context.Context, companyID string) (*model.WorkPolicy, error) {
	var p model.WorkPolicy
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save inserts the policy on first save, updates it afterwards
func (r *workPolicyRepo) Save(ctx context.Context, policy *model.WorkPolicy) error {
	if policy.PolicyID == "" {
		return r.db.WithContext(ctx).Create(policy).Error
	}
	return r.db.WithContext(ctx).Save(policy).Error
}
