package repository

import (
	"context"

	"gorm.io/gorm"

	"offio/backend/internal/model"
)

// CompanyRepository company data access
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*model.Company, error)
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).
		Where("company_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
