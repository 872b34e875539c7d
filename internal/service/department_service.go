package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
)

// ── department errors ──

var (
	ErrAdminOnly             = pkgerrors.New(pkgerrors.KindForbidden, "admin role required")
	ErrDepartmentNotFound    = pkgerrors.New(pkgerrors.KindNotFound, "department not found")
	ErrDepartmentNameExists  = pkgerrors.New(pkgerrors.KindValidation, "department name already exists")
	ErrDepartmentHasMembers  = pkgerrors.New(pkgerrors.KindInvalidState, "department still has members")
	ErrDepartmentHasChildren = pkgerrors.New(pkgerrors.KindInvalidState, "department still has sub-departments")
	ErrDepartmentCycle       = pkgerrors.New(pkgerrors.KindValidation, "a department cannot be its own parent")
)

// DepartmentService department management. Members reference departments
// by name, so a department with members cannot be renamed or deleted.
type DepartmentService interface {
	List(ctx context.Context, p authz.Principal) ([]dto.DepartmentResponse, error)
	Create(ctx context.Context, p authz.Principal, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService creates DepartmentService
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context, p authz.Principal) ([]dto.DepartmentResponse, error) {
	depts, err := s.repo.Department.List(ctx, p.CompanyID)
	if err != nil {
		s.logger.Error("list departments failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		count, err := s.repo.User.CountByDepartment(ctx, p.CompanyID, depts[i].Name)
		if err != nil {
			s.logger.Warn("count department members failed", zap.String("id", depts[i].DepartmentID), zap.Error(err))
		}
		result = append(result, toDepartmentResponse(&depts[i], count))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, p authz.Principal, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrAdminOnly
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, p.CompanyID, name); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.load(ctx, p, *req.ParentID); err != nil {
			return nil, err
		}
	}
	if req.ManagerID != nil {
		if _, err := loadUserInCompany(ctx, s.repo, p, *req.ManagerID); err != nil {
			return nil, err
		}
	}

	dept := &model.Department{
		CompanyID: p.CompanyID,
		Name:      name,
		ParentID:  req.ParentID,
		ManagerID: req.ManagerID,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("create department failed", zap.Error(err))
		return nil, err
	}

	resp := toDepartmentResponse(dept, 0)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrAdminOnly
	}
	dept, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.User.CountByDepartment(ctx, p.CompanyID, dept.Name)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != dept.Name {
			if members > 0 {
				return nil, ErrDepartmentHasMembers
			}
			if err := s.checkNameFree(ctx, p.CompanyID, name); err != nil {
				return nil, err
			}
			dept.Name = name
		}
	}
	if req.ParentID != nil {
		if *req.ParentID == dept.DepartmentID {
			return nil, ErrDepartmentCycle
		}
		if _, err := s.load(ctx, p, *req.ParentID); err != nil {
			return nil, err
		}
		dept.ParentID = req.ParentID
	}
	if req.ManagerID != nil {
		if _, err := loadUserInCompany(ctx, s.repo, p, *req.ManagerID); err != nil {
			return nil, err
		}
		dept.ManagerID = req.ManagerID
	}
	if req.SortOrder != nil {
		dept.SortOrder = *req.SortOrder
	}

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("update department failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toDepartmentResponse(dept, members)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, p authz.Principal, id string) error {
	if p.Role != model.RoleAdmin {
		return ErrAdminOnly
	}
	dept, err := s.load(ctx, p, id)
	if err != nil {
		return err
	}

	members, err := s.repo.User.CountByDepartment(ctx, p.CompanyID, dept.Name)
	if err != nil {
		s.logger.Error("count department members failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if members > 0 {
		return ErrDepartmentHasMembers
	}
	children, err := s.repo.Department.CountChildren(ctx, dept.DepartmentID)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrDepartmentHasChildren
	}

	if err := s.repo.Department.Delete(ctx, id); err != nil {
		s.logger.Error("delete department failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *departmentService) load(ctx context.Context, p authz.Principal, id string) (*model.Department, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("load department failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if dept.CompanyID != p.CompanyID {
		return nil, ErrDepartmentNotFound
	}
	return dept, nil
}

func (s *departmentService) checkNameFree(ctx context.Context, companyID, name string) error {
	_, err := s.repo.Department.GetByName(ctx, companyID, name)
	if err == nil {
		return ErrDepartmentNameExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func toDepartmentResponse(d *model.Department, members int64) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:          d.DepartmentID,
		Name:        d.Name,
		ParentID:    d.ParentID,
		ManagerID:   d.ManagerID,
		SortOrder:   d.SortOrder,
		MemberCount: members,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
