package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/leave"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
)

// ── user errors ──

var (
	ErrUserSelfRoleChange = pkgerrors.New(pkgerrors.KindInvalidState, "you cannot change your own role or deactivate yourself")
	ErrInvalidRole        = pkgerrors.New(pkgerrors.KindValidation, "unknown role")
	ErrInvalidOverride    = pkgerrors.New(pkgerrors.KindValidation, "annual_leave_override must be between 0 and 25")
	ErrManagerFieldLocked = pkgerrors.New(pkgerrors.KindForbidden, "managers may only change hire dates")
	ErrImportNoData       = pkgerrors.New(pkgerrors.KindValidation, "the sheet has no data rows")
	ErrImportBadHeader    = pkgerrors.New(pkgerrors.KindValidation, "the sheet needs name, email and department columns")
	ErrImportTooManyRows  = pkgerrors.New(pkgerrors.KindValidation, "at most 500 rows per import")
	ErrImportUnreadable   = pkgerrors.New(pkgerrors.KindValidation, "the file is not a readable xlsx workbook")
)

const maxImportRows = 500

var maxOverride = decimal.NewFromInt(leave.MaxAnnualDays)

// UserService member management
type UserService interface {
	List(ctx context.Context, p authz.Principal, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, p authz.Principal, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

// ImportUserRow one parsed spreadsheet row
type ImportUserRow struct {
	Row        int
	Name       string
	Email      string
	Department string
	Role       string
	HireDate   string
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates UserService
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

// List managers are pinned to their own department
func (s *userService) List(ctx context.Context, p authz.Principal, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	if !p.Role.IsReviewer() {
		return nil, 0, authz.ErrNotReviewer
	}

	scope := authz.ReviewScope(p)
	filters := &repository.UserListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		ActiveOnly: req.ActiveOnly,
	}
	if req.Department != "" {
		if scope.Department != nil && *scope.Department != req.Department {
			return nil, 0, authz.ErrOtherTeam
		}
		dept := req.Department
		filters.Department = &dept
	}
	if req.Role != "" {
		role := model.Role(req.Role)
		if !role.Valid() {
			return nil, 0, ErrInvalidRole
		}
		filters.Role = &role
	}

	users, total, err := s.repo.User.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

// Update admins edit every field; managers may only set hire dates of their
// own department's members.
func (s *userService) Update(ctx context.Context, p authz.Principal, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := loadUserInCompany(ctx, s.repo, p, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeReview(p, authz.SubjectOf(user)); err != nil {
		return nil, err
	}
	if p.Role != model.RoleAdmin {
		if req.Department != nil || req.Role != nil || req.IsActive != nil ||
			req.AnnualLeaveOverride != nil || req.ClearOverride {
			return nil, ErrManagerFieldLocked
		}
	}

	if req.Role != nil {
		role := model.Role(*req.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		if p.UserID == user.UserID && role != user.Role {
			return nil, ErrUserSelfRoleChange
		}
		user.Role = role
	}
	if req.IsActive != nil {
		if p.UserID == user.UserID && !*req.IsActive {
			return nil, ErrUserSelfRoleChange
		}
		user.IsActive = *req.IsActive
	}
	if req.Department != nil {
		name := strings.TrimSpace(*req.Department)
		if name == "" {
			user.Department = nil
		} else {
			if _, err := s.repo.Department.GetByName(ctx, p.CompanyID, name); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrDepartmentNotFound
				}
				return nil, err
			}
			user.Department = &name
		}
	}
	if req.HireDate != nil {
		hire, err := dto.ParseOptionalDate(*req.HireDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		user.HireDate = hire
	}
	if req.ClearOverride {
		user.AnnualLeaveOverride = nil
	} else if req.AnnualLeaveOverride != nil {
		o := *req.AnnualLeaveOverride
		if o.IsNegative() || o.GreaterThan(maxOverride) {
			return nil, ErrInvalidOverride
		}
		user.AnnualLeaveOverride = &o
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Import ──────────────────────

// ParseImportFile reads the first sheet. Header names may be English or
// Korean and appear in any order.
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrImportUnreadable
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["email"] < 0 || colIndex["department"] < 0 {
		return nil, ErrImportBadHeader
	}

	field := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{
			Row:        i + 1,
			Name:       field(row, "name"),
			Email:      field(row, "email"),
			Department: field(row, "department"),
			Role:       field(row, "role"),
			HireDate:   field(row, "hire_date"),
		}
		if item.Name == "" && item.Email == "" && item.Department == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{"name": -1, "email": -1, "department": -1, "role": -1, "hire_date": -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "이름":
			idx["name"] = i
		case "email", "이메일":
			idx["email"] = i
		case "department", "부서":
			idx["department"] = i
		case "role", "역할":
			idx["role"] = i
		case "hire_date", "입사일":
			idx["hire_date"] = i
		}
	}
	return idx
}

// ImportUsers creates members row by row. Invalid rows are reported and
// skipped; valid rows are still created.
func (s *userService) ImportUsers(ctx context.Context, p authz.Principal, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrAdminOnly
	}

	depts, err := s.repo.Department.List(ctx, p.CompanyID)
	if err != nil {
		s.logger.Error("load departments failed", zap.Error(err))
		return nil, err
	}
	known := make(map[string]bool, len(depts))
	for _, d := range depts {
		known[d.Name] = true
	}

	resp := &dto.ImportUserResponse{Total: len(rows), Errors: []dto.ImportUserError{}}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		if row.Name == "" || row.Email == "" || row.Department == "" {
			fail(row.Row, "name, email and department are required")
			continue
		}
		if _, err := mail.ParseAddress(row.Email); err != nil {
			fail(row.Row, "invalid email: "+row.Email)
			continue
		}
		email := strings.ToLower(row.Email)
		if seen[email] {
			fail(row.Row, "duplicate email in file: "+row.Email)
			continue
		}
		seen[email] = true
		if !known[row.Department] {
			fail(row.Row, "unknown department: "+row.Department)
			continue
		}
		role := model.RoleWorker
		if row.Role != "" {
			role = model.Role(strings.ToLower(row.Role))
			if !role.Valid() {
				fail(row.Row, "unknown role: "+row.Role)
				continue
			}
		}
		hire, err := dto.ParseOptionalDate(row.HireDate)
		if err != nil {
			fail(row.Row, "invalid hire date: "+row.HireDate)
			continue
		}
		if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
			fail(row.Row, "email already registered: "+row.Email)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		dept := row.Department
		user := &model.User{
			CompanyID:  p.CompanyID,
			Email:      email,
			Name:       row.Name,
			Role:       role,
			Department: &dept,
			HireDate:   hire,
			IsActive:   true,
		}
		if err := s.repo.User.Create(ctx, user); err != nil {
			s.logger.Warn("import user failed", zap.Int("row", row.Row), zap.Error(err))
			fail(row.Row, "could not create user")
			continue
		}
		resp.Created++
	}

	s.logger.Info("users imported",
		zap.String("company_id", p.CompanyID),
		zap.Int("created", resp.Created),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                  u.UserID,
		Email:               u.Email,
		Name:                u.Name,
		Role:                string(u.Role),
		Department:          u.Department,
		HireDate:            dto.FormatOptionalDate(u.HireDate),
		AnnualLeaveOverride: u.AnnualLeaveOverride,
		IsActive:            u.IsActive,
		CreatedAt:           u.CreatedAt,
	}
}
