package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/leave"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
	"offio/backend/pkg/metrics"
)

// ── vacation errors ──

var (
	ErrVacationNotFound     = pkgerrors.New(pkgerrors.KindNotFound, "vacation request not found")
	ErrVacationNotPending   = pkgerrors.New(pkgerrors.KindInvalidState, "only pending requests can be reviewed")
	ErrVacationLocked       = pkgerrors.New(pkgerrors.KindForbidden, "reviewed requests can only be removed by a reviewer")
	ErrInvalidVacationType  = pkgerrors.New(pkgerrors.KindValidation, "unknown vacation type")
	ErrRejectReasonRequired = pkgerrors.New(pkgerrors.KindValidation, "reject_reason is required when rejecting")
)

// VacationService leave request operations
type VacationService interface {
	Create(ctx context.Context, p authz.Principal, req *dto.CreateVacationRequest) (*dto.VacationResponse, error)
	List(ctx context.Context, p authz.Principal, req *dto.VacationListRequest) ([]dto.VacationResponse, int64, error)
	Review(ctx context.Context, p authz.Principal, id string, req *dto.ReviewVacationRequest) (*dto.VacationResponse, error)
	Delete(ctx context.Context, p authz.Principal, id string) error
}

type vacationService struct {
	*environment
}

// NewVacationService creates VacationService
func NewVacationService(env *environment) VacationService {
	return &vacationService{environment: env}
}

// Create files a pending request. Annual and half-day requests must fit the
// remaining balance computed as of today.
func (s *vacationService) Create(ctx context.Context, p authz.Principal, req *dto.CreateVacationRequest) (*dto.VacationResponse, error) {
	vType := model.VacationType(req.Type)
	if !vType.Valid() {
		return nil, ErrInvalidVacationType
	}
	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}

	targetID := req.UserID
	if targetID == "" {
		targetID = p.UserID
	}
	user, err := loadUserInCompany(ctx, s.repo, p, targetID)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeActFor(p, authz.SubjectOf(user)); err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	days := leave.RequestDays(vType, start, end)

	if vType.ConsumesAnnualLeave() {
		balance, err := s.balanceOf(ctx, user)
		if err != nil {
			return nil, err
		}
		if days.GreaterThan(balance.Remaining) {
			return nil, &pkgerrors.InsufficientBalanceError{Requested: days, Remaining: balance.Remaining}
		}
	}

	v := &model.Vacation{
		UserID:    user.UserID,
		Type:      vType,
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Reason:    strPtr(strings.TrimSpace(req.Reason)),
		Status:    model.VacationPending,
	}
	if err := s.repo.Vacation.Create(ctx, v); err != nil {
		s.logger.Error("create vacation failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}
	v.User = user

	s.logger.Info("vacation requested",
		zap.String("vacation_id", v.VacationID),
		zap.String("user_id", user.UserID),
		zap.String("type", string(vType)),
		zap.String("days", days.String()),
	)

	resp := toVacationResponse(v)
	return &resp, nil
}

func (s *vacationService) balanceOf(ctx context.Context, user *model.User) (leave.Balance, error) {
	policy, _, err := policyFor(ctx, s.repo, user.CompanyID)
	if err != nil {
		return leave.Balance{}, err
	}
	vacations, err := s.repo.Vacation.ListByUser(ctx, user.UserID)
	if err != nil {
		return leave.Balance{}, err
	}
	return leave.ComputeBalance(user.HireDate, baseDaysFor(policy), user.AnnualLeaveOverride, vacations, s.today()), nil
}

func (s *vacationService) List(ctx context.Context, p authz.Principal, req *dto.VacationListRequest) ([]dto.VacationResponse, int64, error) {
	scope, err := listScope(p, req.Scope)
	if err != nil {
		return nil, 0, err
	}

	filters := &repository.VacationListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		UserID:     scope.UserID,
	}
	if req.UserID != "" {
		if scope.UserID != "" && scope.UserID != req.UserID {
			return nil, 0, ErrNotReviewScope
		}
		filters.UserID = req.UserID
	}
	if req.Status != "" {
		st := model.VacationStatus(req.Status)
		if !st.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		filters.Status = &st
	}
	if req.Type != "" {
		t := model.VacationType(req.Type)
		if !t.Valid() {
			return nil, 0, ErrInvalidVacationType
		}
		filters.Type = &t
	}
	if filters.From, err = dto.ParseOptionalDate(req.From); err != nil {
		return nil, 0, ErrInvalidDate
	}
	if filters.To, err = dto.ParseOptionalDate(req.To); err != nil {
		return nil, 0, ErrInvalidDate
	}

	vacations, total, err := s.repo.Vacation.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list vacations failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.VacationResponse, 0, len(vacations))
	for i := range vacations {
		list = append(list, toVacationResponse(&vacations[i]))
	}
	return list, total, nil
}

// Review approves or rejects a pending request. Approval does not re-check
// the balance.
func (s *vacationService) Review(ctx context.Context, p authz.Principal, id string, req *dto.ReviewVacationRequest) (*dto.VacationResponse, error) {
	v, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeReview(p, authz.SubjectOf(v.User)); err != nil {
		return nil, err
	}
	if v.Status != model.VacationPending {
		return nil, ErrVacationNotPending
	}

	now := s.clock()
	switch req.Action {
	case ActionApprove:
		reviewer := p.UserID
		v.Status = model.VacationApproved
		v.ApprovedBy = &reviewer
		v.ApprovedAt = &now
		v.RejectReason = nil
	case ActionReject:
		reason := strings.TrimSpace(req.RejectReason)
		if reason == "" {
			return nil, ErrRejectReasonRequired
		}
		v.Status = model.VacationRejected
		v.RejectReason = &reason
	default:
		return nil, ErrInvalidAction
	}

	if err := s.repo.Vacation.UpdateStatus(ctx, v, model.VacationPending); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrVacationNotPending
		}
		s.logger.Error("review vacation failed", zap.String("vacation_id", id), zap.Error(err))
		return nil, err
	}

	metrics.VacationReviews.WithLabelValues(req.Action).Inc()
	s.logger.Info("vacation reviewed",
		zap.String("vacation_id", id),
		zap.String("reviewer_id", p.UserID),
		zap.String("status", string(v.Status)),
	)

	resp := toVacationResponse(v)
	return &resp, nil
}

// Delete owners may withdraw a pending request; reviewers may remove any
// request in their scope.
func (s *vacationService) Delete(ctx context.Context, p authz.Principal, id string) error {
	v, err := s.load(ctx, p, id)
	if err != nil {
		return err
	}

	reviewErr := authz.AuthorizeReview(p, authz.SubjectOf(v.User))
	if p.UserID == v.UserID {
		if v.Status != model.VacationPending && reviewErr != nil {
			return ErrVacationLocked
		}
	} else if reviewErr != nil {
		return reviewErr
	}

	if err := s.repo.Vacation.Delete(ctx, v.VacationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVacationNotFound
		}
		s.logger.Error("delete vacation failed", zap.String("vacation_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *vacationService) load(ctx context.Context, p authz.Principal, id string) (*model.Vacation, error) {
	v, err := s.repo.Vacation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVacationNotFound
		}
		return nil, err
	}
	if v.User == nil {
		user, err := s.repo.User.GetByID(ctx, v.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVacationNotFound
			}
			return nil, err
		}
		v.User = user
	}
	if !authz.SameCompany(p, authz.SubjectOf(v.User)) {
		return nil, ErrVacationNotFound
	}
	return v, nil
}

func toVacationResponse(v *model.Vacation) dto.VacationResponse {
	resp := dto.VacationResponse{
		ID:           v.VacationID,
		UserID:       v.UserID,
		Type:         string(v.Type),
		TypeLabel:    v.Type.Label(),
		StartDate:    dto.FormatDate(v.StartDate),
		EndDate:      dto.FormatDate(v.EndDate),
		Days:         v.Days,
		Reason:       v.Reason,
		Status:       string(v.Status),
		RejectReason: v.RejectReason,
		ApprovedBy:   v.ApprovedBy,
		ApprovedAt:   v.ApprovedAt,
		CreatedAt:    v.CreatedAt,
	}
	if v.User != nil {
		resp.UserName = v.User.Name
		resp.Department = v.User.DepartmentName()
	}
	return resp
}
