package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/leave"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
)

// ── policy errors ──

var (
	ErrInvalidClock     = pkgerrors.New(pkgerrors.KindValidation, "times must be HH:MM")
	ErrInvalidWorkHours = pkgerrors.New(pkgerrors.KindValidation, "work end must be after work start")
	ErrInvalidCoreTime  = pkgerrors.New(pkgerrors.KindValidation, "core time must end after it starts")
	ErrInvalidDailyCap  = pkgerrors.New(pkgerrors.KindValidation, "min_daily_hours must not exceed max_daily_hours")
	ErrInvalidBaseDays  = pkgerrors.New(pkgerrors.KindValidation, "annual_vacation_days must be between 1 and 25")
)

// PolicyService company work policy
type PolicyService interface {
	Get(ctx context.Context, p authz.Principal) (*dto.PolicyResponse, error)
	Update(ctx context.Context, p authz.Principal, req *dto.UpdatePolicyRequest) (*dto.PolicyResponse, error)
}

type policyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPolicyService creates PolicyService
func NewPolicyService(repo *repository.Repository, logger *zap.Logger) PolicyService {
	return &policyService{repo: repo, logger: logger}
}

// ────────────────────── Get ──────────────────────

// Get companies that never saved a policy read the defaults
func (s *policyService) Get(ctx context.Context, p authz.Principal) (*dto.PolicyResponse, error) {
	policy, saved, err := policyFor(ctx, s.repo, p.CompanyID)
	if err != nil {
		s.logger.Error("load work policy failed", zap.String("company_id", p.CompanyID), zap.Error(err))
		return nil, err
	}
	return toPolicyResponse(policy, saved), nil
}

// ────────────────────── Update ──────────────────────

// Update the first save creates the row
func (s *policyService) Update(ctx context.Context, p authz.Principal, req *dto.UpdatePolicyRequest) (*dto.PolicyResponse, error) {
	if p.Role != model.RoleAdmin {
		return nil, ErrAdminOnly
	}
	policy, _, err := policyFor(ctx, s.repo, p.CompanyID)
	if err != nil {
		return nil, err
	}

	for _, t := range []*string{req.WorkStartTime, req.WorkEndTime, req.CoreTimeStart, req.CoreTimeEnd} {
		if t != nil && !validClock(*t) {
			return nil, ErrInvalidClock
		}
	}

	if req.WorkStartTime != nil {
		policy.WorkStartTime = *req.WorkStartTime
	}
	if req.WorkEndTime != nil {
		policy.WorkEndTime = *req.WorkEndTime
	}
	if req.FlexibleWorkEnabled != nil {
		policy.FlexibleWorkEnabled = *req.FlexibleWorkEnabled
	}
	if req.CoreTimeStart != nil {
		policy.CoreTimeStart = *req.CoreTimeStart
	}
	if req.CoreTimeEnd != nil {
		policy.CoreTimeEnd = *req.CoreTimeEnd
	}
	if req.MinDailyHours != nil {
		policy.MinDailyHours = *req.MinDailyHours
	}
	if req.MaxDailyHours != nil {
		policy.MaxDailyHours = *req.MaxDailyHours
	}
	if req.AnnualVacationDays != nil {
		if *req.AnnualVacationDays < 1 || *req.AnnualVacationDays > leave.MaxAnnualDays {
			return nil, ErrInvalidBaseDays
		}
		policy.AnnualVacationDays = *req.AnnualVacationDays
	}
	if req.AutoApproveEnabled != nil {
		policy.AutoApproveEnabled = *req.AutoApproveEnabled
	}

	// zero-padded HH:MM compares correctly as strings
	if policy.WorkEndTime <= policy.WorkStartTime {
		return nil, ErrInvalidWorkHours
	}
	if policy.FlexibleWorkEnabled && policy.CoreTimeEnd <= policy.CoreTimeStart {
		return nil, ErrInvalidCoreTime
	}
	if policy.MinDailyHours > policy.MaxDailyHours {
		return nil, ErrInvalidDailyCap
	}

	if err := s.repo.WorkPolicy.Save(ctx, policy); err != nil {
		s.logger.Error("save work policy failed", zap.String("company_id", p.CompanyID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("work policy updated",
		zap.String("company_id", p.CompanyID),
		zap.String("updated_by", p.UserID),
	)
	return toPolicyResponse(policy, true), nil
}

func validClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func toPolicyResponse(p *model.WorkPolicy, saved bool) *dto.PolicyResponse {
	return &dto.PolicyResponse{
		WorkStartTime:       p.WorkStartTime,
		WorkEndTime:         p.WorkEndTime,
		FlexibleWorkEnabled: p.FlexibleWorkEnabled,
		CoreTimeStart:       p.CoreTimeStart,
		CoreTimeEnd:         p.CoreTimeEnd,
		MinDailyHours:       p.MinDailyHours,
		MaxDailyHours:       p.MaxDailyHours,
		AnnualVacationDays:  p.AnnualVacationDays,
		AutoApproveEnabled:  p.AutoApproveEnabled,
		Saved:               saved,
	}
}
