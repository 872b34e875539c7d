package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"offio/backend/config"
	"offio/backend/internal/activity"
	"offio/backend/internal/authz"
	"offio/backend/internal/leave"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
)

// Service aggregate of every service
type Service struct {
	Agent      AgentService
	Session    SessionService
	Vacation   VacationService
	Leave      LeaveService
	Report     ReportService
	Department DepartmentService
	Policy     PolicyService
	User       UserService
}

// Clock wall-clock source; only the service layer reads the time
type Clock func() time.Time

// Options optional collaborators. Nil Store disables screenshot URLs,
// nil SharedCache keeps the detail cache in-process only.
type Options struct {
	Store       ObjectStore
	SharedCache SharedCache
	Clock       Clock
}

// NewService builds every service
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	opts Options,
	logger *zap.Logger,
) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	env := &environment{
		repo:   repo,
		logger: logger,
		clock:  clock,
		loc:    cfg.Activity.Location(),
		scoring: activity.Scoring{
			KeyPressDivisor: cfg.Activity.KeyPressDivisor,
			ClickWeight:     cfg.Activity.ClickWeight,
			DistanceDivisor: cfg.Activity.DistanceDivisor,
			ActionDivisor:   cfg.Activity.ActionDivisor,
		},
		store: opts.Store,
	}

	cache := newDetailCache(cfg.Activity.CacheSize, cfg.Activity.CacheTTL, opts.SharedCache, logger)
	leaveSvc := NewLeaveService(env)

	return &Service{
		Agent:      NewAgentService(env),
		Session:    NewSessionService(env, cache),
		Vacation:   NewVacationService(env),
		Leave:      leaveSvc,
		Report:     NewReportService(env, leaveSvc),
		Department: NewDepartmentService(repo, logger),
		Policy:     NewPolicyService(repo, logger),
		User:       NewUserService(repo, logger),
	}
}

// environment collaborators shared by the session, vacation and report services
type environment struct {
	repo    *repository.Repository
	logger  *zap.Logger
	clock   Clock
	loc     *time.Location
	scoring activity.Scoring
	store   ObjectStore
}

// today the calendar date of now in the business time zone, as UTC midnight
func (e *environment) today() time.Time {
	y, m, d := e.clock().In(e.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ── shared errors ──

var (
	ErrUserNotFound   = pkgerrors.New(pkgerrors.KindNotFound, "user not found")
	ErrUserInactive   = pkgerrors.New(pkgerrors.KindForbidden, "user is deactivated")
	ErrInvalidDate    = pkgerrors.New(pkgerrors.KindValidation, "invalid date, expected YYYY-MM-DD")
	ErrInvalidPeriod  = pkgerrors.New(pkgerrors.KindValidation, "end must not be before start")
	ErrStoreDisabled  = pkgerrors.New(pkgerrors.KindInternal, "object storage is not configured")
	ErrNotReviewScope = pkgerrors.New(pkgerrors.KindForbidden, "team listings require a reviewer role")
)

// loadUserInCompany users of other companies are reported as missing
func loadUserInCompany(ctx context.Context, repo *repository.Repository, p authz.Principal, userID string) (*model.User, error) {
	user, err := repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !authz.SameCompany(p, authz.SubjectOf(user)) {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// policyFor the company's saved policy, or defaults when none was saved
func policyFor(ctx context.Context, repo *repository.Repository, companyID string) (*model.WorkPolicy, bool, error) {
	p, err := repo.WorkPolicy.GetByCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultWorkPolicy(companyID), false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}

// baseDaysFor policy base grant with the statutory default
func baseDaysFor(policy *model.WorkPolicy) int {
	if policy == nil || policy.AnnualVacationDays <= 0 {
		return leave.DefaultBaseDays
	}
	return policy.AnnualVacationDays
}

// listScope resolves the own/team scope parameter shared by list endpoints.
// Without an explicit scope admins see the company and everyone else their own rows.
func listScope(p authz.Principal, scope string) (authz.Scope, error) {
	switch scope {
	case "own":
		return authz.OwnScope(p), nil
	case "team":
		if !p.Role.IsReviewer() {
			return authz.Scope{}, ErrNotReviewScope
		}
		return authz.ReviewScope(p), nil
	default:
		if p.Role == model.RoleAdmin {
			return authz.ReviewScope(p), nil
		}
		return authz.OwnScope(p), nil
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
