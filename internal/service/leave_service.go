package service

import (
	"context"

	"go.uber.org/zap"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/leave"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
)

// LeaveService annual leave balances
type LeaveService interface {
	GetBalance(ctx context.Context, p authz.Principal, userID string) (*dto.LeaveBalanceResponse, error)
	// ListBalances balances of every active member in scope, as of today
	ListBalances(ctx context.Context, scope authz.Scope) ([]dto.LeaveBalanceResponse, error)
}

type leaveService struct {
	*environment
}

// NewLeaveService creates LeaveService
func NewLeaveService(env *environment) LeaveService {
	return &leaveService{environment: env}
}

// GetBalance balances are recomputed from the request rows on every call;
// nothing is stored as a running counter.
func (s *leaveService) GetBalance(ctx context.Context, p authz.Principal, userID string) (*dto.LeaveBalanceResponse, error) {
	if userID == "" {
		userID = p.UserID
	}
	user, err := loadUserInCompany(ctx, s.repo, p, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeActFor(p, authz.SubjectOf(user)); err != nil {
		return nil, err
	}

	policy, _, err := policyFor(ctx, s.repo, user.CompanyID)
	if err != nil {
		return nil, err
	}
	vacations, err := s.repo.Vacation.ListByUser(ctx, user.UserID)
	if err != nil {
		s.logger.Error("load vacations failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	resp := s.balanceResponse(user, baseDaysFor(policy), vacations)
	return &resp, nil
}

func (s *leaveService) ListBalances(ctx context.Context, scope authz.Scope) ([]dto.LeaveBalanceResponse, error) {
	policy, _, err := policyFor(ctx, s.repo, scope.CompanyID)
	if err != nil {
		return nil, err
	}
	base := baseDaysFor(policy)

	users, _, err := s.repo.User.List(ctx, &repository.UserListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		ActiveOnly: true,
	}, 0, 0)
	if err != nil {
		return nil, err
	}

	approved := model.VacationApproved
	vacations, _, err := s.repo.Vacation.List(ctx, &repository.VacationListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		Status:     &approved,
	}, 0, 0)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string][]model.Vacation, len(users))
	for _, v := range vacations {
		byUser[v.UserID] = append(byUser[v.UserID], v)
	}

	list := make([]dto.LeaveBalanceResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		if scope.UserID != "" && u.UserID != scope.UserID {
			continue
		}
		list = append(list, s.balanceResponse(u, base, byUser[u.UserID]))
	}
	return list, nil
}

func (s *leaveService) balanceResponse(user *model.User, baseDays int, vacations []model.Vacation) dto.LeaveBalanceResponse {
	return dto.LeaveBalanceResponse{
		UserID:   user.UserID,
		UserName: user.Name,
		HireDate: dto.FormatOptionalDate(user.HireDate),
		Balance:  leave.ComputeBalance(user.HireDate, baseDays, user.AnnualLeaveOverride, vacations, s.today()),
	}
}
