package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/model"
	pkgerrors "offio/backend/pkg/errors"
)

func approvedAnnual(id, userID string, days string) *model.Vacation {
	return &model.Vacation{
		VacationID: id,
		UserID:     userID,
		Type:       model.VacationAnnual,
		StartDate:  day(2025, time.March, 3),
		EndDate:    day(2025, time.March, 3),
		Days:       dec(days),
		Status:     model.VacationApproved,
	}
}

// ── Create ──

func TestVacationService_Create(t *testing.T) {
	env, m := newTestEnv()
	svc := NewVacationService(env)
	ctx := context.Background()

	resp, err := svc.Create(ctx, principalOf(m, "w1"), &dto.CreateVacationRequest{
		Type:      "annual",
		StartDate: "2025-07-01",
		EndDate:   "2025-07-03",
		Reason:    "family trip",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.Status != string(model.VacationPending) {
		t.Errorf("expected pending, got %s", resp.Status)
	}
	if resp.Days.String() != "3" {
		t.Errorf("expected 3 days, got %s", resp.Days)
	}
	if resp.UserID != "w1" || resp.UserName != "Worker One" {
		t.Errorf("unexpected owner %s/%s", resp.UserID, resp.UserName)
	}

	half, err := svc.Create(ctx, principalOf(m, "w1"), &dto.CreateVacationRequest{Type: "half", StartDate: "2025-07-10", EndDate: "2025-07-12"})
	if err != nil {
		t.Fatalf("Create half failed: %v", err)
	}
	if half.Days.String() != "0.5" {
		t.Errorf("half-day is always 0.5, got %s", half.Days)
	}
}

func TestVacationService_Create_InsufficientBalance(t *testing.T) {
	env, m := newTestEnv()
	svc := NewVacationService(env)
	ctx := context.Background()
	// w1 has four years of service: 16 days, 14 already used
	m.vacations.add(approvedAnnual("v-used", "w1", "14"))

	_, err := svc.Create(ctx, principalOf(m, "w1"), &dto.CreateVacationRequest{Type: "annual", StartDate: "2025-07-01", EndDate: "2025-07-03"})
	var ib *pkgerrors.InsufficientBalanceError
	if !errors.As(err, &ib) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if ib.Remaining.String() != "2" || ib.Requested.String() != "3" {
		t.Errorf("unexpected balance error %+v", ib)
	}

	// pending requests do not consume balance, so two days still fit
	if _, err := svc.Create(ctx, principalOf(m, "w1"), &dto.CreateVacationRequest{Type: "annual", StartDate: "2025-07-01", EndDate: "2025-07-02"}); err != nil {
		t.Errorf("2 days should fit: %v", err)
	}
	// sick leave never checks the balance
	if _, err := svc.Create(ctx, principalOf(m, "w1"), &dto.CreateVacationRequest{Type: "sick", StartDate: "2025-08-01", EndDate: "2025-08-10"}); err != nil {
		t.Errorf("sick leave should not be balance-checked: %v", err)
	}
}

func TestVacationService_Create_Rejections(t *testing.T) {
	env, m := newTestEnv()
	svc := NewVacationService(env)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller string
		req    dto.CreateVacationRequest
		want   error
	}{
		{"end before start", "w1", dto.CreateVacationRequest{Type: "annual", StartDate: "2025-07-03", EndDate: "2025-07-01"}, ErrInvalidPeriod},
		{"bad date", "w1", dto.CreateVacationRequest{Type: "annual", StartDate: "07/01/2025", EndDate: "2025-07-01"}, ErrInvalidDate},
		{"unknown type", "w1", dto.CreateVacationRequest{Type: "party", StartDate: "2025-07-01", EndDate: "2025-07-01"}, ErrInvalidVacationType},
		{"worker for someone else", "w1", dto.CreateVacationRequest{UserID: "w2", Type: "sick", StartDate: "2025-07-01", EndDate: "2025-07-01"}, authz.ErrNotReviewer},
		{"manager for other department", "mgr", dto.CreateVacationRequest{UserID: "w2", Type: "sick", StartDate: "2025-07-01", EndDate: "2025-07-01"}, authz.ErrOtherTeam},
		{"user of other company", "admin", dto.CreateVacationRequest{UserID: "x1", Type: "sick", StartDate: "2025-07-01", EndDate: "2025-07-01"}, ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, principalOf(m, tt.caller), &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	resp, err := svc.Create(ctx, principalOf(m, "mgr"), &dto.CreateVacationRequest{UserID: "w1", Type: "sick", StartDate: "2025-07-01", EndDate: "2025-07-01"})
	if err != nil {
		t.Fatalf("manager filing for own department should succeed: %v", err)
	}
	if resp.UserID != "w1" {
		t.Errorf("request should belong to w1, got %s", resp.UserID)
	}
}

// ── Review ──

func TestVacationService_Review(t *testing.T) {
	env, m := newTestEnv()
	svc := NewVacationService(env)
	ctx := context.Background()
	m.vacations.add(&model.Vacation{VacationID: "v1", UserID: "w1", Type: model.VacationAnnual, Days: dec("1"), Status: model.VacationPending})
	m.vacations.add(&model.Vacation{VacationID: "v2", UserID: "w1", Type: model.VacationAnnual, Days: dec("1"), Status: model.VacationPending})

	resp, err := svc.Review(ctx, principalOf(m, "mgr"), "v1", &dto.ReviewVacationRequest{Action: ActionApprove})
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if resp.Status != string(model.VacationApproved) || resp.ApprovedBy == nil || *resp.ApprovedBy != "mgr" {
		t.Errorf("unexpected approval %+v", resp)
	}
	if m.vacations.vacations["v1"].Status != model.VacationApproved {
		t.Error("approval should be persisted")
	}

	if _, err := svc.Review(ctx, principalOf(m, "admin"), "v1", &dto.ReviewVacationRequest{Action: ActionReject, RejectReason: "late"}); !errors.Is(err, ErrVacationNotPending) {
		t.Errorf("approved is terminal, got %v", err)
	}

	if _, err := svc.Review(ctx, principalOf(m, "admin"), "v2", &dto.ReviewVacationRequest{Action: ActionReject}); !errors.Is(err, ErrRejectReasonRequired) {
		t.Errorf("reject needs a reason, got %v", err)
	}
	rejected, err := svc.Review(ctx, principalOf(m, "admin"), "v2", &dto.ReviewVacationRequest{Action: ActionReject, RejectReason: "peak season"})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.RejectReason == nil || *rejected.RejectReason != "peak season" || rejected.ApprovedBy != nil {
		t.Errorf("unexpected rejection %+v", rejected)
	}

	if _, err := svc.Review(ctx, principalOf(m, "w2"), "v2", &dto.ReviewVacationRequest{Action: ActionApprove}); !errors.Is(err, authz.ErrNotReviewer) {
		t.Errorf("workers cannot review, got %v", err)
	}
}

func TestVacationService_Review_ApprovalDoesNotRecheckBalance(t *testing.T) {
	env, m := newTestEnv()
	svc := NewVacationService(env)
	m.vacations.add(approvedAnnual("v-used", "w1", "16"))
	m.vacations.add(&model.Vacation{VacationID: "v1", UserID: "w1", Type: model.VacationAnnual, Days: dec("2"), Status: model.VacationPending})

	if _, err := svc.Review(context.Background(), principalOf(m, "admin"), "v1", &dto.ReviewVacationRequest{Action: ActionApprove}); err != nil {
		t.Errorf("approval should not re-check the balance: %v", err)
	}
}

// ── Delete ──

func TestVacationService_Delete(t *testing.T) {
	env, m := newTestEnv()
	svc := NewVacationService(env)
	leaveSvc := NewLeaveService(env)
	ctx := context.Background()
	m.vacations.add(&model.Vacation{VacationID: "v-pending", UserID: "w1", Type: model.VacationSick, Days: dec("1"), Status: model.VacationPending})
	m.vacations.add(approvedAnnual("v-approved", "w1", "3"))

	if err := svc.Delete(ctx, principalOf(m, "w1"), "v-approved"); !errors.Is(err, ErrVacationLocked) || pkgerrors.KindOf(err) != pkgerrors.KindForbidden {
		t.Errorf("owner cannot delete an approved request, expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, principalOf(m, "w2"), "v-pending"); !errors.Is(err, authz.ErrNotReviewer) {
		t.Errorf("another worker cannot delete, got %v", err)
	}
	if err := svc.Delete(ctx, principalOf(m, "w1"), "v-pending"); err != nil {
		t.Errorf("owner may withdraw a pending request: %v", err)
	}

	before, _ := leaveSvc.GetBalance(ctx, principalOf(m, "w1"), "")
	if err := svc.Delete(ctx, principalOf(m, "admin"), "v-approved"); err != nil {
		t.Fatalf("admin may delete an approved request: %v", err)
	}
	after, _ := leaveSvc.GetBalance(ctx, principalOf(m, "w1"), "")
	if !after.Remaining.Sub(before.Remaining).Equal(dec("3")) {
		t.Errorf("deleting an approved request returns its days, before=%s after=%s", before.Remaining, after.Remaining)
	}

	if err := svc.Delete(ctx, principalOf(m, "x1"), "v-approved"); !errors.Is(err, ErrVacationNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

// ── List ──

func TestVacationService_List(t *testing.T) {
	env, m := newTestEnv()
	svc := NewVacationService(env)
	ctx := context.Background()
	m.vacations.add(approvedAnnual("v1", "w1", "1"))
	m.vacations.add(approvedAnnual("v2", "w2", "1"))
	m.vacations.add(&model.Vacation{VacationID: "v3", UserID: "w1", Type: model.VacationSick, Days: dec("1"), Status: model.VacationPending,
		StartDate: day(2025, time.July, 1), EndDate: day(2025, time.July, 1)})

	_, total, err := svc.List(ctx, principalOf(m, "w1"), &dto.VacationListRequest{})
	if err != nil || total != 2 {
		t.Errorf("worker sees own requests only, got %d (%v)", total, err)
	}
	_, total, _ = svc.List(ctx, principalOf(m, "mgr"), &dto.VacationListRequest{Scope: dto.ScopeTeam})
	if total != 2 {
		t.Errorf("manager team scope is the department, got %d", total)
	}
	_, total, _ = svc.List(ctx, principalOf(m, "admin"), &dto.VacationListRequest{Status: "approved"})
	if total != 2 {
		t.Errorf("admin approved filter, got %d", total)
	}
	_, total, _ = svc.List(ctx, principalOf(m, "admin"), &dto.VacationListRequest{From: "2025-06-01"})
	if total != 1 {
		t.Errorf("date window filter, got %d", total)
	}
	if _, _, err := svc.List(ctx, principalOf(m, "w1"), &dto.VacationListRequest{Scope: dto.ScopeTeam}); !errors.Is(err, ErrNotReviewScope) {
		t.Errorf("workers cannot list the team, got %v", err)
	}
}
