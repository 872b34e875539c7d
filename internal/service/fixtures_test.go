package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"offio/backend/internal/activity"
	"offio/backend/internal/authz"
	"offio/backend/internal/model"
)

// ── test helpers ──

var (
	kst = time.FixedZone("KST", 9*60*60)
	// 2025-06-16 10:00 KST, a Monday
	testNow = time.Date(2025, time.June, 16, 1, 0, 0, 0, time.UTC)
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestEnv an environment over fresh mocks with a fixed clock and the
// standard cast: admin, manager (sales), w1 (sales), w2 (dev), x1 (other company)
func newTestEnv() (*environment, *mockStore) {
	m := newMockStore()
	m.users.add(&model.User{UserID: "admin", CompanyID: "c1", Name: "Admin", Email: "admin@offio.io", Role: model.RoleAdmin, IsActive: true})
	m.users.add(&model.User{UserID: "mgr", CompanyID: "c1", Name: "Manager", Email: "mgr@offio.io", Role: model.RoleManager, Department: ptr("sales"), IsActive: true})
	m.users.add(&model.User{UserID: "w1", CompanyID: "c1", Name: "Worker One", Email: "w1@offio.io", Role: model.RoleWorker, Department: ptr("sales"), HireDate: ptr(day(2021, time.June, 16)), IsActive: true})
	m.users.add(&model.User{UserID: "w2", CompanyID: "c1", Name: "Worker Two", Email: "w2@offio.io", Role: model.RoleWorker, Department: ptr("dev"), IsActive: true})
	m.users.add(&model.User{UserID: "x1", CompanyID: "c2", Name: "Outsider", Email: "x1@other.io", Role: model.RoleAdmin, IsActive: true})

	env := &environment{
		repo:    m.repo,
		logger:  zap.NewNop(),
		clock:   func() time.Time { return testNow },
		loc:     kst,
		scoring: activity.DefaultScoring,
	}
	return env, m
}

func principalOf(m *mockStore, userID string) authz.Principal {
	u := m.users.users[userID]
	return authz.Principal{UserID: u.UserID, CompanyID: u.CompanyID, Role: u.Role, Department: u.DepartmentName()}
}

// seedSession stores a session that started two hours before testNow
func seedSession(m *mockStore, id, userID string, status model.SessionStatus) *model.WorkSession {
	s := &model.WorkSession{
		SessionID: id,
		UserID:    userID,
		Date:      day(2025, time.June, 16),
		StartTime: testNow.Add(-2 * time.Hour),
		Status:    status,
	}
	if status != model.SessionRecording {
		end := testNow.Add(-time.Hour)
		s.EndTime = &end
		s.TotalWorkSeconds = 3600
	}
	return m.sessions.add(s)
}

// seedSamples appends n one-minute samples starting at from
func seedSamples(m *mockStore, sessionID string, from time.Time, n int) {
	for i := 0; i < n; i++ {
		start := from.Add(time.Duration(i) * time.Minute)
		log := &model.ActivityLog{
			SessionID:       sessionID,
			StartTime:       start,
			EndTime:         start.Add(time.Minute),
			DurationSeconds: 60,
			KeyPressCount:   30,
			MouseClickCount: 2,
			MouseDistance:   500,
			ActionCount:     45,
		}
		usages := []model.WindowUsage{{ProgramName: fmt.Sprintf("app-%d", i%2), FocusSeconds: 60}}
		_ = m.activity.Append(context.Background(), log, usages)
	}
}
