//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	"offio/backend/pkg/database"
	pkgerrors "offio/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=offio password=offio_password dbname=offio_test sslmode=disable TimeZone=Asia/Seoul"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}

	// the partial unique index only exists in the SQL migrations
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData creates a company with one worker and returns a cleanup func
func setupTestData(t *testing.T) (company *model.Company, user *model.User, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	company = &model.Company{Name: fmt.Sprintf("test-co-%d", time.Now().UnixNano()), Plan: model.PlanLite, ScreenshotInterval: 60}
	if err := testDB.WithContext(ctx).Create(company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}

	dept := "개발팀"
	user = &model.User{
		CompanyID:  company.CompanyID,
		Email:      fmt.Sprintf("w%d@example.com", time.Now().UnixNano()),
		Name:       "worker",
		Role:       model.RoleWorker,
		Department: &dept,
		IsActive:   true,
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	cleanup = func() {
		// cascades to users, sessions, samples, screenshots and vacations
		testDB.Where("company_id = ?", company.CompanyID).Delete(&model.Company{})
	}
	return
}

func newSession(userID string, start time.Time) *model.WorkSession {
	return &model.WorkSession{
		UserID:    userID,
		Date:      start.Truncate(24 * time.Hour),
		StartTime: start,
		Status:    model.SessionRecording,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: one recording session per user
// ═══════════════════════════════════════════════════════════

func TestWorkSession_OneRecordingPerUser(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	first := newSession(user.UserID, now)
	if err := repo.Session.Create(ctx, first); err != nil {
		t.Fatalf("create first session: %v", err)
	}

	second := newSession(user.UserID, now)
	err := repo.Session.Create(ctx, second)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}

	// once the first session leaves recording another one may start
	first.Status = model.SessionEditing
	if err := repo.Session.Update(ctx, first); err != nil {
		t.Fatalf("end first session: %v", err)
	}
	if err := repo.Session.Create(ctx, newSession(user.UserID, now.Add(time.Hour))); err != nil {
		t.Fatalf("create after end: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_WorkSession_ConflictDetected(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newSession(user.UserID, time.Now())
	if err := repo.Session.Create(ctx, s); err != nil {
		t.Fatalf("create session: %v", err)
	}

	copy1, _ := repo.Session.GetByID(ctx, s.SessionID)
	copy2, _ := repo.Session.GetByID(ctx, s.SessionID)

	copy1.Status = model.SessionEditing
	if err := repo.Session.Update(ctx, copy1); err != nil {
		t.Fatalf("first update should succeed: %v", err)
	}
	if copy1.Version != 2 {
		t.Errorf("version = %d, want 2", copy1.Version)
	}

	copy2.Status = model.SessionEditing
	if err := repo.Session.Update(ctx, copy2); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("expected ErrOptimisticLock, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Activity samples
// ═══════════════════════════════════════════════════════════

func TestActivity_AppendExcludeAndSum(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	start := time.Now().Truncate(time.Minute)

	s := newSession(user.UserID, start)
	if err := repo.Session.Create(ctx, s); err != nil {
		t.Fatalf("create session: %v", err)
	}

	for i := 0; i < 5; i++ {
		at := start.Add(time.Duration(i) * time.Minute)
		log := &model.ActivityLog{
			SessionID:       s.SessionID,
			StartTime:       at,
			EndTime:         at.Add(time.Minute),
			DurationSeconds: 60,
			KeyboardCount:   10,
		}
		usages := []model.WindowUsage{{ProgramName: "code", FocusSeconds: 40}, {ProgramName: "chrome", FocusSeconds: 20}}
		if err := repo.Activity.Append(ctx, log, usages); err != nil {
			t.Fatalf("append sample %d: %v", i, err)
		}
	}

	usages, err := repo.Activity.ListUsagesBySession(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("list usages: %v", err)
	}
	if len(usages) != 10 {
		t.Errorf("usages = %d, want 10", len(usages))
	}

	reason := "점심"
	n, err := repo.Activity.SetExcluded(ctx, s.SessionID, start.Add(time.Minute), start.Add(3*time.Minute), true, &reason)
	if err != nil {
		t.Fatalf("exclude: %v", err)
	}
	if n != 2 {
		t.Errorf("excluded rows = %d, want 2", n)
	}

	sum, err := repo.Activity.SumActiveSeconds(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 180 {
		t.Errorf("active seconds = %d, want 180", sum)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Vacation decision guard
// ═══════════════════════════════════════════════════════════

func TestVacation_UpdateStatus_OnlyFromPending(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	v := &model.Vacation{
		UserID:    user.UserID,
		Type:      model.VacationAnnual,
		StartDate: day,
		EndDate:   day,
		Days:      decimal.NewFromInt(1),
		Status:    model.VacationPending,
	}
	if err := repo.Vacation.Create(ctx, v); err != nil {
		t.Fatalf("create vacation: %v", err)
	}

	v.Status = model.VacationApproved
	if err := repo.Vacation.UpdateStatus(ctx, v, model.VacationPending); err != nil {
		t.Fatalf("approve: %v", err)
	}

	v.Status = model.VacationRejected
	if err := repo.Vacation.UpdateStatus(ctx, v, model.VacationPending); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("expected ErrOptimisticLock, got %v", err)
	}

	dept := "개발팀"
	list, total, err := repo.Vacation.List(ctx, &repository.VacationListFilters{
		CompanyID:  user.CompanyID,
		Department: &dept,
	}, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Errorf("total = %d, len = %d, want 1", total, len(list))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	var sessionID string
	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		s := newSession(user.UserID, time.Now())
		if err := tx.Session.Create(ctx, s); err != nil {
			return err
		}
		sessionID = s.SessionID
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := repo.Session.GetByID(ctx, sessionID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected rolled back session to be gone, got %v", err)
	}
}
