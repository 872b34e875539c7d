package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
)

// mockStore bundles every mock behind one repository.Repository
type mockStore struct {
	repo        *repository.Repository
	companies   *mockCompanyRepo
	users       *mockUserRepo
	departments *mockDeptRepo
	policies    *mockPolicyRepo
	sessions    *mockSessionRepo
	activity    *mockActivityRepo
	screenshots *mockScreenshotRepo
	vacations   *mockVacationRepo
}

func newMockStore() *mockStore {
	users := newMockUserRepo()
	m := &mockStore{
		companies:   newMockCompanyRepo(),
		users:       users,
		departments: newMockDeptRepo(),
		policies:    newMockPolicyRepo(),
		sessions:    newMockSessionRepo(users),
		activity:    newMockActivityRepo(),
		screenshots: newMockScreenshotRepo(),
		vacations:   newMockVacationRepo(users),
	}
	m.repo = &repository.Repository{
		Company:    m.companies,
		User:       m.users,
		Department: m.departments,
		WorkPolicy: m.policies,
		Session:    m.sessions,
		Activity:   m.activity,
		Screenshot: m.screenshots,
		Vacation:   m.vacations,
	}
	return m
}

func inScope(users *mockUserRepo, userID, companyID string, department *string) bool {
	u, ok := users.users[userID]
	if !ok || u.CompanyID != companyID {
		return false
	}
	return department == nil || u.DepartmentName() == *department
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	companies map[string]*model.Company
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: map[string]*model.Company{
		"c1": {CompanyID: "c1", Name: "Offio", ScreenshotInterval: 300},
		"c2": {CompanyID: "c2", Name: "Other", ScreenshotInterval: 60},
	}}
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, f *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.CompanyID != f.CompanyID {
			continue
		}
		if f.Department != nil && u.DepartmentName() != *f.Department {
			continue
		}
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) CountByDepartment(_ context.Context, companyID, department string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.CompanyID == companyID && u.DepartmentName() == department {
			n++
		}
	}
	return n, nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts map[string]*model.Department
	seq   int
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: map[string]*model.Department{
		"dept-sales": {DepartmentID: "dept-sales", CompanyID: "c1", Name: "sales"},
		"dept-dev":   {DepartmentID: "dept-dev", CompanyID: "c1", Name: "dev"},
	}}
}

func (m *mockDeptRepo) Create(_ context.Context, d *model.Department) error {
	if d.DepartmentID == "" {
		m.seq++
		d.DepartmentID = fmt.Sprintf("dept-%d", m.seq)
	}
	m.depts[d.DepartmentID] = d
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, companyID, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.CompanyID == companyID && d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context, companyID string) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		if d.CompanyID == companyID {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, d *model.Department) error {
	cp := *d
	m.depts[d.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string) error {
	delete(m.depts, id)
	return nil
}

func (m *mockDeptRepo) CountChildren(_ context.Context, id string) (int64, error) {
	var n int64
	for _, d := range m.depts {
		if d.ParentID != nil && *d.ParentID == id {
			n++
		}
	}
	return n, nil
}

// ── Mock WorkPolicyRepository ──

type mockPolicyRepo struct {
	policies map[string]*model.WorkPolicy
}

func newMockPolicyRepo() *mockPolicyRepo {
	return &mockPolicyRepo{policies: make(map[string]*model.WorkPolicy)}
}

func (m *mockPolicyRepo) GetByCompany(_ context.Context, companyID string) (*model.WorkPolicy, error) {
	if p, ok := m.policies[companyID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPolicyRepo) Save(_ context.Context, p *model.WorkPolicy) error {
	if p.PolicyID == "" {
		p.PolicyID = "policy-" + p.CompanyID
	}
	cp := *p
	m.policies[p.CompanyID] = &cp
	return nil
}

// ── Mock WorkSessionRepository ──

type mockSessionRepo struct {
	users    *mockUserRepo
	sessions map[string]*model.WorkSession
	seq      int
	// missRecordingLookup simulates a concurrent start: the lookup sees no
	// open session while the unique index still rejects the insert
	missRecordingLookup bool
}

func newMockSessionRepo(users *mockUserRepo) *mockSessionRepo {
	return &mockSessionRepo{users: users, sessions: make(map[string]*model.WorkSession)}
}

func (m *mockSessionRepo) add(s *model.WorkSession) *model.WorkSession {
	if s.Version == 0 {
		s.Version = 1
	}
	m.sessions[s.SessionID] = s
	return s
}

func (m *mockSessionRepo) Create(_ context.Context, s *model.WorkSession) error {
	for _, existing := range m.sessions {
		if existing.UserID == s.UserID && existing.Status == model.SessionRecording {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.SessionID == "" {
		m.seq++
		s.SessionID = fmt.Sprintf("session-%d", m.seq)
	}
	s.Version = 1
	cp := *s
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.WorkSession, error) {
	if s, ok := m.sessions[id]; ok {
		cp := *s
		cp.User = nil
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetRecordingByUser(_ context.Context, userID string) (*model.WorkSession, error) {
	if m.missRecordingLookup {
		return nil, gorm.ErrRecordNotFound
	}
	for _, s := range m.sessions {
		if s.UserID == userID && s.Status == model.SessionRecording {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Update(_ context.Context, s *model.WorkSession) error {
	stored, ok := m.sessions[s.SessionID]
	if !ok || stored.Version != s.Version {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	cp := *s
	cp.User = nil
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) List(_ context.Context, f *repository.SessionListFilters, offset, limit int) ([]model.WorkSession, int64, error) {
	var result []model.WorkSession
	for _, s := range m.sessions {
		if !inScope(m.users, s.UserID, f.CompanyID, f.Department) {
			continue
		}
		if f.UserID != "" && s.UserID != f.UserID {
			continue
		}
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		if f.From != nil && s.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && s.Date.After(*f.To) {
			continue
		}
		cp := *s
		cp.User = m.users.users[s.UserID]
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return paginate(result, offset, limit), int64(len(result)), nil
}

// ── Mock ActivityLogRepository ──

type mockActivityRepo struct {
	logs   []model.ActivityLog
	usages []model.WindowUsage
	ranges []model.ExcludedRange
	seq    int64
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{}
}

func (m *mockActivityRepo) Append(_ context.Context, log *model.ActivityLog, usages []model.WindowUsage) error {
	m.seq++
	log.ID = m.seq
	m.logs = append(m.logs, *log)
	for _, u := range usages {
		u.ActivityLogID = log.ID
		m.usages = append(m.usages, u)
	}
	return nil
}

func (m *mockActivityRepo) ListBySession(_ context.Context, sessionID string) ([]model.ActivityLog, error) {
	var result []model.ActivityLog
	for _, l := range m.logs {
		if l.SessionID == sessionID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockActivityRepo) ListUsagesBySession(_ context.Context, sessionID string) ([]model.WindowUsage, error) {
	ids := make(map[int64]bool)
	for _, l := range m.logs {
		if l.SessionID == sessionID {
			ids[l.ID] = true
		}
	}
	var result []model.WindowUsage
	for _, u := range m.usages {
		if ids[u.ActivityLogID] {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockActivityRepo) SumActiveSeconds(_ context.Context, sessionID string) (int, error) {
	total := 0
	for _, l := range m.logs {
		if l.SessionID == sessionID && !l.IsExcluded {
			total += l.DurationSeconds
		}
	}
	return total, nil
}

func (m *mockActivityRepo) SetExcluded(_ context.Context, sessionID string, from, to time.Time, excluded bool, reason *string) (int64, error) {
	var n int64
	for i := range m.logs {
		l := &m.logs[i]
		if l.SessionID != sessionID || l.StartTime.Before(from) || !l.StartTime.Before(to) {
			continue
		}
		l.IsExcluded = excluded
		l.ExcludeReason = reason
		n++
	}
	return n, nil
}

func (m *mockActivityRepo) CreateRange(_ context.Context, rng *model.ExcludedRange) error {
	m.seq++
	rng.RangeID = m.seq
	m.ranges = append(m.ranges, *rng)
	return nil
}

func (m *mockActivityRepo) ListRanges(_ context.Context, sessionID string) ([]model.ExcludedRange, error) {
	var result []model.ExcludedRange
	for _, r := range m.ranges {
		if r.SessionID == sessionID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockActivityRepo) DeleteRanges(_ context.Context, sessionID string, from, to time.Time) (int64, error) {
	var kept []model.ExcludedRange
	var n int64
	for _, r := range m.ranges {
		if r.SessionID == sessionID && r.StartTime.Before(to) && r.EndTime.After(from) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.ranges = kept
	return n, nil
}

// ── Mock ScreenshotRepository ──

type mockScreenshotRepo struct {
	shots map[int64]*model.Screenshot
	seq   int64
}

func newMockScreenshotRepo() *mockScreenshotRepo {
	return &mockScreenshotRepo{shots: make(map[int64]*model.Screenshot)}
}

func (m *mockScreenshotRepo) Create(_ context.Context, s *model.Screenshot) error {
	m.seq++
	s.ID = m.seq
	cp := *s
	m.shots[s.ID] = &cp
	return nil
}

func (m *mockScreenshotRepo) GetByID(_ context.Context, sessionID string, id int64) (*model.Screenshot, error) {
	if s, ok := m.shots[id]; ok && s.SessionID == sessionID {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScreenshotRepo) ListBySession(_ context.Context, sessionID string, includeDeleted bool) ([]model.Screenshot, error) {
	var result []model.Screenshot
	for _, s := range m.shots {
		if s.SessionID != sessionID || (s.IsDeleted && !includeDeleted) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CapturedAt.Before(result[j].CapturedAt) })
	return result, nil
}

func (m *mockScreenshotRepo) SetDeleted(_ context.Context, id int64, deleted bool, at *time.Time) error {
	s, ok := m.shots[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.IsDeleted = deleted
	s.DeletedAt = at
	return nil
}

// ── Mock VacationRepository ──

type mockVacationRepo struct {
	users     *mockUserRepo
	vacations map[string]*model.Vacation
	seq       int
}

func newMockVacationRepo(users *mockUserRepo) *mockVacationRepo {
	return &mockVacationRepo{users: users, vacations: make(map[string]*model.Vacation)}
}

func (m *mockVacationRepo) add(v *model.Vacation) *model.Vacation {
	m.vacations[v.VacationID] = v
	return v
}

func (m *mockVacationRepo) Create(_ context.Context, v *model.Vacation) error {
	if v.VacationID == "" {
		m.seq++
		v.VacationID = fmt.Sprintf("vacation-%d", m.seq)
	}
	cp := *v
	m.vacations[v.VacationID] = &cp
	return nil
}

func (m *mockVacationRepo) GetByID(_ context.Context, id string) (*model.Vacation, error) {
	if v, ok := m.vacations[id]; ok {
		cp := *v
		cp.User = nil
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVacationRepo) ListByUser(_ context.Context, userID string) ([]model.Vacation, error) {
	var result []model.Vacation
	for _, v := range m.vacations {
		if v.UserID == userID {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (m *mockVacationRepo) List(_ context.Context, f *repository.VacationListFilters, offset, limit int) ([]model.Vacation, int64, error) {
	var result []model.Vacation
	for _, v := range m.vacations {
		if !inScope(m.users, v.UserID, f.CompanyID, f.Department) {
			continue
		}
		if f.UserID != "" && v.UserID != f.UserID {
			continue
		}
		if f.Status != nil && v.Status != *f.Status {
			continue
		}
		if f.Type != nil && v.Type != *f.Type {
			continue
		}
		if f.From != nil && v.EndDate.Before(*f.From) {
			continue
		}
		if f.To != nil && v.StartDate.After(*f.To) {
			continue
		}
		cp := *v
		cp.User = m.users.users[v.UserID]
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockVacationRepo) UpdateStatus(_ context.Context, v *model.Vacation, from model.VacationStatus) error {
	stored, ok := m.vacations[v.VacationID]
	if !ok || stored.Status != from {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = v.Status
	stored.RejectReason = v.RejectReason
	stored.ApprovedBy = v.ApprovedBy
	stored.ApprovedAt = v.ApprovedAt
	return nil
}

func (m *mockVacationRepo) Delete(_ context.Context, id string) error {
	delete(m.vacations, id)
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
