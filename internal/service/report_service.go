package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
)

// ── report errors ──

var (
	ErrUnknownReport      = pkgerrors.New(pkgerrors.KindValidation, "unknown report type")
	ErrReportGenerateFail = pkgerrors.New(pkgerrors.KindInternal, "failed to generate the report file")
)

// ReportService spreadsheet exports and the vacation calendar feed
//
// Exports are returned as a buffer; the handler sets the download headers.
// Managers only ever export their own department.
type ReportService interface {
	Export(ctx context.Context, p authz.Principal, req *dto.ReportExportRequest) (*bytes.Buffer, string, error)
	VacationCalendar(ctx context.Context, p authz.Principal, req *dto.VacationCalendarRequest) ([]byte, error)
}

type reportService struct {
	*environment
	leave LeaveService
}

// NewReportService creates ReportService
func NewReportService(env *environment, leaveSvc LeaveService) ReportService {
	return &reportService{environment: env, leave: leaveSvc}
}

// sheet a single-table worksheet
type sheet struct {
	name   string
	title  string
	header []string
	widths []float64
	rows   [][]interface{}
}

// ════════════════════════════════════════════════════════════
// Export
// ════════════════════════════════════════════════════════════

func (s *reportService) Export(ctx context.Context, p authz.Principal, req *dto.ReportExportRequest) (*bytes.Buffer, string, error) {
	if !p.Role.IsReviewer() {
		return nil, "", authz.ErrNotReviewer
	}
	scope, err := reportScope(p, req.Department)
	if err != nil {
		return nil, "", err
	}
	from, err := dto.ParseOptionalDate(req.From)
	if err != nil {
		return nil, "", ErrInvalidDate
	}
	to, err := dto.ParseOptionalDate(req.To)
	if err != nil {
		return nil, "", ErrInvalidDate
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, "", ErrInvalidPeriod
	}

	var sh *sheet
	switch req.Type {
	case dto.ReportWorkSessions:
		sh, err = s.workSessionSheet(ctx, scope, from, to)
	case dto.ReportVacations:
		sh, err = s.vacationSheet(ctx, scope, from, to)
	case dto.ReportEmployees:
		sh, err = s.employeeSheet(ctx, scope)
	case dto.ReportLeaveBalances:
		sh, err = s.leaveBalanceSheet(ctx, scope)
	default:
		return nil, "", ErrUnknownReport
	}
	if err != nil {
		s.logger.Error("load report rows failed", zap.String("type", req.Type), zap.Error(err))
		return nil, "", err
	}

	buf, err := writeWorkbook(sh)
	if err != nil {
		s.logger.Error("write xlsx failed", zap.String("type", req.Type), zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}

	filename := fmt.Sprintf("%s_%s.xlsx", req.Type, s.today().Format("20060102"))
	return buf, filename, nil
}

// reportScope admins may narrow to one department; managers are pinned to theirs
func reportScope(p authz.Principal, department string) (authz.Scope, error) {
	scope := authz.ReviewScope(p)
	if department == "" {
		return scope, nil
	}
	if scope.Department != nil && *scope.Department != department {
		return authz.Scope{}, authz.ErrOtherTeam
	}
	scope.Department = &department
	return scope, nil
}

func (s *reportService) workSessionSheet(ctx context.Context, scope authz.Scope, from, to *time.Time) (*sheet, error) {
	sessions, _, err := s.repo.Session.List(ctx, &repository.SessionListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		UserID:     scope.UserID,
		From:       from,
		To:         to,
	}, 0, 0)
	if err != nil {
		return nil, err
	}

	sh := &sheet{
		name:   "Work Sessions",
		title:  "근무 기록",
		header: []string{"날짜", "이름", "부서", "상태", "시작", "종료", "근무 시간", "활동 시간", "메모"},
		widths: []float64{12, 14, 14, 10, 8, 8, 10, 10, 40},
	}
	for _, ws := range sessions {
		name, dept := "", ""
		if ws.User != nil {
			name, dept = ws.User.Name, ws.User.DepartmentName()
		}
		end := "-"
		if ws.EndTime != nil {
			end = ws.EndTime.In(s.loc).Format("15:04")
		}
		memo := ""
		if ws.Memo != nil {
			memo = *ws.Memo
		}
		sh.rows = append(sh.rows, []interface{}{
			dto.FormatDate(ws.Date),
			name,
			dept,
			string(ws.Status),
			ws.StartTime.In(s.loc).Format("15:04"),
			end,
			formatDuration(ws.TotalWorkSeconds),
			formatDuration(ws.TotalActiveSeconds),
			memo,
		})
	}
	return sh, nil
}

func (s *reportService) vacationSheet(ctx context.Context, scope authz.Scope, from, to *time.Time) (*sheet, error) {
	vacations, _, err := s.repo.Vacation.List(ctx, &repository.VacationListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		UserID:     scope.UserID,
		From:       from,
		To:         to,
	}, 0, 0)
	if err != nil {
		return nil, err
	}

	sh := &sheet{
		name:   "Vacations",
		title:  "휴가 내역",
		header: []string{"이름", "부서", "유형", "시작일", "종료일", "일수", "상태", "사유"},
		widths: []float64{14, 14, 8, 12, 12, 6, 8, 40},
	}
	for _, v := range vacations {
		name, dept := "", ""
		if v.User != nil {
			name, dept = v.User.Name, v.User.DepartmentName()
		}
		reason := ""
		if v.Reason != nil {
			reason = *v.Reason
		}
		days, _ := v.Days.Float64()
		sh.rows = append(sh.rows, []interface{}{
			name,
			dept,
			v.Type.Label(),
			dto.FormatDate(v.StartDate),
			dto.FormatDate(v.EndDate),
			days,
			v.Status.Label(),
			reason,
		})
	}
	return sh, nil
}

func (s *reportService) employeeSheet(ctx context.Context, scope authz.Scope) (*sheet, error) {
	users, _, err := s.repo.User.List(ctx, &repository.UserListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
	}, 0, 0)
	if err != nil {
		return nil, err
	}

	sh := &sheet{
		name:   "Employees",
		title:  "구성원",
		header: []string{"이름", "이메일", "부서", "역할", "입사일", "상태"},
		widths: []float64{14, 28, 14, 10, 12, 8},
	}
	for _, u := range users {
		hire := ""
		if u.HireDate != nil {
			hire = dto.FormatDate(*u.HireDate)
		}
		status := "재직"
		if !u.IsActive {
			status = "비활성"
		}
		sh.rows = append(sh.rows, []interface{}{u.Name, u.Email, u.DepartmentName(), string(u.Role), hire, status})
	}
	return sh, nil
}

func (s *reportService) leaveBalanceSheet(ctx context.Context, scope authz.Scope) (*sheet, error) {
	balances, err := s.leave.ListBalances(ctx, scope)
	if err != nil {
		return nil, err
	}

	sh := &sheet{
		name:   "Leave Balances",
		title:  "연차 현황",
		header: []string{"이름", "입사일", "근속 연수", "총 연차", "사용", "잔여", "산정 방식", "설명"},
		widths: []float64{14, 12, 8, 8, 8, 8, 10, 36},
	}
	for _, b := range balances {
		hire := ""
		if b.HireDate != nil {
			hire = *b.HireDate
		}
		total, _ := b.Total.Float64()
		used, _ := b.Used.Float64()
		remaining, _ := b.Remaining.Float64()
		sh.rows = append(sh.rows, []interface{}{
			b.UserName, hire, b.YearsOfService, total, used, remaining, string(b.Type), b.Description,
		})
	}
	return sh, nil
}

func writeWorkbook(sh *sheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sh.name)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, w := range sh.widths {
		col := colName(i)
		f.SetColWidth(sh.name, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sh.name, "A1", sh.title)
	f.MergeCell(sh.name, "A1", cell(colName(len(sh.header)-1), 1))
	f.SetCellStyle(sh.name, "A1", "A1", headerStyle)

	for i, h := range sh.header {
		f.SetCellValue(sh.name, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sh.name, "A2", cell(colName(len(sh.header)-1), 2), headerStyle)

	for r, row := range sh.rows {
		for c, v := range row {
			f.SetCellValue(sh.name, cell(colName(c), r+3), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ════════════════════════════════════════════════════════════
// VacationCalendar
// ════════════════════════════════════════════════════════════

// VacationCalendar approved requests as all-day iCalendar events. Reviewers
// get their team, workers their own requests.
func (s *reportService) VacationCalendar(ctx context.Context, p authz.Principal, req *dto.VacationCalendarRequest) ([]byte, error) {
	scope, err := reportScope(p, req.Department)
	if err != nil {
		return nil, err
	}
	from, err := dto.ParseOptionalDate(req.From)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := dto.ParseOptionalDate(req.To)
	if err != nil {
		return nil, ErrInvalidDate
	}

	approved := model.VacationApproved
	vacations, _, err := s.repo.Vacation.List(ctx, &repository.VacationListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		UserID:     scope.UserID,
		Status:     &approved,
		From:       from,
		To:         to,
	}, 0, 0)
	if err != nil {
		s.logger.Error("load calendar vacations failed", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//offio//vacations//KO")
	cal.SetXWRCalName("휴가 일정")

	stamp := s.clock().UTC()
	for _, v := range vacations {
		event := cal.AddEvent(v.VacationID + "@offio")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(v.StartDate)
		// DTEND is exclusive for all-day events
		event.SetAllDayEndAt(v.EndDate.AddDate(0, 0, 1))
		event.SetSummary(vacationSummary(&v))
		if v.Reason != nil {
			event.SetDescription(*v.Reason)
		}
	}

	return []byte(cal.Serialize()), nil
}

func vacationSummary(v *model.Vacation) string {
	name := v.UserID
	if v.User != nil {
		name = v.User.Name
	}
	return fmt.Sprintf("%s %s (%s일)", name, v.Type.Label(), v.Days.String())
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// formatDuration seconds as H:MM
func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/3600, seconds%3600/60)
}
