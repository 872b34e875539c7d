// Package leave computes statutory annual-leave entitlement and balances.
//
// Everything here is pure: the reference date is always passed in as asOf,
// and only the HTTP boundary reads the wall clock. Hire dates are calendar
// dates; their year/month/day fields are compared against asOf's fields in
// asOf's own location.
package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"offio/backend/internal/model"
)

const (
	// DefaultBaseDays base grant when the company has no policy row
	DefaultBaseDays = 15
	// MaxAnnualDays hard ceiling on the computed entitlement
	MaxAnnualDays = 25
	// MaxFirstYearDays monthly accrual cap before the first anniversary
	MaxFirstYearDays = 11
	// BonusStartYears service length at which seniority bonus days start
	BonusStartYears = 3
)

// CalculationType how an entitlement was derived
type CalculationType string

const (
	CalculationAuto   CalculationType = "auto"
	CalculationManual CalculationType = "manual"
)

// Entitlement total annual leave for one year of service
type Entitlement struct {
	TotalDays      decimal.Decimal `json:"total_days"`
	Type           CalculationType `json:"calculation_type"`
	YearsOfService int             `json:"years_of_service"`
	Description    string          `json:"description"`
}

// Balance entitlement minus approved consumption
type Balance struct {
	Total          decimal.Decimal `json:"total"`
	Used           decimal.Decimal `json:"used"`
	Remaining      decimal.Decimal `json:"remaining"`
	Type           CalculationType `json:"calculation_type"`
	YearsOfService int             `json:"years_of_service"`
	Description    string          `json:"description"`
}

// YearsOfService whole years between hire and asOf. A year only counts once
// the anniversary month/day is reached. Absent or future hire dates yield 0.
func YearsOfService(hire *time.Time, asOf time.Time) int {
	if hire == nil {
		return 0
	}
	hy, hm, hd := hire.Date()
	ay, am, ad := asOf.Date()

	years := ay - hy
	if am < hm || (am == hm && ad < hd) {
		years--
	}
	return max(0, years)
}

// MonthsOfService whole months between hire and asOf, counting a month only
// once its day-of-month is reached. Never negative.
func MonthsOfService(hire *time.Time, asOf time.Time) int {
	if hire == nil {
		return 0
	}
	hy, hm, hd := hire.Date()
	ay, am, ad := asOf.Date()

	months := (ay-hy)*12 + int(am-hm)
	if ad < hd {
		months--
	}
	return max(0, months)
}

// Calculate derives the entitlement. A manual override always wins, then a
// missing hire date falls back to baseDays, then first-year monthly accrual,
// then baseDays plus the seniority bonus capped at MaxAnnualDays.
func Calculate(hire *time.Time, baseDays int, override *decimal.Decimal, asOf time.Time) Entitlement {
	if override != nil {
		return Entitlement{
			TotalDays:      *override,
			Type:           CalculationManual,
			YearsOfService: YearsOfService(hire, asOf),
			Description:    "수동 설정된 연차",
		}
	}

	if hire == nil {
		return Entitlement{
			TotalDays:      decimal.NewFromInt(int64(baseDays)),
			Type:           CalculationAuto,
			YearsOfService: 0,
			Description:    "기본 연차 (입사일 미등록)",
		}
	}

	years := YearsOfService(hire, asOf)
	if years < 1 {
		months := MonthsOfService(hire, asOf)
		return Entitlement{
			TotalDays:      decimal.NewFromInt(int64(min(months, MaxFirstYearDays))),
			Type:           CalculationAuto,
			YearsOfService: 0,
			Description:    fmt.Sprintf("입사 %d개월 (월 1일, 최대 %d일)", months, MaxFirstYearDays),
		}
	}

	total := baseDays
	if years >= BonusStartYears {
		total += (years - 1) / 2
	}
	total = min(total, MaxAnnualDays)

	return Entitlement{
		TotalDays:      decimal.NewFromInt(int64(total)),
		Type:           CalculationAuto,
		YearsOfService: years,
		Description:    fmt.Sprintf("근속 %d년 (기본 %d일 + 추가 %d일)", years, baseDays, total-baseDays),
	}
}

// UsedDays sums approved annual and half-day requests. Other types and
// non-approved requests never consume the balance.
func UsedDays(vacations []model.Vacation) decimal.Decimal {
	used := decimal.Zero
	for i := range vacations {
		v := &vacations[i]
		if v.Type.ConsumesAnnualLeave() && v.Status == model.VacationApproved {
			used = used.Add(v.Days)
		}
	}
	return used
}

// Remaining never reports a negative balance
func Remaining(total, used decimal.Decimal) decimal.Decimal {
	r := total.Sub(used)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ComputeBalance entitlement plus live consumption from the given requests
func ComputeBalance(hire *time.Time, baseDays int, override *decimal.Decimal, vacations []model.Vacation, asOf time.Time) Balance {
	ent := Calculate(hire, baseDays, override, asOf)
	used := UsedDays(vacations)
	return Balance{
		Total:          ent.TotalDays,
		Used:           used,
		Remaining:      Remaining(ent.TotalDays, used),
		Type:           ent.Type,
		YearsOfService: ent.YearsOfService,
		Description:    ent.Description,
	}
}

var halfDay = decimal.RequireFromString("0.5")

// RequestDays half-day requests are exactly 0.5; everything else counts the
// inclusive calendar-day span, minimum 1.
func RequestDays(t model.VacationType, start, end time.Time) decimal.Decimal {
	if t == model.VacationHalf {
		return halfDay
	}
	span := civilDays(end) - civilDays(start) + 1
	if span < 1 {
		span = 1
	}
	return decimal.NewFromInt(span)
}

// civilDays days since the Unix epoch of t's calendar date
func civilDays(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
