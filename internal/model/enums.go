package model

// ── Role ──

// Role company member role
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWorker:
		return true
	}
	return false
}

// IsReviewer admins and managers may review sessions and vacations
func (r Role) IsReviewer() bool {
	return r == RoleAdmin || r == RoleManager
}

// ── Plan ──

// Plan subscription tier
type Plan string

const (
	PlanLite       Plan = "lite"
	PlanStandard   Plan = "standard"
	PlanEnterprise Plan = "enterprise"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanLite, PlanStandard, PlanEnterprise:
		return true
	}
	return false
}

// ── SessionStatus ──

// SessionStatus work session lifecycle state
type SessionStatus string

const (
	SessionRecording SessionStatus = "recording"
	SessionEditing   SessionStatus = "editing"
	SessionSubmitted SessionStatus = "submitted"
	SessionApproved  SessionStatus = "approved"
	SessionRejected  SessionStatus = "rejected"
)

// sessionTransitions lists every legal edge. A rejected session goes back
// to editing when its owner edits it again.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionRecording: {SessionEditing},
	SessionEditing:   {SessionSubmitted, SessionApproved},
	SessionSubmitted: {SessionApproved, SessionRejected},
	SessionApproved:  nil,
	SessionRejected:  {SessionEditing},
}

func (s SessionStatus) Valid() bool {
	_, ok := sessionTransitions[s]
	return ok
}

// CanTransition reports whether s may move to next
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	for _, n := range sessionTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Editable owner edits are allowed while editing, and a rejected session
// reopens for edits.
func (s SessionStatus) Editable() bool {
	return s == SessionEditing || s == SessionRejected
}

// ── VacationType ──

// VacationType kind of leave
type VacationType string

const (
	VacationAnnual  VacationType = "annual"
	VacationHalf    VacationType = "half"
	VacationSick    VacationType = "sick"
	VacationSpecial VacationType = "special"
	VacationOther   VacationType = "other"
)

func (t VacationType) Valid() bool {
	switch t {
	case VacationAnnual, VacationHalf, VacationSick, VacationSpecial, VacationOther:
		return true
	}
	return false
}

// ConsumesAnnualLeave only annual and half-day leave draw on the balance
func (t VacationType) ConsumesAnnualLeave() bool {
	return t == VacationAnnual || t == VacationHalf
}

// Label display name used in reports and calendar feeds
func (t VacationType) Label() string {
	switch t {
	case VacationAnnual:
		return "연차"
	case VacationHalf:
		return "반차"
	case VacationSick:
		return "병가"
	case VacationSpecial:
		return "경조사"
	default:
		return "기타"
	}
}

// ── VacationStatus ──

// VacationStatus leave request state
type VacationStatus string

const (
	VacationPending  VacationStatus = "pending"
	VacationApproved VacationStatus = "approved"
	VacationRejected VacationStatus = "rejected"
)

var vacationTransitions = map[VacationStatus][]VacationStatus{
	VacationPending:  {VacationApproved, VacationRejected},
	VacationApproved: nil,
	VacationRejected: nil,
}

func (s VacationStatus) Valid() bool {
	_, ok := vacationTransitions[s]
	return ok
}

func (s VacationStatus) CanTransition(next VacationStatus) bool {
	for _, n := range vacationTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Label display name used in reports
func (s VacationStatus) Label() string {
	switch s {
	case VacationPending:
		return "대기"
	case VacationApproved:
		return "승인"
	default:
		return "반려"
	}
}
