// Package authz holds the owner and reviewer checks shared by the session
// and vacation services.
package authz

import (
	"offio/backend/internal/model"
	pkgerrors "offio/backend/pkg/errors"
)

var (
	ErrUnauthorized = pkgerrors.New(pkgerrors.KindUnauthorized, "authentication required")
	ErrNotOwner     = pkgerrors.New(pkgerrors.KindForbidden, "only the owner may do this")
	ErrNotReviewer  = pkgerrors.New(pkgerrors.KindForbidden, "reviewer role required")
	ErrOtherTeam    = pkgerrors.New(pkgerrors.KindForbidden, "managers may only act on their own department")
)

// Principal authenticated caller
type Principal struct {
	UserID     string
	CompanyID  string
	Role       model.Role
	Department string
}

// Subject owner of the entity being acted on
type Subject struct {
	UserID     string
	CompanyID  string
	Department string
}

// SubjectOf builds a Subject from a user row
func SubjectOf(u *model.User) Subject {
	return Subject{UserID: u.UserID, CompanyID: u.CompanyID, Department: u.DepartmentName()}
}

// SameCompany entities outside the caller's company are reported as missing
func SameCompany(p Principal, s Subject) bool {
	return p.CompanyID != "" && p.CompanyID == s.CompanyID
}

// AuthorizeOwner caller must be the subject
func AuthorizeOwner(p Principal, s Subject) error {
	if p.UserID == "" {
		return ErrUnauthorized
	}
	if p.UserID != s.UserID {
		return ErrNotOwner
	}
	return nil
}

// AuthorizeReview admins review anyone in their company; managers only
// members of their own department.
func AuthorizeReview(p Principal, s Subject) error {
	if p.UserID == "" {
		return ErrUnauthorized
	}
	switch p.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleManager:
		if p.Department == "" || p.Department != s.Department {
			return ErrOtherTeam
		}
		return nil
	default:
		return ErrNotReviewer
	}
}

// AuthorizeActFor lets callers act for themselves, and reviewers act for
// subjects AuthorizeReview admits.
func AuthorizeActFor(p Principal, s Subject) error {
	if p.UserID != "" && p.UserID == s.UserID {
		return nil
	}
	return AuthorizeReview(p, s)
}

// Scope query filter restricting reviewer listings
type Scope struct {
	CompanyID string
	// Department nil means the whole company
	Department *string
	// UserID set when the caller may only see their own rows
	UserID string
}

// ReviewScope rows a caller may list as a reviewer; workers see only their own
func ReviewScope(p Principal) Scope {
	switch p.Role {
	case model.RoleAdmin:
		return Scope{CompanyID: p.CompanyID}
	case model.RoleManager:
		dept := p.Department
		return Scope{CompanyID: p.CompanyID, Department: &dept}
	default:
		return Scope{CompanyID: p.CompanyID, UserID: p.UserID}
	}
}

// OwnScope the caller's own rows
func OwnScope(p Principal) Scope {
	return Scope{CompanyID: p.CompanyID, UserID: p.UserID}
}
