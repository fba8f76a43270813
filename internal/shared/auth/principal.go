// Package auth carries the authenticated caller and the capability checks
// applied at the transport boundary before any use case runs.
package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated is returned when an operation needs a caller and none was resolved.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller lacks the capability for an action.
	ErrForbidden = errors.New("action not allowed")
)

// Principal is the explicit acting user handed to every use case.
type Principal struct {
	UserID   string
	Username string
	Staff    bool
}

// Authenticated reports whether the principal identifies a user.
func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

// Capability names an action gated by role.
type Capability string

const (
	AdoptOnBehalf    Capability = "adoptions.adopt_on_behalf"
	ModeratePets     Capability = "pets.moderate"
	ManageCategories Capability = "categories.manage"
	ModerateReviews  Capability = "reviews.moderate"
	ViewAllPayments  Capability = "payments.view_all"
	ViewUsers        Capability = "users.view"
)

var staffOnly = map[Capability]struct{}{
	AdoptOnBehalf:    {},
	ModeratePets:     {},
	ManageCategories: {},
	ModerateReviews:  {},
	ViewAllPayments:  {},
	ViewUsers:        {},
}

// Can reports whether the principal holds capability c.
func (p Principal) Can(c Capability) bool {
	if !p.Authenticated() {
		return false
	}
	if _, ok := staffOnly[c]; ok {
		return p.Staff
	}
	return true
}

// Require fails with ErrUnauthenticated for anonymous callers.
func Require(p Principal) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// Authorize fails unless the principal is authenticated and holds c.
func Authorize(p Principal, c Capability) error {
	if err := Require(p); err != nil {
		return err
	}
	if !p.Can(c) {
		return fmt.Errorf("%w: missing capability %s", ErrForbidden, c)
	}
	return nil
}
