package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrUnknownSubCategory    = errors.New("unknown sub-category")
	ErrCategoryFull          = errors.New("category full")
	ErrCategoryLocked        = errors.New("category locked")
	ErrAlreadyClaimed        = errors.New("category already claimed by user")
	ErrNoPendingReservation  = errors.New("no reservation awaiting a sub-category")
	ErrNoEligibleReservation = errors.New("no reservation eligible for items")
	ErrSubCategoryTaken      = errors.New("sub-category already taken")
	ErrStandardExclusive     = errors.New("standard and named sub-categories exclude each other")
	ErrAllSubCategoriesFull  = errors.New("all sub-categories taken")
	ErrTooManyItems          = errors.New("too many items for reservation")
	ErrInvalidItemCount      = errors.New("item count does not fit remaining slots")
	ErrNotOwner              = errors.New("reservation belongs to another user")
	ErrNothingToClear        = errors.New("reservation has no items to clear")
	ErrUserBanned            = errors.New("user is banned")
	ErrInvalidID             = errors.New("invalid id")
)

// RoleRequiredError is returned when the claimant lacks the capability tag
// the category requires.
type RoleRequiredError struct {
	Role string
}

func (e RoleRequiredError) Error() string {
	return fmt.Sprintf("role %q required", e.Role)
}

// IncompleteReservationError is returned when an existing reservation with
// unmet mandatory steps blocks a new claim.
type IncompleteReservationError struct {
	CategoryKey string
}

func (e IncompleteReservationError) Error() string {
	return fmt.Sprintf("incomplete reservation in %q blocks new claims", e.CategoryKey)
}

// DuplicateItemError is returned when an item is already held by any
// reservation in the round. Mine distinguishes the caller's own holdings.
type DuplicateItemError struct {
	Item string
	Mine bool
}

func (e DuplicateItemError) Error() string {
	if e.Mine {
		return fmt.Sprintf("item %q already reserved by you", e.Item)
	}
	return fmt.Sprintf("item %q already reserved", e.Item)
}
