package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Status represents the moderation and adoption lifecycle of a listing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusAdopted   Status = "adopted"
	StatusWithdrawn Status = "withdrawn"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusAdopted, StatusWithdrawn, StatusSuspended:
		return true
	}
	return false
}

// Visibility controls whether a listing shows up in the public catalog.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

var (
	ErrEmptyName         = errors.New("pet name is required")
	ErrNegativeFee       = errors.New("fee cannot be negative")
	ErrFeePrecision      = errors.New("fee supports at most two decimal places")
	ErrNegativeAge       = errors.New("age cannot be negative")
	ErrInvalidStatus     = errors.New("unknown pet status")
	ErrInvalidVisibility = errors.New("unknown pet visibility")
	ErrEmptyOwner        = errors.New("pet owner is required")
	// ErrAlreadyAdopted is returned for any transition out of adopted, and for a second adoption.
	ErrAlreadyAdopted = errors.New("pet already adopted")
	// ErrNotAdoptable is returned when the listing is not approved and public.
	ErrNotAdoptable = errors.New("pet is not available for adoption")
	// ErrStatusNotAllowed is returned when the actor may not move the listing to the requested status.
	ErrStatusNotAllowed = errors.New("status change not allowed")
)

// Pet is the listing aggregate managed by the pets bounded context.
type Pet struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Breed       string
	Age         int
	CategoryID  string
	Fee         decimal.Decimal
	Status      Status
	Visibility  Visibility
	AdoptedBy   string
	PhotoURLs   []string
}

// NewPet validates the invariants and builds a pending, private listing.
func NewPet(id, ownerID, name string, fee decimal.Decimal) (*Pet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrEmptyOwner
	}
	p := &Pet{ID: id, OwnerID: ownerID, Status: StatusPending, Visibility: VisibilityPrivate}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.SetFee(fee); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename mutates the pet name ensuring the invariant.
func (p *Pet) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// SetFee stores a non-negative fee with cent precision.
func (p *Pet) SetFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return ErrNegativeFee
	}
	if fee.Exponent() < -2 && !fee.Equal(fee.Round(2)) {
		return ErrFeePrecision
	}
	p.Fee = fee.Round(2)
	return nil
}

func (p *Pet) SetAge(age int) error {
	if age < 0 {
		return ErrNegativeAge
	}
	p.Age = age
	return nil
}

func (p *Pet) Describe(description, breed string) {
	p.Description = strings.TrimSpace(description)
	p.Breed = strings.TrimSpace(breed)
}

func (p *Pet) SetCategory(categoryID string) {
	p.CategoryID = strings.TrimSpace(categoryID)
}

func (p *Pet) SetVisibility(v Visibility) error {
	if !v.Valid() {
		return ErrInvalidVisibility
	}
	p.Visibility = v
	return nil
}

// ReplacePhotos swaps the photo set, dropping blank entries.
func (p *Pet) ReplacePhotos(urls []string) {
	photos := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			photos = append(photos, u)
		}
	}
	p.PhotoURLs = photos
}

// ChangeStatus applies a manual status change. Owners may withdraw or resubmit;
// moderators may also approve or suspend. Nobody may enter or leave adopted here.
func (p *Pet) ChangeStatus(to Status, moderator bool) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if p.Status == StatusAdopted {
		return ErrAlreadyAdopted
	}
	switch to {
	case StatusAdopted:
		return ErrStatusNotAllowed
	case StatusApproved, StatusSuspended:
		if !moderator {
			return ErrStatusNotAllowed
		}
	}
	p.Status = to
	return nil
}

// Adoptable reports why the pet cannot be adopted, or nil when it can.
func (p *Pet) Adoptable() error {
	if p.Status == StatusAdopted {
		return ErrAlreadyAdopted
	}
	if p.Status != StatusApproved || p.Visibility != VisibilityPublic {
		return ErrNotAdoptable
	}
	return nil
}

// MarkAdopted performs the one-way transition into adopted.
func (p *Pet) MarkAdopted(adopterID string) error {
	if err := p.Adoptable(); err != nil {
		return err
	}
	p.Status = StatusAdopted
	p.AdoptedBy = adopterID
	return nil
}

// Listed reports whether the pet belongs in the public catalog.
func (p *Pet) Listed() bool {
	return p.Status == StatusApproved && p.Visibility == VisibilityPublic
}

// VisibleTo reports whether userID may read the listing.
func (p *Pet) VisibleTo(userID string, staff bool) bool {
	if p.Listed() || staff {
		return true
	}
	return userID != "" && userID == p.OwnerID
}

// ManageableBy reports whether userID may edit or delete the listing.
func (p *Pet) ManageableBy(userID string, staff bool) bool {
	return staff || (userID != "" && userID == p.OwnerID)
}

// Clone returns a deep copy.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	clone := *p
	if p.PhotoURLs != nil {
		clone.PhotoURLs = append([]string{}, p.PhotoURLs...)
	}
	return &clone
}
