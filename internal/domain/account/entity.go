package account

import (
	"strings"
	"time"
)

// Account is a registered storefront user.
type Account struct {
	ID           string
	FirstName    string
	LastName     string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	IsAdmin      bool
	ResetToken   string
	ResetExpires *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPendingReset reports whether a reset token is stored and still valid at now.
func (a *Account) HasPendingReset(now time.Time) bool {
	return a.ResetToken != "" && a.ResetExpires != nil && a.ResetExpires.After(now)
}

// DisplayName resolves the name shown for an account: an explicit name wins,
// otherwise the name parts are joined.
func DisplayName(name, firstName, lastName string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// Patch lists the fields an update touches. A nil field is left untouched; a
// pointer to "" clears an optional field.
type Patch struct {
	FirstName    *string
	LastName     *string
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
	IsAdmin      *bool
}

func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Name == nil && p.Email == nil &&
		p.Phone == nil && p.PasswordHash == nil && p.IsAdmin == nil
}

// Apply copies the set fields onto a.
func (p Patch) Apply(a *Account) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.IsAdmin != nil {
		a.IsAdmin = *p.IsAdmin
	}
}
