package models

import (
	"slices"
	"strings"

	platformstrings "caregate/pkg/platform/strings"
)

// CredentialSet is the identifying fingerprint shared by providers, candidates
// and blacklist entries.
//
// Invariants:
//   - Email is trimmed and lower-cased
//   - Phone is trimmed
//   - Licenses are trimmed, non-empty and unique, in declaration order
//   - License numbers are otherwise compared as exact strings
//
// Empty fields never match anything.
type CredentialSet struct {
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Licenses []string `json:"licenses,omitempty"`
}

// NewCredentialSet normalizes raw input into a CredentialSet.
func NewCredentialSet(email, phone string, licenses []string) CredentialSet {
	return CredentialSet{
		Email:    NormalizeEmail(email),
		Phone:    strings.TrimSpace(phone),
		Licenses: platformstrings.DedupeAndTrim(licenses),
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalized returns a normalized copy of c.
func (c CredentialSet) Normalized() CredentialSet {
	return NewCredentialSet(c.Email, c.Phone, c.Licenses)
}

// IsEmpty reports whether no field is populated.
func (c CredentialSet) IsEmpty() bool {
	return c.Email == "" && c.Phone == "" && len(c.Licenses) == 0
}

// HasLicense reports whether license is one of c's licenses.
func (c CredentialSet) HasLicense(license string) bool {
	return license != "" && slices.Contains(c.Licenses, license)
}

// Collision describes which field of two credential sets matched.
type Collision struct {
	Field   string
	License string
}

// Field names reported by Collide and in conflict details.
const (
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldLicense = "license"
)

// Collide reports whether c and other share an email, a phone or any license.
// Email is checked first, then phone, then licenses in c's order.
func (c CredentialSet) Collide(other CredentialSet) (Collision, bool) {
	if c.Email != "" && c.Email == other.Email {
		return Collision{Field: FieldEmail}, true
	}
	if c.Phone != "" && c.Phone == other.Phone {
		return Collision{Field: FieldPhone}, true
	}
	for _, lic := range c.Licenses {
		if other.HasLicense(lic) {
			return Collision{Field: FieldLicense, License: lic}, true
		}
	}
	return Collision{}, false
}
