package models

import (
	"strings"
	"time"

	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
)

// Candidate is a pending doctor application awaiting approval or rejection.
// Rejection history lives in the rejection counter keyed by email, not here,
// so it survives the candidate record being removed.
type Candidate struct {
	ID             id.CandidateID `json:"id"`
	Name           string         `json:"name"`
	Credentials    CredentialSet  `json:"credentials"`
	PasswordHash   string         `json:"-"`
	Specialization string         `json:"specialization,omitempty"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

// NewCandidate builds a candidate with normalized credentials.
func NewCandidate(name string, creds CredentialSet, passwordHash, specialization string, now time.Time) *Candidate {
	return &Candidate{
		ID:             id.NewCandidateID(),
		Name:           strings.TrimSpace(name),
		Credentials:    creds.Normalized(),
		PasswordHash:   passwordHash,
		Specialization: strings.TrimSpace(specialization),
		SubmittedAt:    now,
	}
}

// ValidateForApproval checks the fields a provider account cannot exist without.
func (c *Candidate) ValidateForApproval() error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if c.Credentials.Email == "" {
		missing = append(missing, "email")
	}
	if c.PasswordHash == "" {
		missing = append(missing, "password")
	}
	if c.Credentials.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) == 0 {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", ")).
		WithDetails(map[string]string{"fields": strings.Join(missing, ",")})
}
