package models

import (
	"strings"
	"time"

	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	platformstrings "caregate/pkg/platform/strings"
)

// SuspensionKind distinguishes time-boxed suspensions from open-ended ones.
type SuspensionKind string

const (
	SuspensionTemporary  SuspensionKind = "temporary"
	SuspensionIndefinite SuspensionKind = "indefinite"
)

// SuspensionState tracks whether a suspension record is still in effect.
type SuspensionState string

const (
	SuspensionActive  SuspensionState = "active"
	SuspensionRevoked SuspensionState = "revoked"
)

// Severity grades a policy violation.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// Period is the window a suspension covers. End and Duration are nil for
// indefinite suspensions.
type Period struct {
	Start    time.Time      `json:"start"`
	End      *time.Time     `json:"end,omitempty"`
	Duration *time.Duration `json:"duration,omitempty"`
}

// Impact lists which capabilities a suspension removes.
type Impact struct {
	PatientAccess bool `json:"patient_access"`
	Scheduling    bool `json:"scheduling"`
	Prescribing   bool `json:"prescribing"`
	SystemAccess  bool `json:"system_access"`
}

// FullImpact removes every capability.
func FullImpact() Impact {
	return Impact{PatientAccess: true, Scheduling: true, Prescribing: true, SystemAccess: true}
}

// SuspensionDetails is the caller-supplied description of a new suspension.
type SuspensionDetails struct {
	Kind     SuspensionKind
	Severity Severity
	Reasons  []string
	Start    *time.Time
	Duration *time.Duration
	Impact   *Impact
	IssuedBy string
}

// Normalize validates d and fills defaults: kind from whether a duration was
// given, moderate severity, full impact, start at now.
func (d SuspensionDetails) Normalize(now time.Time) (SuspensionDetails, error) {
	d.Reasons = platformstrings.DedupeAndTrim(d.Reasons)
	if len(d.Reasons) == 0 {
		return d, dErrors.New(dErrors.CodeValidation, "at least one suspension reason is required")
	}
	if d.Kind == "" {
		d.Kind = SuspensionIndefinite
		if d.Duration != nil {
			d.Kind = SuspensionTemporary
		}
	}
	switch d.Kind {
	case SuspensionTemporary:
		if d.Duration == nil || *d.Duration <= 0 {
			return d, dErrors.New(dErrors.CodeValidation, "temporary suspension requires a positive duration")
		}
	case SuspensionIndefinite:
		d.Duration = nil
	default:
		return d, dErrors.New(dErrors.CodeValidation, "unknown suspension kind: "+string(d.Kind))
	}
	if d.Severity == "" {
		d.Severity = SeverityModerate
	}
	if !d.Severity.IsValid() {
		return d, dErrors.New(dErrors.CodeValidation, "unknown severity: "+string(d.Severity))
	}
	if d.Start == nil {
		d.Start = &now
	}
	if d.Impact == nil {
		impact := FullImpact()
		d.Impact = &impact
	}
	d.IssuedBy = strings.TrimSpace(d.IssuedBy)
	return d, nil
}

// SuspensionRecord is one entry in a provider's suspension ledger.
//
// Invariants:
//   - Sequence is 1-based and unique per provider; it equals the number of
//     records ever created for the provider at the moment of creation
//   - Reasons is non-empty
//   - Records are revoked, never deleted, except by the termination purge
//     or by retracting the latest record of a suspension that failed
type SuspensionRecord struct {
	ID         id.SuspensionID `json:"id"`
	ProviderID id.ProviderID   `json:"provider_id"`
	Sequence   int             `json:"sequence"`
	Kind       SuspensionKind  `json:"kind"`
	State      SuspensionState `json:"state"`
	Severity   Severity        `json:"severity"`
	Reasons    []string        `json:"reasons"`
	Period     Period          `json:"period"`
	Impact     Impact          `json:"impact"`
	IssuedBy   string          `json:"issued_by"`
	CreatedAt  time.Time       `json:"created_at"`
	RevokedAt  *time.Time      `json:"revoked_at,omitempty"`
}

// NewSuspensionRecord builds an active record from normalized details. The
// sequence is assigned by the ledger store.
func NewSuspensionRecord(providerID id.ProviderID, d SuspensionDetails, now time.Time) *SuspensionRecord {
	start := now
	if d.Start != nil {
		start = *d.Start
	}
	period := Period{Start: start}
	if d.Duration != nil {
		dur := *d.Duration
		end := start.Add(dur)
		period.Duration = &dur
		period.End = &end
	}
	impact := FullImpact()
	if d.Impact != nil {
		impact = *d.Impact
	}
	return &SuspensionRecord{
		ID:         id.NewSuspensionID(),
		ProviderID: providerID,
		Kind:       d.Kind,
		State:      SuspensionActive,
		Severity:   d.Severity,
		Reasons:    append([]string(nil), d.Reasons...),
		Period:     period,
		Impact:     impact,
		IssuedBy:   d.IssuedBy,
		CreatedAt:  now,
	}
}

func (r *SuspensionRecord) IsActive() bool {
	return r.State == SuspensionActive
}

// Revoke transitions an active record to revoked. Returns false if it was
// already revoked.
func (r *SuspensionRecord) Revoke(now time.Time) bool {
	if r.State != SuspensionActive {
		return false
	}
	r.State = SuspensionRevoked
	r.RevokedAt = &now
	return true
}
