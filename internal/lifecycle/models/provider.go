package models

import (
	"fmt"
	"time"

	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
)

// ProviderState is the lifecycle state of a provider identity.
type ProviderState string

const (
	ProviderPending    ProviderState = "pending"
	ProviderActive     ProviderState = "active"
	ProviderSuspended  ProviderState = "suspended"
	ProviderTerminated ProviderState = "terminated"
)

// providerTransitions is the exhaustive transition table. Suspended to Suspended
// is an additional suspension on an already suspended provider. Terminated has
// no outgoing edges.
var providerTransitions = map[ProviderState][]ProviderState{
	ProviderPending:   {ProviderActive},
	ProviderActive:    {ProviderSuspended, ProviderTerminated},
	ProviderSuspended: {ProviderSuspended, ProviderActive, ProviderTerminated},
}

// IsValid reports whether s is a known state.
func (s ProviderState) IsValid() bool {
	switch s {
	case ProviderPending, ProviderActive, ProviderSuspended, ProviderTerminated:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition table allows s -> next.
func (s ProviderState) CanTransitionTo(next ProviderState) bool {
	for _, allowed := range providerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Provider is an approved doctor account owned by the provider directory.
//
// Invariants:
//   - Credentials.Email is non-empty and unique across providers
//   - State follows the transition table in CanTransitionTo
//   - A terminated provider is removed from the directory; the state value only
//     appears on the copy returned to callers
type Provider struct {
	ID           id.ProviderID `json:"id"`
	Name         string        `json:"name"`
	Credentials  CredentialSet `json:"credentials"`
	PasswordHash string        `json:"-"`
	State        ProviderState `json:"state"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewProviderFromCandidate materializes an Active provider from an approved candidate.
func NewProviderFromCandidate(c *Candidate, now time.Time) (*Provider, error) {
	if err := c.ValidateForApproval(); err != nil {
		return nil, err
	}
	p := &Provider{
		ID:           id.NewProviderID(),
		Name:         c.Name,
		Credentials:  c.Credentials.Normalized(),
		PasswordHash: c.PasswordHash,
		State:        ProviderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.transition(ProviderActive, now); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) IsActive() bool {
	return p.State == ProviderActive
}

func (p *Provider) IsSuspended() bool {
	return p.State == ProviderSuspended
}

// CanSuspend checks that the provider may receive another suspension.
func (p *Provider) CanSuspend() error {
	return p.checkTransition(ProviderSuspended)
}

// CanUnsuspend checks that the provider may be returned to active.
// An active provider is accepted and left unchanged by ApplyUnsuspension.
func (p *Provider) CanUnsuspend() error {
	if p.State == ProviderActive {
		return nil
	}
	return p.checkTransition(ProviderActive)
}

// CanTerminate checks that the provider may be terminated.
func (p *Provider) CanTerminate() error {
	return p.checkTransition(ProviderTerminated)
}

// ApplySuspension moves the provider to Suspended. Call CanSuspend first.
func (p *Provider) ApplySuspension(now time.Time) {
	p.State = ProviderSuspended
	p.UpdatedAt = now
}

// ApplyUnsuspension moves the provider to Active. Call CanUnsuspend first.
// Returns false when the provider was already active.
func (p *Provider) ApplyUnsuspension(now time.Time) bool {
	if p.State == ProviderActive {
		return false
	}
	p.State = ProviderActive
	p.UpdatedAt = now
	return true
}

// ApplyTermination marks the provider terminated. Call CanTerminate first.
func (p *Provider) ApplyTermination(now time.Time) {
	p.State = ProviderTerminated
	p.UpdatedAt = now
}

func (p *Provider) transition(next ProviderState, now time.Time) error {
	if err := p.checkTransition(next); err != nil {
		return err
	}
	p.State = next
	p.UpdatedAt = now
	return nil
}

func (p *Provider) checkTransition(next ProviderState) error {
	if !p.State.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("provider cannot transition from %s to %s", p.State, next))
	}
	return nil
}
