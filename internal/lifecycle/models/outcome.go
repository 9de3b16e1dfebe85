package models

import (
	"caregate/pkg/platform/audit"
)

// Effect names one side effect an orchestrator operation performed.
type Effect string

const (
	EffectCandidateCreated      Effect = "candidate_created"
	EffectCandidateRemoved      Effect = "candidate_removed"
	EffectProviderCreated       Effect = "provider_created"
	EffectProviderStateChanged  Effect = "provider_state_changed"
	EffectProviderRemoved       Effect = "provider_removed"
	EffectSuspensionRecorded    Effect = "suspension_recorded"
	EffectSuspensionsRevoked    Effect = "suspensions_revoked"
	EffectSuspensionsPurged     Effect = "suspensions_purged"
	EffectHolderSuspended       Effect = "holder_suspended"
	EffectBlacklistEntryCreated Effect = "blacklist_entry_created"
	EffectBlacklistEntryRemoved Effect = "blacklist_entry_removed"
	EffectRejectionCounted      Effect = "rejection_counted"
)

// Outcome enumerates everything an orchestrator operation did, so callers can
// assert on the full cascade. Blocked operations still return an Outcome when
// they had side effects (an auto-suspended license holder, queued events).
type Outcome struct {
	Provider       *Provider         `json:"provider,omitempty"`
	Candidate      *Candidate        `json:"candidate,omitempty"`
	Suspension     *SuspensionRecord `json:"suspension,omitempty"`
	BlacklistEntry *BlacklistEntry   `json:"blacklist_entry,omitempty"`
	Conflict       *Conflict         `json:"conflict,omitempty"`
	Terminated     bool              `json:"terminated"`
	RevokedCount   int               `json:"revoked_count,omitempty"`
	PurgedCount    int               `json:"purged_count,omitempty"`
	RejectionCount int               `json:"rejection_count,omitempty"`
	Effects        []Effect          `json:"effects"`
	Events         []audit.EventType `json:"events"`
}

// NewOutcome returns an empty outcome with non-nil slices.
func NewOutcome() *Outcome {
	return &Outcome{Effects: []Effect{}, Events: []audit.EventType{}}
}

// Record appends an effect.
func (o *Outcome) Record(e Effect) {
	o.Effects = append(o.Effects, e)
}

// Queue appends an event type handed to the sink.
func (o *Outcome) Queue(t audit.EventType) {
	o.Events = append(o.Events, t)
}

// Has reports whether effect e was recorded.
func (o *Outcome) Has(e Effect) bool {
	for _, got := range o.Effects {
		if got == e {
			return true
		}
	}
	return false
}

// Emitted reports whether event type t was queued.
func (o *Outcome) Emitted(t audit.EventType) bool {
	for _, got := range o.Events {
		if got == t {
			return true
		}
	}
	return false
}
