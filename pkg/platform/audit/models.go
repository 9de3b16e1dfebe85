package audit

import (
	"time"
)

// EventCategory classifies lifecycle events by their primary purpose.
// Sinks use it for routing and retention decisions.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: providers
	// entering or leaving the directory, suspensions and their revocation.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers exclusion decisions and blocked registrations.
	// These feed alerting pipelines.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity with no policy consequence.
	CategoryOperations EventCategory = "operations"
)

// EventType names an outbound lifecycle event.
type EventType string

const (
	// Provider events
	EventProviderSuspended   EventType = "provider_suspended"
	EventProviderUnsuspended EventType = "provider_unsuspended"
	EventProviderBlacklisted EventType = "provider_blacklisted"
	EventProviderDeleted     EventType = "provider_deleted"

	// Candidate events
	EventCandidateRegistered  EventType = "candidate_registered"
	EventCandidateApproved    EventType = "candidate_approved"
	EventCandidateRejected    EventType = "candidate_rejected"
	EventCandidateBlacklisted EventType = "candidate_blacklisted"
	EventRegistrationBlocked  EventType = "registration_blocked"

	// Blacklist administration
	EventBlacklistEntryAdded       EventType = "blacklist_entry_added"
	EventBlacklistEntryDeactivated EventType = "blacklist_entry_deactivated"
)

var eventCategories = map[EventType]EventCategory{
	EventProviderSuspended:   CategoryCompliance,
	EventProviderUnsuspended: CategoryCompliance,
	EventProviderDeleted:     CategoryCompliance,
	EventCandidateApproved:   CategoryCompliance,
	EventCandidateRejected:   CategoryCompliance,

	EventProviderBlacklisted:       CategorySecurity,
	EventCandidateBlacklisted:      CategorySecurity,
	EventRegistrationBlocked:       CategorySecurity,
	EventBlacklistEntryAdded:       CategorySecurity,
	EventBlacklistEntryDeactivated: CategorySecurity,

	EventCandidateRegistered: CategoryOperations,
}

// Category returns the EventCategory for this event type.
// Unknown types default to CategoryOperations.
func (e EventType) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Severity levels for routing. Critical events page someone.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is the transport-agnostic payload handed to an event sink.
type Event struct {
	Type        EventType         `json:"type"`
	Category    EventCategory     `json:"category"`
	Severity    Severity          `json:"severity"`
	Timestamp   time.Time         `json:"timestamp"`
	EntityType  string            `json:"entity_type"`
	EntityID    string            `json:"entity_id"`
	DisplayName string            `json:"display_name,omitempty"`
	Email       string            `json:"email,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	ActorID     string            `json:"actor_id,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// Normalize fills the type, category, default severity and timestamp when unset.
func (e Event) Normalize(eventType EventType, now time.Time) Event {
	e.Type = eventType
	if e.Category == "" {
		e.Category = eventType.Category()
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}
