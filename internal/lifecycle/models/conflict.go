package models

import (
	"strconv"
)

// Conflict is a collision between declared credentials and an existing identity.
// License is set only for license collisions.
type Conflict struct {
	EntityType  EntityType    `json:"entity_type"`
	EntityID    string        `json:"entity_id"`
	DisplayName string        `json:"display_name,omitempty"`
	Field       string        `json:"field"`
	License     string        `json:"license,omitempty"`
	HolderState ProviderState `json:"holder_state,omitempty"`
}

// IsProvider reports whether the colliding identity is a provider.
func (c *Conflict) IsProvider() bool {
	return c.EntityType == EntityProvider
}

// Details flattens the conflict into error details for transport.
func (c *Conflict) Details() map[string]string {
	d := map[string]string{
		"field":       c.Field,
		"entity_type": string(c.EntityType),
		"entity_id":   c.EntityID,
	}
	if c.DisplayName != "" {
		d["entity_name"] = c.DisplayName
	}
	if c.License != "" {
		d["license"] = c.License
	}
	return d
}

// BlacklistDetails flattens a blacklist match into error details.
func BlacklistDetails(e *BlacklistEntry, hit Collision) map[string]string {
	d := map[string]string{
		"blacklist_reason": string(e.Reason),
		"blacklist_id":     e.ID.String(),
		"field":            hit.Field,
		"entity_type":      string(e.Origin.EntityType),
	}
	if e.Origin.DisplayName != "" {
		d["entity_name"] = e.Origin.DisplayName
	}
	if hit.License != "" {
		d["license"] = hit.License
	}
	if e.ExpiresAt != nil {
		d["expires_at"] = e.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return d
}

// HolderSuspendedDetail marks conflict details with whether the holder was suspended.
func HolderSuspendedDetail(details map[string]string, suspended bool) map[string]string {
	details["holder_suspended"] = strconv.FormatBool(suspended)
	return details
}
