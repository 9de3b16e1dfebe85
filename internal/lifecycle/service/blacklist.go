package service

import (
	"context"
	"time"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/audit"
	"caregate/pkg/requestcontext"
)

// AddBlacklistEntryRequest is a manual exclusion. ExpiresAt makes it temporary.
type AddBlacklistEntryRequest struct {
	Email     string
	Phone     string
	Licenses  []string
	Note      string
	ExpiresAt *time.Time
}

// CheckBlacklist reports whether creds collide with an in-force entry.
func (s *Service) CheckBlacklist(ctx context.Context, creds models.CredentialSet) (bool, *models.BlacklistEntry, error) {
	entry, err := s.blacklist.IsBlacklisted(ctx, creds)
	if err != nil {
		return false, nil, err
	}
	return entry != nil, entry, nil
}

// AddBlacklistEntry creates a manual entry attributed to the acting admin.
func (s *Service) AddBlacklistEntry(ctx context.Context, req AddBlacklistEntryRequest) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "AddBlacklistEntry")
	defer end(&err)

	c := newCascade()
	actor := requestcontext.ActorID(ctx)
	entry, err := models.NewBlacklistEntry(
		models.NewCredentialSet(req.Email, req.Phone, req.Licenses),
		models.ReasonManual,
		models.Origin{EntityType: models.EntityAdmin, EntityID: actor, DisplayName: req.Note},
		req.ExpiresAt, actor, requestcontext.Now(ctx),
	)
	if err != nil {
		return c.outcome, err
	}
	if err := s.blacklist.Add(ctx, entry); err != nil {
		return c.outcome, err
	}
	c.outcome.BlacklistEntry = entry
	c.record(models.EffectBlacklistEntryCreated)

	details := map[string]string{"blacklist_id": entry.ID.String()}
	if entry.ExpiresAt != nil {
		details["expires_at"] = entry.ExpiresAt.UTC().Format(time.RFC3339)
	}
	c.queue(audit.EventBlacklistEntryAdded, audit.SeverityWarning, details,
		"entity_type", string(models.EntityAdmin),
		"entity_id", actor,
		"email", entry.Fingerprint.Email,
		"reason", req.Note,
	)
	s.flush(ctx, c)
	return c.outcome, nil
}

// DeactivateBlacklistEntry soft-deletes an entry, or removes it when
// permanent. Repeating the call is a no-op.
func (s *Service) DeactivateBlacklistEntry(ctx context.Context, entryID id.BlacklistEntryID, permanent bool) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "DeactivateBlacklistEntry")
	defer end(&err)

	c := newCascade()
	changed, err := s.blacklist.Deactivate(ctx, entryID, permanent)
	if err != nil {
		return c.outcome, err
	}
	if !changed {
		return c.outcome, nil
	}
	c.record(models.EffectBlacklistEntryRemoved)

	mode := "soft"
	if permanent {
		mode = "permanent"
	}
	c.queue(audit.EventBlacklistEntryDeactivated, audit.SeverityWarning,
		map[string]string{"blacklist_id": entryID.String(), "mode": mode},
		"entity_type", string(models.EntityAdmin),
		"entity_id", requestcontext.ActorID(ctx),
	)
	s.flush(ctx, c)
	return c.outcome, nil
}

func (s *Service) ListBlacklist(ctx context.Context, includeInactive bool) ([]*models.BlacklistEntry, error) {
	return s.blacklist.List(ctx, includeInactive)
}

// GetBlacklistEntry returns one entry by id.
func (s *Service) GetBlacklistEntry(ctx context.Context, entryID id.BlacklistEntryID) (*models.BlacklistEntry, error) {
	if entryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "blacklist entry id is required")
	}
	return s.blacklist.Get(ctx, entryID)
}
