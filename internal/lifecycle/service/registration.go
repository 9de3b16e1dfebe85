package service

import (
	"context"
	"errors"
	"maps"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/audit"
	"caregate/pkg/platform/sentinel"
	"caregate/pkg/requestcontext"
)

// licenseConflictReason is recorded on suspensions issued because a new
// applicant declared a license an existing provider holds.
const licenseConflictReason = "license conflict"

// RegisterCandidateRequest is a new application. Only Email is required here;
// approval enforces the rest.
type RegisterCandidateRequest struct {
	Name           string
	Email          string
	Phone          string
	Password       string
	Licenses       []string
	Specialization string
}

// RegisterCandidate admits an application after, in order: the blacklist
// check, the email/phone duplicate check and the license check. A license
// held by a provider suspends that provider and still rejects the applicant.
func (s *Service) RegisterCandidate(ctx context.Context, req RegisterCandidateRequest) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "RegisterCandidate")
	defer end(&err)

	c := newCascade()
	creds := models.NewCredentialSet(req.Email, req.Phone, req.Licenses)
	if creds.Email == "" {
		return c.outcome, dErrors.New(dErrors.CodeValidation, "email is required").
			WithDetails(map[string]string{"fields": "email"})
	}
	defer s.flush(ctx, c)

	match, err := s.blacklist.FirstMatch(ctx, creds)
	if err != nil {
		return c.outcome, err
	}
	if match != nil {
		details := models.BlacklistDetails(match.Entry, match.Collision)
		s.metrics.IncrementRegistrationsBlocked("blacklisted")
		c.queue(audit.EventRegistrationBlocked, audit.SeverityCritical, details,
			"entity_type", string(models.EntityCandidate),
			"email", creds.Email,
			"display_name", req.Name,
			"reason", "blacklisted",
			"blacklist_id", match.Entry.ID.String(),
		)
		return c.outcome, dErrors.New(dErrors.CodeBlacklisted, "credentials are blacklisted").WithDetails(details)
	}

	dup, err := s.resolver.FindEmailOrPhoneConflict(ctx, creds.Email, creds.Phone)
	if err != nil {
		return c.outcome, err
	}
	if dup != nil {
		c.outcome.Conflict = dup
		s.metrics.IncrementRegistrationsBlocked("duplicate_" + dup.Field)
		c.queue(audit.EventRegistrationBlocked, audit.SeverityWarning, dup.Details(),
			"entity_type", string(models.EntityCandidate),
			"email", creds.Email,
			"display_name", req.Name,
			"reason", "duplicate "+dup.Field,
		)
		return c.outcome, dErrors.New(dErrors.CodeDuplicateCredential, dup.Field+" already registered").WithDetails(dup.Details())
	}

	licenseConflict, err := s.resolver.FindLicenseConflict(ctx, creds.Licenses)
	if err != nil {
		return c.outcome, err
	}
	if licenseConflict != nil {
		return c.outcome, s.blockOnLicense(ctx, c, licenseConflict, creds, req.Name)
	}

	hash := ""
	if req.Password != "" {
		raw, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return c.outcome, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		hash = string(raw)
	}

	candidate := models.NewCandidate(req.Name, creds, hash, req.Specialization, requestcontext.Now(ctx))
	if err := s.directory.InsertCandidate(ctx, candidate); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return c.outcome, dErrors.New(dErrors.CodeDuplicateCredential, "email already registered").
				WithDetails(map[string]string{"field": models.FieldEmail})
		}
		return c.outcome, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
	}

	c.outcome.Candidate = candidate
	c.record(models.EffectCandidateCreated)
	c.queue(audit.EventCandidateRegistered, audit.SeverityInfo, nil,
		"entity_type", string(models.EntityCandidate),
		"entity_id", candidate.ID.String(),
		"display_name", candidate.Name,
		"email", creds.Email,
	)
	return c.outcome, nil
}

// blockOnLicense rejects the applicant and, when the license holder is an
// active provider, suspends the holder. A holder that is already suspended
// is left as it is. A failed suspension is reported in the details, not
// returned.
func (s *Service) blockOnLicense(ctx context.Context, c *cascade, found *models.Conflict, creds models.CredentialSet, name string) error {
	c.outcome.Conflict = found
	details := found.Details()

	suspended := false
	if found.IsProvider() && found.HolderState == models.ProviderActive {
		suspended = s.suspendLicenseHolder(ctx, c, found)
	}
	models.HolderSuspendedDetail(details, suspended)

	kind := "license_candidate"
	if found.IsProvider() {
		kind = "license_provider"
	}
	s.metrics.IncrementRegistrationsBlocked(kind)
	c.queue(audit.EventRegistrationBlocked, audit.SeverityWarning, maps.Clone(details),
		"entity_type", string(models.EntityCandidate),
		"email", creds.Email,
		"display_name", name,
		"reason", "license conflict",
		"license", found.License,
		"holder_suspended", strconv.FormatBool(suspended),
	)
	return dErrors.New(dErrors.CodeDuplicateCredential, "license "+found.License+" already registered").WithDetails(details)
}

func (s *Service) suspendLicenseHolder(ctx context.Context, c *cascade, found *models.Conflict) bool {
	holderID, err := id.ParseProviderID(found.EntityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "license holder has malformed id", "entity_id", found.EntityID, "error", err)
		return false
	}
	held, err := s.Suspend(ctx, holderID, models.SuspensionDetails{
		Kind:     models.SuspensionIndefinite,
		Severity: models.SeverityMajor,
		Reasons:  []string{licenseConflictReason},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to suspend license holder",
			"provider_id", found.EntityID,
			"license", found.License,
			"error", err,
		)
		return false
	}

	c.record(models.EffectHolderSuspended)
	c.record(held.Effects...)
	for _, t := range held.Events {
		c.outcome.Queue(t)
	}
	c.outcome.Provider = held.Provider
	c.outcome.Suspension = held.Suspension
	c.outcome.BlacklistEntry = held.BlacklistEntry
	c.outcome.Terminated = held.Terminated
	c.outcome.PurgedCount = held.PurgedCount
	return true
}

// ApproveCandidate turns a candidate into an active provider. The provider
// email is re-checked because another candidate with the same email may have
// been approved since registration; the directory's unique constraint settles
// any remaining race and the later approval fails.
func (s *Service) ApproveCandidate(ctx context.Context, candidateID id.CandidateID) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "ApproveCandidate", attribute.String("candidate_id", candidateID.String()))
	defer end(&err)

	c := newCascade()
	err = s.inTx(ctx, candidateKey(candidateID), c, func(ctx context.Context) error {
		candidate, err := s.findCandidate(ctx, candidateID)
		if err != nil {
			return err
		}
		if err := candidate.ValidateForApproval(); err != nil {
			return err
		}

		match, err := s.blacklist.FirstMatch(ctx, candidate.Credentials)
		if err != nil {
			return err
		}
		if match != nil {
			return dErrors.New(dErrors.CodeBlacklisted, "credentials are blacklisted").
				WithDetails(models.BlacklistDetails(match.Entry, match.Collision))
		}

		dup, err := s.resolver.FindProviderEmailConflict(ctx, candidate.Credentials.Email)
		if err != nil {
			return err
		}
		if dup != nil {
			c.outcome.Conflict = dup
			return dErrors.New(dErrors.CodeDuplicateCredential, "a provider with this email already exists").
				WithDetails(dup.Details())
		}

		now := requestcontext.Now(ctx)
		provider, err := models.NewProviderFromCandidate(candidate, now)
		if err != nil {
			return err
		}
		if err := s.directory.InsertProvider(ctx, provider); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				field := s.collidingProviderField(ctx, candidate.Credentials)
				return dErrors.New(dErrors.CodeDuplicateCredential, "a provider with this "+field+" already exists").
					WithDetails(map[string]string{"field": field})
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create provider")
		}
		c.outcome.Provider = provider
		c.record(models.EffectProviderCreated)
		c.onFailure(func(ctx context.Context) error {
			return s.directory.RemoveProvider(ctx, provider.ID)
		})

		if err := s.directory.RemoveCandidate(ctx, candidateID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove approved candidate")
		}
		c.outcome.Candidate = candidate
		c.record(models.EffectCandidateRemoved)

		c.queue(audit.EventCandidateApproved, audit.SeverityInfo, nil,
			"entity_type", string(models.EntityProvider),
			"entity_id", provider.ID.String(),
			"display_name", provider.Name,
			"email", provider.Credentials.Email,
			"candidate_id", candidateID.String(),
		)
		return nil
	})
	return c.outcome, err
}

// RejectCandidate removes the application and counts the rejection against
// its email. The rejection that brings the count to the threshold blacklists
// the applicant's full credential set. A rejection that fails part way takes
// back its count and any blacklist entry, so a retry is counted once.
func (s *Service) RejectCandidate(ctx context.Context, candidateID id.CandidateID, reason string) (outcome *models.Outcome, err error) {
	ctx, end := s.startSpan(ctx, "RejectCandidate", attribute.String("candidate_id", candidateID.String()))
	defer end(&err)

	c := newCascade()
	err = s.inTx(ctx, candidateKey(candidateID), c, func(ctx context.Context) error {
		candidate, err := s.findCandidate(ctx, candidateID)
		if err != nil {
			return err
		}

		count, err := s.rejections.Increment(ctx, candidate.Credentials.Email)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count rejection")
		}
		c.onFailure(func(ctx context.Context) error {
			return s.rejections.Decrement(ctx, candidate.Credentials.Email)
		})
		c.outcome.RejectionCount = count
		c.record(models.EffectRejectionCounted)

		if count == s.config.RejectionBlacklistThreshold {
			entry, err := models.NewBlacklistEntry(candidate.Credentials, models.ReasonCandidateRejectedRepeatedly,
				models.Origin{EntityType: models.EntityCandidate, EntityID: candidateID.String(), DisplayName: candidate.Name},
				nil, requestcontext.ActorID(ctx), requestcontext.Now(ctx))
			if err != nil {
				return err
			}
			if err := s.blacklist.Add(ctx, entry); err != nil {
				return err
			}
			s.undoBlacklistEntry(c, entry)
			c.outcome.BlacklistEntry = entry
			c.record(models.EffectBlacklistEntryCreated)
			c.queue(audit.EventCandidateBlacklisted, audit.SeverityCritical,
				map[string]string{"rejection_count": strconv.Itoa(count), "blacklist_id": entry.ID.String()},
				"entity_type", string(models.EntityCandidate),
				"entity_id", candidateID.String(),
				"display_name", candidate.Name,
				"email", candidate.Credentials.Email,
				"reason", string(models.ReasonCandidateRejectedRepeatedly),
			)
		}

		if err := s.directory.RemoveCandidate(ctx, candidateID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove rejected candidate")
		}
		c.outcome.Candidate = candidate
		c.record(models.EffectCandidateRemoved)
		s.metrics.IncrementRejections()

		c.queue(audit.EventCandidateRejected, audit.SeverityInfo,
			map[string]string{"rejection_count": strconv.Itoa(count)},
			"entity_type", string(models.EntityCandidate),
			"entity_id", candidateID.String(),
			"display_name", candidate.Name,
			"email", candidate.Credentials.Email,
			"reason", reason,
		)
		return nil
	})
	return c.outcome, err
}

// RejectionCount returns how many rejections are recorded against email.
func (s *Service) RejectionCount(ctx context.Context, email string) (int, error) {
	if models.NormalizeEmail(email) == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "email is required").
			WithDetails(map[string]string{"fields": "email"})
	}
	n, err := s.rejections.Count(ctx, email)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read rejection count")
	}
	return n, nil
}

// collidingProviderField names the unique provider field that rejected an
// insert of creds. Email is reported when the lookups cannot tell.
func (s *Service) collidingProviderField(ctx context.Context, creds models.CredentialSet) string {
	if _, err := s.directory.FindProviderByEmail(ctx, creds.Email); err == nil {
		return models.FieldEmail
	}
	if creds.Phone != "" {
		if _, err := s.directory.FindProviderByPhone(ctx, creds.Phone); err == nil {
			return models.FieldPhone
		}
	}
	return models.FieldEmail
}

func (s *Service) findCandidate(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	candidate, err := s.directory.FindCandidateByID(ctx, candidateID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return candidate, nil
}
