// Package conflict detects credential collisions between a would-be candidate
// and the identities already in the directory. It only reads.
package conflict

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/ports"
	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/sentinel"
)

// Resolver answers advisory uniqueness questions. The directory's own
// constraints remain authoritative for racing writers.
type Resolver struct {
	directory ports.Directory
	logger    *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func New(directory ports.Directory, opts ...Option) (*Resolver, error) {
	if directory == nil {
		return nil, errors.New("directory is required")
	}
	r := &Resolver{
		directory: directory,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FindEmailOrPhoneConflict looks for an exact email or phone match in the
// provider and candidate pools. Precedence when several match: provider email,
// provider phone, candidate email, candidate phone.
func (r *Resolver) FindEmailOrPhoneConflict(ctx context.Context, email, phone string) (*models.Conflict, error) {
	email = models.NormalizeEmail(email)
	creds := models.NewCredentialSet(email, phone, nil)

	var providerEmail, providerPhone *models.Provider
	var candidateEmail, candidatePhone *models.Candidate

	g, gctx := errgroup.WithContext(ctx)
	if creds.Email != "" {
		g.Go(func() (err error) {
			providerEmail, err = lookup(r.directory.FindProviderByEmail(gctx, creds.Email))
			return err
		})
		g.Go(func() (err error) {
			candidateEmail, err = lookup(r.directory.FindCandidateByEmail(gctx, creds.Email))
			return err
		})
	}
	if creds.Phone != "" {
		g.Go(func() (err error) {
			providerPhone, err = lookup(r.directory.FindProviderByPhone(gctx, creds.Phone))
			return err
		})
		g.Go(func() (err error) {
			candidatePhone, err = lookup(r.directory.FindCandidateByPhone(gctx, creds.Phone))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check credential conflicts")
	}

	switch {
	case providerEmail != nil:
		return providerConflict(providerEmail, models.FieldEmail, ""), nil
	case providerPhone != nil:
		return providerConflict(providerPhone, models.FieldPhone, ""), nil
	case candidateEmail != nil:
		return candidateConflict(candidateEmail, models.FieldEmail, ""), nil
	case candidatePhone != nil:
		return candidateConflict(candidatePhone, models.FieldPhone, ""), nil
	}
	return nil, nil
}

// FindProviderEmailConflict checks only the provider pool. Approval uses it to
// catch a provider created since the candidate registered.
func (r *Resolver) FindProviderEmailConflict(ctx context.Context, email string) (*models.Conflict, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	p, err := lookup(r.directory.FindProviderByEmail(ctx, email))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check provider email")
	}
	if p == nil {
		return nil, nil
	}
	return providerConflict(p, models.FieldEmail, ""), nil
}

// FindLicenseConflict looks up every declared license in both pools. Licenses
// compare as exact strings. A provider holding any of the licenses takes
// precedence over candidates, since only a provider can be suspended for it;
// within a pool the first license in declaration order wins.
func (r *Resolver) FindLicenseConflict(ctx context.Context, licenses []string) (*models.Conflict, error) {
	declared := models.NewCredentialSet("", "", licenses).Licenses
	if len(declared) == 0 {
		return nil, nil
	}

	providers := make([]*models.Provider, len(declared))
	candidates := make([]*models.Candidate, len(declared))

	g, gctx := errgroup.WithContext(ctx)
	for i, license := range declared {
		g.Go(func() (err error) {
			providers[i], err = lookup(r.directory.FindProviderByLicense(gctx, license))
			return err
		})
		g.Go(func() (err error) {
			candidates[i], err = lookup(r.directory.FindCandidateByLicense(gctx, license))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check license conflicts")
	}

	for i, p := range providers {
		if p != nil {
			return providerConflict(p, models.FieldLicense, declared[i]), nil
		}
	}
	for i, c := range candidates {
		if c != nil {
			return candidateConflict(c, models.FieldLicense, declared[i]), nil
		}
	}
	return nil, nil
}

// lookup folds sentinel.ErrNotFound into a nil result.
func lookup[T any](found *T, err error) (*T, error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func providerConflict(p *models.Provider, field, license string) *models.Conflict {
	return &models.Conflict{
		EntityType:  models.EntityProvider,
		EntityID:    p.ID.String(),
		DisplayName: p.Name,
		Field:       field,
		License:     license,
		HolderState: p.State,
	}
}

func candidateConflict(c *models.Candidate, field, license string) *models.Conflict {
	return &models.Conflict{
		EntityType:  models.EntityCandidate,
		EntityID:    c.ID.String(),
		DisplayName: c.Name,
		Field:       field,
		License:     license,
		HolderState: models.ProviderPending,
	}
}
