package usecase

import (
	"context"
	"strings"
	"time"

	repo "github.com/alekus2/portifolioalek/internal/adapters/postgres"
	rediscache "github.com/alekus2/portifolioalek/internal/adapters/redis"
	"github.com/alekus2/portifolioalek/internal/domain"
	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

const dateLayout = "2006-01-02"

// Reconciler decides whether a just-authenticated identity needs its profile
// created, merged with pending registration data, or left as is, and applies
// the decision idempotently through the profile store's upsert.
type Reconciler struct {
	logger   pkglog.Logger
	profiles repo.ProfileRepository
	pending  rediscache.PendingStore
}

func NewReconciler(logger pkglog.Logger, profiles repo.ProfileRepository, pending rediscache.PendingStore) *Reconciler {
	return &Reconciler{logger: logger, profiles: profiles, pending: pending}
}

// Apply reconciles the profile for identity. A non-nil hint is the direct
// post-signup path: the caller already holds the registration fields, so the
// pending cache is bypassed. Without a hint the cache is consulted and, on a
// matching entry, consumed.
func (r *Reconciler) Apply(ctx context.Context, traceID string, identity domain.Identity, hint *domain.RegistrationFields) (*domain.Profile, error) {
	if strings.TrimSpace(identity.ID) == "" {
		return nil, &domain.ValidationError{Field: "identity.id", Reason: "must not be empty"}
	}
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, &domain.ValidationError{Field: "identity.email", Reason: "must not be empty"}
	}

	if hint != nil {
		return r.profiles.CreateOrUpdate(ctx, identity.ID, domain.ProfileFields{
			Email:          email,
			Nome:           hint.Nome,
			DataNascimento: hint.DataNascimento,
			WithDetails:    true,
		})
	}

	pending := r.pending.Read(ctx, email)
	if pending != nil && strings.EqualFold(strings.TrimSpace(pending.Email), email) {
		profile, err := r.profiles.CreateOrUpdate(ctx, identity.ID, domain.ProfileFields{
			Email:          email,
			Nome:           pending.Nome,
			DataNascimento: r.parseDate(traceID, pending.DataNascimento),
			WithDetails:    true,
		})
		if err != nil {
			return nil, err
		}
		r.pending.Clear(ctx, email)
		r.logger.Info().Str("trace_id", traceID).Str("user_id", identity.ID).Msg("pending registration merged")
		return profile, nil
	}

	// Minimal profile. The partial column set leaves previously stored
	// optional fields untouched on an existing row.
	return r.profiles.CreateOrUpdate(ctx, identity.ID, domain.ProfileFields{Email: email})
}

// EnsureReadFirst is the explicit sign-in mode: an existing profile is
// returned untouched, a missing one falls through to the cache-consulting
// path so a signed-in identity is never left without a profile.
func (r *Reconciler) EnsureReadFirst(ctx context.Context, traceID string, identity domain.Identity) (*domain.Profile, error) {
	if strings.TrimSpace(identity.ID) == "" {
		return nil, &domain.ValidationError{Field: "identity.id", Reason: "must not be empty"}
	}
	profile, err := r.profiles.Read(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}
	return r.Apply(ctx, traceID, identity, nil)
}

// parseDate turns the cached ISO date string into a time, dropping the field
// when it does not parse.
func (r *Reconciler) parseDate(traceID string, value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	ts, err := time.Parse(dateLayout, *value)
	if err != nil {
		r.logger.Warn().Err(err).Str("trace_id", traceID).Msg("pending data_nascimento unparsable, dropped")
		return nil
	}
	return &ts
}
