package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/alekus2/portifolioalek/internal/adapters/authapi"
	rediscache "github.com/alekus2/portifolioalek/internal/adapters/redis"
	"github.com/alekus2/portifolioalek/internal/domain"
	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

// SignupResult is the outcome of an explicit signup. When the provider
// requires out-of-band confirmation, Identity and Profile are nil and the
// profile is created later by the session listener.
type SignupResult struct {
	Identity          *domain.Identity
	Profile           *domain.Profile
	NeedsConfirmation bool
}

type SignInResult struct {
	Identity *domain.Identity
	Profile  *domain.Profile
}

// Service composes identity-provider calls with the reconciler for the
// user-initiated flows.
type Service interface {
	SignUp(ctx context.Context, traceID, email, password string, reg *domain.RegistrationFields) (*SignupResult, error)
	SignIn(ctx context.Context, traceID, email, password string) (*SignInResult, error)
	SignOut(ctx context.Context, traceID string) error
}

type profileService struct {
	logger     pkglog.Logger
	provider   authapi.Client
	pending    rediscache.PendingStore
	reconciler *Reconciler
}

func NewProfileService(logger pkglog.Logger, provider authapi.Client, pending rediscache.PendingStore, reconciler *Reconciler) Service {
	return &profileService{logger: logger, provider: provider, pending: pending, reconciler: reconciler}
}

func (s *profileService) SignUp(ctx context.Context, traceID, email, password string, reg *domain.RegistrationFields) (*SignupResult, error) {
	traceID = ensureTraceID(traceID)
	norm := normalizeEmail(email)
	if err := validateEmail(norm); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// Cached before the provider call so a deferred confirmation can still
	// pick the fields up when the session eventually materializes.
	if reg != nil {
		s.pending.Save(ctx, norm, pendingFromRegistration(norm, reg))
	}

	res, err := s.provider.SignUp(ctx, norm, password)
	if err != nil {
		return nil, err
	}
	if res.NeedsConfirmation {
		s.logger.Info().Str("trace_id", traceID).Str("email", norm).Msg("signup awaiting confirmation")
		return &SignupResult{NeedsConfirmation: true}, nil
	}

	profile, err := s.reconciler.Apply(ctx, traceID, *res.Identity, reg)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		s.pending.Clear(ctx, norm)
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", res.Identity.ID).Msg("signup reconciled")
	return &SignupResult{Identity: res.Identity, Profile: profile}, nil
}

func (s *profileService) SignIn(ctx context.Context, traceID, email, password string) (*SignInResult, error) {
	traceID = ensureTraceID(traceID)
	norm := normalizeEmail(email)
	if err := validateEmail(norm); err != nil {
		return nil, err
	}

	identity, err := s.provider.SignInWithPassword(ctx, norm, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.reconciler.EnsureReadFirst(ctx, traceID, *identity)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", identity.ID).Msg("signin")
	return &SignInResult{Identity: identity, Profile: profile}, nil
}

func (s *profileService) SignOut(ctx context.Context, traceID string) error {
	traceID = ensureTraceID(traceID)
	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}
	s.logger.Info().Str("trace_id", traceID).Msg("signout")
	return nil
}

func pendingFromRegistration(email string, reg *domain.RegistrationFields) domain.PendingRegistration {
	pending := domain.PendingRegistration{Email: email, Nome: reg.Nome}
	if reg.DataNascimento != nil {
		formatted := reg.DataNascimento.Format(dateLayout)
		pending.DataNascimento = &formatted
	}
	return pending
}

func ensureTraceID(traceID string) string {
	if traceID == "" {
		return uuid.NewString()
	}
	return traceID
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func validateEmail(email string) error {
	if email == "" {
		return &domain.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if !strings.Contains(email, "@") || len(email) > 255 {
		return &domain.ValidationError{Field: "email", Reason: "malformed"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return &domain.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}
