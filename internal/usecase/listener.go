package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	natsadapter "github.com/alekus2/portifolioalek/internal/adapters/nats"
	repo "github.com/alekus2/portifolioalek/internal/adapters/postgres"
	"github.com/alekus2/portifolioalek/internal/domain"
	"github.com/alekus2/portifolioalek/internal/tokenident"
	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

type listenerState int

const (
	stateNoSession listenerState = iota
	stateSessionActive
)

// Listener subscribes to identity-provider session transitions and
// reconciles the profile whenever a session becomes available. It holds the
// single process-wide subscription; the host starts it once and stops it on
// shutdown.
type Listener struct {
	logger     pkglog.Logger
	source     natsadapter.SessionSource
	reconciler *Reconciler
	profiles   repo.ProfileRepository
	tokens     tokenident.Parser
	nowFn      func() time.Time

	mu    sync.Mutex
	sub   natsadapter.Subscription
	state listenerState
}

func NewListener(logger pkglog.Logger, source natsadapter.SessionSource, reconciler *Reconciler, profiles repo.ProfileRepository, tokens tokenident.Parser) *Listener {
	return &Listener{
		logger:     logger,
		source:     source,
		reconciler: reconciler,
		profiles:   profiles,
		tokens:     tokens,
		nowFn:      time.Now,
	}
}

// Start registers the subscription. Calling it on a running listener is an
// error; the subscription is a process-wide singleton.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub != nil {
		return errors.New("listener already started")
	}
	sub, err := l.source.Subscribe(l.handle)
	if err != nil {
		return err
	}
	l.sub = sub
	l.logger.Info().Msg("session listener started")
	return nil
}

// Stop tears the subscription down. Safe to call on a stopped listener.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub == nil {
		return nil
	}
	err := l.sub.Unsubscribe()
	l.sub = nil
	l.logger.Info().Msg("session listener stopped")
	return err
}

// handle processes one transition. Reconciliation and the last_active
// refresh are fire-and-forget: outcomes are logged, nothing propagates, and
// a failure here never stops later events.
func (l *Listener) handle(evt domain.SessionEvent) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("session handler panicked")
		}
	}()

	if !evt.HasSession() {
		l.setState(stateNoSession)
		return
	}
	l.setState(stateSessionActive)

	traceID := uuid.NewString()
	identity := l.resolveIdentity(traceID, evt.Session)
	if identity == nil {
		return
	}

	ctx := context.Background()
	if _, err := l.reconciler.Apply(ctx, traceID, *identity, nil); err != nil {
		l.logger.Error().Err(err).
			Str("trace_id", traceID).
			Str("user_id", identity.ID).
			Str("event", string(evt.Kind)).
			Msg("session reconciliation failed")
	} else {
		l.logger.Debug().Str("trace_id", traceID).Str("user_id", identity.ID).Str("event", string(evt.Kind)).Msg("session reconciled")
	}
	l.profiles.UpdateLastActive(ctx, identity.ID, l.nowFn().UTC())
}

// resolveIdentity prefers the user object on the session and falls back to
// the access token claims.
func (l *Listener) resolveIdentity(traceID string, session *domain.Session) *domain.Identity {
	if session.User != nil && session.User.ID != "" {
		return session.User
	}
	if session.AccessToken == "" || l.tokens == nil {
		l.logger.Warn().Str("trace_id", traceID).Msg("session carries no resolvable identity")
		return nil
	}
	identity, err := tokenident.FromToken(l.tokens, session.AccessToken, l.nowFn)
	if err != nil {
		l.logger.Warn().Err(err).Str("trace_id", traceID).Msg("session token rejected")
		return nil
	}
	return identity
}

// Active reports whether the last observed transition carried a session.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateSessionActive
}

func (l *Listener) setState(s listenerState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}
