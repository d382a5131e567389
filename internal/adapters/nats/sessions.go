package natsadapter

import (
	"encoding/json"
	"errors"

	nats "github.com/nats-io/nats.go"

	"github.com/alekus2/portifolioalek/internal/domain"
	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

// Subscription is the handle for a live session-event subscription.
// *nats.Subscription satisfies it.
type Subscription interface {
	Unsubscribe() error
}

// SessionSource delivers identity-provider session transitions to a handler.
type SessionSource interface {
	Subscribe(handler func(domain.SessionEvent)) (Subscription, error)
}

type sessionSource struct {
	conn    *nats.Conn
	subject string
	queue   string
	logger  pkglog.Logger
}

func NewSessionSource(conn *nats.Conn, subject, queue string, logger pkglog.Logger) SessionSource {
	return &sessionSource{conn: conn, subject: subject, queue: queue, logger: logger}
}

func (s *sessionSource) Subscribe(handler func(domain.SessionEvent)) (Subscription, error) {
	if s.conn == nil {
		return nil, errors.New("nats connection is nil")
	}
	if handler == nil {
		return nil, errors.New("handler is nil")
	}
	return s.conn.QueueSubscribe(s.subject, s.queue, func(msg *nats.Msg) {
		s.dispatch(handler, msg.Data)
	})
}

// dispatch shields the subscription from bad payloads and handler panics so
// a single event can never stop subsequent ones from being processed.
func (s *sessionSource) dispatch(handler func(domain.SessionEvent), data []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("session event handler panicked")
		}
	}()

	var evt domain.SessionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Warn().Err(err).Msg("malformed session event payload")
		return
	}
	if evt.Kind == "" {
		s.logger.Warn().Msg("session event missing kind")
		return
	}
	handler(evt)
}
