package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
)

// channel is the pg_notify channel the fields trigger raises
const channel = "fields_changed"

// Subscriber receives the entity kind whose field definitions changed
type Subscriber func(entities.EntityKind)

// Feed propagates field definition changes across instances using
// PostgreSQL LISTEN/NOTIFY. The notification payload is the entity kind;
// an empty or unknown payload fans out to every kind. Reconnects are
// handled by the pq listener; a periodic ping keeps the connection alive.
type Feed struct {
	mu          sync.Mutex
	connStr     string
	listener    *pq.Listener
	subscribers []Subscriber
	logger      zerolog.Logger
	stopCh      chan struct{}
	stopped     bool
}

// NewFeed creates a new Feed.
// connStr is the PostgreSQL connection string for LISTEN/NOTIFY.
func NewFeed(connStr string, logger zerolog.Logger) *Feed {
	return &Feed{
		connStr: connStr,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Subscribe registers a callback for change events. Must be called before
// Start; subscribers are invoked from the listener goroutine.
func (f *Feed) Subscribe(fn Subscriber) {
	f.mu.Lock()
	f.subscribers = append(f.subscribers, fn)
	f.mu.Unlock()
}

// Start opens the listener and begins dispatching notifications
func (f *Feed) Start() error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			// The listener reconnects on its own; mutations made while
			// disconnected surface when the schema cache TTL expires
			f.logger.Warn().Err(err).Msg("change feed listener error")
		}
	}

	f.listener = pq.NewListener(f.connStr, 10*time.Second, time.Minute, reportProblem)

	if err := f.listener.Listen(channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	go f.handleNotifications()
	return nil
}

// Stop closes the listener. Safe to call more than once.
func (f *Feed) Stop() error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return nil
	}
	f.stopped = true
	close(f.stopCh)
	f.mu.Unlock()

	if f.listener != nil {
		return f.listener.Close()
	}
	return nil
}

func (f *Feed) handleNotifications() {
	for {
		select {
		case <-f.stopCh:
			return
		case notification := <-f.listener.Notify:
			if notification == nil {
				// Connection lost, listener will reconnect automatically
				continue
			}
			f.dispatch(notification.Extra)
		case <-time.After(90 * time.Second):
			// Periodic ping to keep connection alive
			go func() {
				if err := f.listener.Ping(); err != nil {
					f.logger.Warn().Err(err).Msg("change feed ping error")
				}
			}()
		}
	}
}

// dispatch fans a change event out to every subscriber
func (f *Feed) dispatch(payload string) {
	kinds := []entities.EntityKind{
		entities.KindOfficer, entities.KindSoldier, entities.KindCase, entities.KindCustomList,
	}
	if kind, err := entities.ParseEntityKind(payload); err == nil {
		kinds = []entities.EntityKind{kind}
	}

	f.mu.Lock()
	subscribers := make([]Subscriber, len(f.subscribers))
	copy(subscribers, f.subscribers)
	f.mu.Unlock()

	for _, kind := range kinds {
		f.logger.Debug().Str("kind", string(kind)).Msg("field definitions changed")
		for _, fn := range subscribers {
			fn(kind)
		}
	}
}
