package schema

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
)

// refreshTimeout bounds the schema reload done on behalf of a session when a
// change notification arrives.
const refreshTimeout = 10 * time.Second

// Sessions hands out one field-management Manager per user and fans realtime
// change notifications into the sessions that currently manage the changed
// kind. Managers are keyed by user ID, so the registry is bounded by the
// user population.
type Sessions struct {
	svc    *Service
	logger zerolog.Logger

	mu       sync.Mutex
	managers map[string]*Manager
}

// NewSessions creates a Sessions registry bound to a schema Service
func NewSessions(svc *Service, logger zerolog.Logger) *Sessions {
	return &Sessions{
		svc:      svc,
		logger:   logger.With().Str("component", "schema_sessions").Logger(),
		managers: make(map[string]*Manager),
	}
}

// For returns the user's field-management session, creating it on first use
func (s *Sessions) For(userID string) *Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	mgr, ok := s.managers[userID]
	if !ok {
		mgr = NewManager(s.svc)
		s.managers[userID] = mgr
	}
	return mgr
}

// Invalidate drops the cached schema for the kind and refreshes every session
// currently managing it. Sessions on other kinds are left alone; their state
// has not changed. Satisfies the change feed's subscriber contract.
func (s *Sessions) Invalidate(kind entities.EntityKind) {
	s.svc.Invalidate(kind)

	s.mu.Lock()
	var affected []*Manager
	for _, mgr := range s.managers {
		if current, _, _ := mgr.Current(); current == kind {
			affected = append(affected, mgr)
		}
	}
	s.mu.Unlock()

	for _, mgr := range affected {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		if err := mgr.Invalidate(ctx); err != nil {
			s.logger.Error().Err(err).Str("kind", string(kind)).Msg("session schema refresh failed")
		}
		cancel()
	}
}
