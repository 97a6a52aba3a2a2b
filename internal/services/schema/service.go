package schema

import (
	"context"
	"fmt"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/infrastructure/cache"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/access"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Service mediates field definition reads and custom-field mutations.
// Reads go through a small TTL cache; every mutation invalidates the cached
// schema for its kind and re-fetches (no optimistic local mutation).
type Service struct {
	fields repositories.FieldRepository
	gate   *access.Gate
	cache  *cache.TTLCache
	logger zerolog.Logger
}

// NewService creates a schema Service. cache may be nil to disable caching.
func NewService(fields repositories.FieldRepository, gate *access.Gate, c *cache.TTLCache, logger zerolog.Logger) *Service {
	return &Service{
		fields: fields,
		gate:   gate,
		cache:  c,
		logger: logger.With().Str("component", "schema").Logger(),
	}
}

// Load fetches the system and custom field lists for an entity kind
// concurrently and returns the merged schema. The two fetches fail
// independently: a failed list comes back empty and is noted in
// EntitySchema.Partial; only when both fail is a hard error returned.
func (s *Service) Load(ctx context.Context, kind entities.EntityKind) (*EntitySchema, error) {
	if _, err := entities.ParseEntityKind(string(kind)); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if v, ok := s.cache.Get(string(kind)); ok {
			return v.(*EntitySchema), nil
		}
	}

	var (
		system, custom       []*entities.FieldDefinition
		systemErr, customErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		system, systemErr = s.fields.List(ctx, kind, true)
		return nil
	})
	g.Go(func() error {
		custom, customErr = s.fields.List(ctx, kind, false)
		return nil
	})
	_ = g.Wait()

	if systemErr != nil && customErr != nil {
		return nil, fmt.Errorf("failed to load schema for %s: %w", kind, systemErr)
	}

	result := &EntitySchema{EntityKind: kind, System: system, Custom: custom}
	if systemErr != nil {
		s.logger.Error().Err(systemErr).Str("kind", string(kind)).Msg("system fields fetch failed")
		result.System = nil
		result.Partial = append(result.Partial, "failed to load system fields")
	}
	if customErr != nil {
		s.logger.Error().Err(customErr).Str("kind", string(kind)).Msg("custom fields fetch failed")
		result.Custom = nil
		result.Partial = append(result.Partial, "failed to load custom fields")
	}

	// Partial results are not cached: the next read retries the failed list
	if s.cache != nil && len(result.Partial) == 0 {
		s.cache.Set(string(kind), result)
	}

	return result, nil
}

// CreateField validates and persists a new custom field, then re-fetches the
// schema for its kind. The returned error is the explicit success signal;
// validation failures never reach storage.
func (s *Service) CreateField(ctx context.Context, actor *entities.Actor, draft *entities.FieldDefinition) (*EntitySchema, error) {
	if !s.gate.CanManageFields(actor, draft.EntityKind) {
		return nil, ErrForbidden
	}
	if draft.Name == "" || draft.Label == "" || draft.Type == "" {
		return nil, fmt.Errorf("%w: name, label and type are required", ErrInvalidField)
	}
	draft.System = false
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}

	id, err := s.fields.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("kind", string(draft.EntityKind)).Str("field", draft.Name).Str("id", id).Msg("custom field created")

	s.invalidate(draft.EntityKind)
	return s.Load(ctx, draft.EntityKind)
}

// UpdateField replaces the attributes of a custom field keyed by its ID,
// then re-fetches the schema. The stored row decides which kind the field
// belongs to; the payload cannot move a field between kinds or smuggle an
// authorization check against a kind the field is not part of. System
// fields are refused here, not just by backend policy.
func (s *Service) UpdateField(ctx context.Context, actor *entities.Actor, field *entities.FieldDefinition) (*EntitySchema, error) {
	if field.ID == "" {
		return nil, fmt.Errorf("%w: field id is required", ErrInvalidField)
	}

	existing, err := s.fields.Get(ctx, field.ID)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanManageFields(actor, existing.EntityKind) {
		return nil, ErrForbidden
	}
	if existing.System {
		return nil, ErrSystemField
	}

	field.EntityKind = existing.EntityKind
	field.System = false
	if err := field.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}

	if err := s.fields.Update(ctx, field); err != nil {
		return nil, err
	}
	s.logger.Info().Str("kind", string(existing.EntityKind)).Str("field", field.Name).Msg("custom field updated")

	s.invalidate(existing.EntityKind)
	return s.Load(ctx, existing.EntityKind)
}

// DeleteField removes a custom field by ID, then re-fetches the schema for
// its kind. System fields are refused.
func (s *Service) DeleteField(ctx context.Context, actor *entities.Actor, id string) (*EntitySchema, error) {
	existing, err := s.fields.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanManageFields(actor, existing.EntityKind) {
		return nil, ErrForbidden
	}
	if existing.System {
		return nil, ErrSystemField
	}

	if err := s.fields.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info().Str("kind", string(existing.EntityKind)).Str("field", existing.Name).Msg("custom field deleted")

	s.invalidate(existing.EntityKind)
	return s.Load(ctx, existing.EntityKind)
}

// Invalidate drops any cached schema for the kind. The realtime change feed
// calls this when another instance mutates field definitions.
func (s *Service) Invalidate(kind entities.EntityKind) {
	s.invalidate(kind)
}

func (s *Service) invalidate(kind entities.EntityKind) {
	if s.cache != nil {
		s.cache.Invalidate(string(kind))
	}
}
