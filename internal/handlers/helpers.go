package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/forms"
	"github.com/garrisonhq/garrison/internal/services/schema"
)

// actorKey is the gin context key the auth middleware stores the actor under
const actorKey = "garrison.actor"

// actorFrom returns the authenticated actor, or nil for anonymous requests
func actorFrom(c *gin.Context) *entities.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*entities.Actor)
	return actor
}

// respondError maps service and repository errors to HTTP status codes.
// Unrecognized errors are logged and returned as 500 without leaking detail.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	var verr *forms.ValidationError

	switch {
	case errors.Is(err, schema.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, schema.ErrSystemField):
		c.JSON(http.StatusForbidden, gin.H{"error": "system fields cannot be modified"})
	case errors.Is(err, schema.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "violations": verr.Violations})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repositories.ErrDuplicateField):
		c.JSON(http.StatusConflict, gin.H{"error": "a field with that name already exists"})
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// validateCustom checks a record's custom values against the custom partition
// of the entity's schema. Built-in columns are validated by the entity's own
// Validate method; only custom fields live in the values map.
func validateCustom(s *schema.EntitySchema, values entities.CustomValues) error {
	if s == nil {
		return nil
	}
	customOnly := &schema.EntitySchema{
		EntityKind: s.EntityKind,
		Custom:     s.Custom,
	}
	return forms.Validate(customOnly, values)
}
