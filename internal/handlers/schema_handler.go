package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/services/forms"
	"github.com/garrisonhq/garrison/internal/services/schema"
)

// SchemaHandler serves merged schemas, rendered forms, and custom field CRUD.
// Reads go straight to the schema Service; field mutations go through the
// actor's session Manager so the editing state and the realtime refreshes
// share one view of the schema.
type SchemaHandler struct {
	schemas  *schema.Service
	sessions *schema.Sessions
	logger   zerolog.Logger
}

// NewSchemaHandler creates a new SchemaHandler
func NewSchemaHandler(schemas *schema.Service, sessions *schema.Sessions, logger zerolog.Logger) *SchemaHandler {
	return &SchemaHandler{schemas: schemas, sessions: sessions, logger: logger}
}

// kindParam parses the :kind path segment, responding 400 on unknown kinds
func kindParam(c *gin.Context) (entities.EntityKind, bool) {
	kind, err := entities.ParseEntityKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

// GetSchema returns the merged schema for an entity kind. A partially loaded
// schema is still 200; the partial list tells the client which half failed.
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	s, err := h.schemas.Load(c.Request.Context(), kind)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetForm returns the rendered form description for an entity kind
func (h *SchemaHandler) GetForm(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	s, err := h.schemas.Load(c.Request.Context(), kind)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, forms.Render(s, nil))
}

type fieldRequest struct {
	EntityKind string   `json:"entity_kind"`
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Required   bool     `json:"required"`
	Options    []string `json:"options"`
}

func (r *fieldRequest) toDefinition() *entities.FieldDefinition {
	return &entities.FieldDefinition{
		EntityKind: entities.EntityKind(r.EntityKind),
		Name:       r.Name,
		Label:      r.Label,
		Type:       entities.FieldType(r.Type),
		Required:   r.Required,
		Options:    r.Options,
	}
}

// CreateField adds a custom field and returns the reloaded schema. The draft
// goes through the actor's session so a management session tracks what it
// just created.
func (h *SchemaHandler) CreateField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field payload"})
		return
	}
	kind, err := entities.ParseEntityKind(req.EntityKind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := actorFrom(c)
	mgr := h.sessions.For(actor.ID)
	if current, _, _ := mgr.Current(); current != kind {
		if _, err := mgr.Switch(c.Request.Context(), kind); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	mgr.SetDraft(req.toDefinition())
	s, err := mgr.CreateFromDraft(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// UpdateField changes a custom field's definition and returns the reloaded
// schema. The field's identity comes from the path, not the payload.
func (h *SchemaHandler) UpdateField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field payload"})
		return
	}

	field := req.toDefinition()
	field.ID = c.Param("id")

	actor := actorFrom(c)
	mgr := h.sessions.For(actor.ID)
	mgr.StartEdit(field)

	s, err := mgr.ApplyEdit(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if s == nil {
		// A concurrent request on the same session consumed the edit slot
		c.JSON(http.StatusConflict, gin.H{"error": "no field edit in progress"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteField removes a custom field and returns the reloaded schema
func (h *SchemaHandler) DeleteField(c *gin.Context) {
	actor := actorFrom(c)
	mgr := h.sessions.For(actor.ID)

	s, err := mgr.DeleteField(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
