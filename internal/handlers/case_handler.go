package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/access"
	"github.com/garrisonhq/garrison/internal/services/schema"
)

// CaseHandler serves case record CRUD
type CaseHandler struct {
	cases   repositories.CaseRepository
	schemas *schema.Service
	gate    *access.Gate
	logger  zerolog.Logger
}

// NewCaseHandler creates a new CaseHandler
func NewCaseHandler(
	cases repositories.CaseRepository,
	schemas *schema.Service,
	gate *access.Gate,
	logger zerolog.Logger,
) *CaseHandler {
	return &CaseHandler{cases: cases, schemas: schemas, gate: gate, logger: logger}
}

func (h *CaseHandler) allowed(c *gin.Context, action entities.Action) bool {
	if !h.gate.HasPermission(actorFrom(c), string(entities.KindCase), action) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}

// List returns cases matching the query filters
func (h *CaseHandler) List(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	filter := repositories.CaseFilter{
		Status:   entities.CaseStatus(c.Query("status")),
		Priority: entities.CasePriority(c.Query("priority")),
		Search:   c.Query("search"),
	}
	cases, err := h.cases.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

// Get returns a single case by id
func (h *CaseHandler) Get(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	record, err := h.cases.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create validates the record and its custom values, then persists it.
// The creating actor is stamped on the record.
func (h *CaseHandler) Create(c *gin.Context) {
	if !h.allowed(c, entities.ActionCreate) {
		return
	}

	var record entities.Case
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case payload"})
		return
	}
	if record.Status == "" {
		record.Status = entities.CaseOpen
	}
	if record.Priority == "" {
		record.Priority = entities.CaseMedium
	}
	if actor := actorFrom(c); actor != nil {
		record.CreatedBy = actor.ID
	}
	if err := record.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.checkCustom(c, record.Custom); err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, err := h.cases.Create(c.Request.Context(), &record)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	record.ID = id
	c.JSON(http.StatusCreated, record)
}

// Update validates and replaces a case record
func (h *CaseHandler) Update(c *gin.Context) {
	if !h.allowed(c, entities.ActionUpdate) {
		return
	}

	var record entities.Case
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case payload"})
		return
	}
	record.ID = c.Param("id")
	if err := record.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.checkCustom(c, record.Custom); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.cases.Update(c.Request.Context(), &record); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete removes a case record
func (h *CaseHandler) Delete(c *gin.Context) {
	if !h.allowed(c, entities.ActionDelete) {
		return
	}

	if err := h.cases.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CaseHandler) checkCustom(c *gin.Context, values entities.CustomValues) error {
	s, err := h.schemas.Load(c.Request.Context(), entities.KindCase)
	if err != nil {
		return err
	}
	return validateCustom(s, values)
}
