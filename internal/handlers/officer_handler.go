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

// OfficerHandler serves officer record CRUD
type OfficerHandler struct {
	officers repositories.OfficerRepository
	schemas  *schema.Service
	gate     *access.Gate
	logger   zerolog.Logger
}

// NewOfficerHandler creates a new OfficerHandler
func NewOfficerHandler(
	officers repositories.OfficerRepository,
	schemas *schema.Service,
	gate *access.Gate,
	logger zerolog.Logger,
) *OfficerHandler {
	return &OfficerHandler{officers: officers, schemas: schemas, gate: gate, logger: logger}
}

func (h *OfficerHandler) allowed(c *gin.Context, action entities.Action) bool {
	if !h.gate.HasPermission(actorFrom(c), string(entities.KindOfficer), action) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}

// List returns officers matching the query filters
func (h *OfficerHandler) List(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	filter := repositories.OfficerFilter{
		Status:   entities.OfficerStatus(c.Query("status")),
		Division: c.Query("division"),
		Search:   c.Query("search"),
	}
	officers, err := h.officers.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"officers": officers})
}

// Get returns a single officer by id
func (h *OfficerHandler) Get(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	officer, err := h.officers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, officer)
}

// Create validates the record and its custom values, then persists it
func (h *OfficerHandler) Create(c *gin.Context) {
	if !h.allowed(c, entities.ActionCreate) {
		return
	}

	var officer entities.Officer
	if err := c.ShouldBindJSON(&officer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid officer payload"})
		return
	}
	if officer.Status == "" {
		officer.Status = entities.OfficerActive
	}
	if err := officer.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.checkCustom(c, officer.Custom); err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, err := h.officers.Create(c.Request.Context(), &officer)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	officer.ID = id
	c.JSON(http.StatusCreated, officer)
}

// Update validates and replaces an officer record
func (h *OfficerHandler) Update(c *gin.Context) {
	if !h.allowed(c, entities.ActionUpdate) {
		return
	}

	var officer entities.Officer
	if err := c.ShouldBindJSON(&officer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid officer payload"})
		return
	}
	officer.ID = c.Param("id")
	if err := officer.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.checkCustom(c, officer.Custom); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.officers.Update(c.Request.Context(), &officer); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, officer)
}

// Delete removes an officer record
func (h *OfficerHandler) Delete(c *gin.Context) {
	if !h.allowed(c, entities.ActionDelete) {
		return
	}

	if err := h.officers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OfficerHandler) checkCustom(c *gin.Context, values entities.CustomValues) error {
	s, err := h.schemas.Load(c.Request.Context(), entities.KindOfficer)
	if err != nil {
		return err
	}
	return validateCustom(s, values)
}
