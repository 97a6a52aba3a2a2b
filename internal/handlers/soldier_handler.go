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

// SoldierHandler serves soldier record CRUD
type SoldierHandler struct {
	soldiers repositories.SoldierRepository
	schemas  *schema.Service
	gate     *access.Gate
	logger   zerolog.Logger
}

// NewSoldierHandler creates a new SoldierHandler
func NewSoldierHandler(
	soldiers repositories.SoldierRepository,
	schemas *schema.Service,
	gate *access.Gate,
	logger zerolog.Logger,
) *SoldierHandler {
	return &SoldierHandler{soldiers: soldiers, schemas: schemas, gate: gate, logger: logger}
}

func (h *SoldierHandler) allowed(c *gin.Context, action entities.Action) bool {
	if !h.gate.HasPermission(actorFrom(c), string(entities.KindSoldier), action) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}

// List returns soldiers matching the query filters
func (h *SoldierHandler) List(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	filter := repositories.SoldierFilter{
		Status: c.Query("status"),
		Unit:   c.Query("unit"),
		Search: c.Query("search"),
	}
	soldiers, err := h.soldiers.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"soldiers": soldiers})
}

// Get returns a single soldier by id
func (h *SoldierHandler) Get(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	soldier, err := h.soldiers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, soldier)
}

// Create validates the record and its custom values, then persists it
func (h *SoldierHandler) Create(c *gin.Context) {
	if !h.allowed(c, entities.ActionCreate) {
		return
	}

	var soldier entities.Soldier
	if err := c.ShouldBindJSON(&soldier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid soldier payload"})
		return
	}
	if err := soldier.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.checkCustom(c, soldier.Custom); err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, err := h.soldiers.Create(c.Request.Context(), &soldier)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	soldier.ID = id
	c.JSON(http.StatusCreated, soldier)
}

// Update validates and replaces a soldier record
func (h *SoldierHandler) Update(c *gin.Context) {
	if !h.allowed(c, entities.ActionUpdate) {
		return
	}

	var soldier entities.Soldier
	if err := c.ShouldBindJSON(&soldier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid soldier payload"})
		return
	}
	soldier.ID = c.Param("id")
	if err := soldier.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.checkCustom(c, soldier.Custom); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.soldiers.Update(c.Request.Context(), &soldier); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, soldier)
}

// Delete removes a soldier record
func (h *SoldierHandler) Delete(c *gin.Context) {
	if !h.allowed(c, entities.ActionDelete) {
		return
	}

	if err := h.soldiers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SoldierHandler) checkCustom(c *gin.Context, values entities.CustomValues) error {
	s, err := h.schemas.Load(c.Request.Context(), entities.KindSoldier)
	if err != nil {
		return err
	}
	return validateCustom(s, values)
}
