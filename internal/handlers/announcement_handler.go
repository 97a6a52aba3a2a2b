package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/access"
)

// announcementResource is the permission resource for announcements.
// Announcements are not an entity kind and carry no custom fields.
const announcementResource = "announcement"

// AnnouncementHandler serves announcement CRUD
type AnnouncementHandler struct {
	announcements repositories.AnnouncementRepository
	gate          *access.Gate
	logger        zerolog.Logger
}

// NewAnnouncementHandler creates a new AnnouncementHandler
func NewAnnouncementHandler(
	announcements repositories.AnnouncementRepository,
	gate *access.Gate,
	logger zerolog.Logger,
) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, gate: gate, logger: logger}
}

func (h *AnnouncementHandler) allowed(c *gin.Context, action entities.Action) bool {
	if !h.gate.HasPermission(actorFrom(c), announcementResource, action) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}

// List returns all announcements
func (h *AnnouncementHandler) List(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	announcements, err := h.announcements.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

// Get returns a single announcement by id
func (h *AnnouncementHandler) Get(c *gin.Context) {
	if !h.allowed(c, entities.ActionRead) {
		return
	}

	a, err := h.announcements.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Create persists a new announcement stamped with the creating actor
func (h *AnnouncementHandler) Create(c *gin.Context) {
	if !h.allowed(c, entities.ActionCreate) {
		return
	}

	var a entities.Announcement
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement payload"})
		return
	}
	if actor := actorFrom(c); actor != nil {
		a.CreatedBy = actor.ID
	}
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.announcements.Create(c.Request.Context(), &a)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	a.ID = id
	c.JSON(http.StatusCreated, a)
}

// Update replaces an announcement
func (h *AnnouncementHandler) Update(c *gin.Context) {
	if !h.allowed(c, entities.ActionUpdate) {
		return
	}

	var a entities.Announcement
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement payload"})
		return
	}
	a.ID = c.Param("id")
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.announcements.Update(c.Request.Context(), &a); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Delete removes an announcement
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if !h.allowed(c, entities.ActionDelete) {
		return
	}

	if err := h.announcements.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
