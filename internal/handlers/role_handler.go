package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/access"
)

// RoleHandler exposes the permission table and role assignments. Every route
// is developer-only; the table is the backbone of every other authorization
// decision.
type RoleHandler struct {
	gate   *access.Gate
	roles  repositories.RoleRepository
	logger zerolog.Logger
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(gate *access.Gate, roles repositories.RoleRepository, logger zerolog.Logger) *RoleHandler {
	return &RoleHandler{gate: gate, roles: roles, logger: logger}
}

func (h *RoleHandler) developerOnly(c *gin.Context) bool {
	actor := actorFrom(c)
	if actor == nil || actor.Role != entities.RoleDeveloper {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}

// List returns the current permission table for every role
func (h *RoleHandler) List(c *gin.Context) {
	if !h.developerOnly(c) {
		return
	}

	table := map[entities.Role][]entities.Permission{}
	for _, role := range []entities.Role{entities.RoleDeveloper, entities.RoleAdmin, entities.RoleUser} {
		table[role] = h.gate.Permissions(role)
	}
	c.JSON(http.StatusOK, gin.H{"roles": table})
}

type updatePermissionsRequest struct {
	Permissions []entities.Permission `json:"permissions"`
}

// UpdatePermissions replaces a role's grant list. Actors resolved before the
// change keep their old snapshot; only future sessions see the new table.
func (h *RoleHandler) UpdatePermissions(c *gin.Context) {
	if !h.developerOnly(c) {
		return
	}

	role := entities.Role(c.Param("role"))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	var req updatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permissions payload"})
		return
	}

	if err := h.gate.UpdatePermissions(role, req.Permissions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "permissions": h.gate.Permissions(role)})
}

type assignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AssignRole assigns a role to a user. Sessions resolved before the change
// keep their old role; the assignment applies from the next login.
func (h *RoleHandler) AssignRole(c *gin.Context) {
	if !h.developerOnly(c) {
		return
	}

	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	role := entities.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	userID := c.Param("id")
	if err := h.roles.SetRole(c.Request.Context(), userID, role); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
}
