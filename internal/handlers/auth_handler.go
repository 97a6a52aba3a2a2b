package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/access"
)

// AuthHandler issues and echoes session tokens
type AuthHandler struct {
	users    repositories.UserRepository
	roles    repositories.RoleRepository
	gate     *access.Gate
	secret   string
	tokenTTL time.Duration
	logger   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	gate *access.Gate,
	secret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:    users,
		roles:    roles,
		gate:     gate,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a signed session token together
// with the resolved actor. Unknown emails and wrong passwords produce the
// same response so the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	role, err := h.roles.GetRole(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	actor := h.gate.Resolve(user.ID, user.Email, role)

	now := time.Now()
	claims := sessionClaims{
		Email: actor.Email,
		Role:  string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.secret))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "actor": actor})
}

// Session echoes the actor resolved by the auth middleware
func (h *AuthHandler) Session(c *gin.Context) {
	actor := actorFrom(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actor": actor})
}
