package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/access"
	"github.com/garrisonhq/garrison/internal/services/schema"
)

// HealthChecker is satisfied by the database wrapper
type HealthChecker interface {
	HealthCheck() error
}

// RouterConfig carries everything the HTTP surface needs
type RouterConfig struct {
	Gate          *access.Gate
	Schemas       *schema.Service
	Sessions      *schema.Sessions
	Users         repositories.UserRepository
	Roles         repositories.RoleRepository
	Officers      repositories.OfficerRepository
	Soldiers      repositories.SoldierRepository
	Cases         repositories.CaseRepository
	Announcements repositories.AnnouncementRepository
	Health        HealthChecker
	JWTSecret     string
	TokenTTL      time.Duration
	Logger        zerolog.Logger

	// Middleware is appended after logging and auth; used for metrics
	Middleware []gin.HandlerFunc
}

// NewRouter builds the gin engine with all routes wired
func NewRouter(cfg RouterConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(cfg.Logger))
	engine.Use(Authenticate(cfg.Gate, cfg.JWTSecret))
	for _, mw := range cfg.Middleware {
		engine.Use(mw)
	}

	auth := NewAuthHandler(cfg.Users, cfg.Roles, cfg.Gate, cfg.JWTSecret, cfg.TokenTTL, cfg.Logger)
	schemas := NewSchemaHandler(cfg.Schemas, cfg.Sessions, cfg.Logger)
	officers := NewOfficerHandler(cfg.Officers, cfg.Schemas, cfg.Gate, cfg.Logger)
	soldiers := NewSoldierHandler(cfg.Soldiers, cfg.Schemas, cfg.Gate, cfg.Logger)
	cases := NewCaseHandler(cfg.Cases, cfg.Schemas, cfg.Gate, cfg.Logger)
	announcements := NewAnnouncementHandler(cfg.Announcements, cfg.Gate, cfg.Logger)
	roles := NewRoleHandler(cfg.Gate, cfg.Roles, cfg.Logger)

	engine.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/auth/login", auth.Login)
		v1.GET("/auth/session", auth.Session)

		v1.GET("/schema/:kind", schemas.GetSchema)
		v1.GET("/schema/:kind/form", schemas.GetForm)

		// Field mutation authorization happens in the schema service
		fields := v1.Group("/fields", RequireActor())
		{
			fields.POST("", schemas.CreateField)
			fields.PUT("/:id", schemas.UpdateField)
			fields.DELETE("/:id", schemas.DeleteField)
		}

		registerCRUD(v1.Group("/officers"), officers.List, officers.Get, officers.Create, officers.Update, officers.Delete)
		registerCRUD(v1.Group("/soldiers"), soldiers.List, soldiers.Get, soldiers.Create, soldiers.Update, soldiers.Delete)
		registerCRUD(v1.Group("/cases"), cases.List, cases.Get, cases.Create, cases.Update, cases.Delete)
		registerCRUD(v1.Group("/announcements"), announcements.List, announcements.Get, announcements.Create, announcements.Update, announcements.Delete)

		v1.GET("/roles", roles.List)
		v1.PUT("/roles/:role/permissions", roles.UpdatePermissions)
		v1.PUT("/users/:id/role", roles.AssignRole)
	}

	return engine
}

func registerCRUD(g *gin.RouterGroup, list, get, create, update, del gin.HandlerFunc) {
	g.GET("", list)
	g.GET("/:id", get)
	g.POST("", create)
	g.PUT("/:id", update)
	g.DELETE("/:id", del)
}
