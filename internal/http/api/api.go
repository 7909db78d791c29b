// Package api assembles the HTTP surface of the list service.
package api

import (
	"time"

	"github.com/challengelist/listd/internal/http/api/handlers"
	"github.com/challengelist/listd/internal/identity"
	"github.com/challengelist/listd/internal/pagination"
	"github.com/challengelist/listd/internal/positions"
	"github.com/challengelist/listd/internal/security"
	"github.com/challengelist/listd/internal/videolink"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps carries the shared components the routes close over.
type Deps struct {
	DB            *gorm.DB
	Issuer        *security.TokenIssuer
	Engine        *positions.Engine
	Videos        videolink.Checker
	MaxChallenges int
}

// New builds the gin engine with every route registered.
func New(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(identity.Middleware(deps.DB, deps.Issuer))
	router.Use(pagination.Middleware())

	Register(router, deps)
	return router
}

// Register attaches all API routes to the router.
func Register(router *gin.Engine, deps Deps) {
	auth := handlers.NewAuthHandler(deps.DB, deps.Issuer)
	accounts := handlers.NewAccountHandler(deps.DB, deps.Issuer)
	groups := handlers.NewGroupHandler(deps.DB)
	challenges := handlers.NewChallengeHandler(deps.DB, deps.Engine, deps.Videos, deps.MaxChallenges)
	records := handlers.NewRecordHandler(deps.DB, deps.Videos)
	meta := handlers.NewMetaHandler(deps.DB)

	api := router.Group("/api")
	{
		api.POST("/auth/register", auth.Register)
		api.POST("/auth/login", auth.Login)

		api.GET("/accounts/@me", accounts.Me)
		api.POST("/accounts/@me/key", accounts.RotateAPIKey)

		api.GET("/groups", groups.List)
		api.POST("/groups", groups.Create)
		api.PATCH("/groups/:id", groups.Update)

		api.GET("/challenges", challenges.List)
		api.GET("/challenges/list", challenges.MainList)
		api.POST("/challenges", challenges.Create)
		api.GET("/challenges/:id", challenges.Get)
		api.PATCH("/challenges/:id", challenges.Update)
		api.DELETE("/challenges/:id", challenges.Delete)
		api.GET("/challenges/:id/creators", challenges.Creators)
		api.POST("/challenges/:id/creators", challenges.AddCreator)
		api.PATCH("/challenges/:id/creators", challenges.ReplaceCreators)
		api.DELETE("/challenges/:id/creators/:playerId", challenges.RemoveCreator)

		api.GET("/records", records.List)
		api.POST("/records", records.Create)

		api.GET("/meta/staff", meta.Staff)
	}
}

// RequestLogger logs each completed request with its latency and status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}
