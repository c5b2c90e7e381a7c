package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/server"
)

func wireRouter(cfg Config, db *gorm.DB, handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:         "mlcatalog-backend",
		CORSAllowOrigins:    cfg.CORSAllowOrigins,
		DB:                  db,
		AuthMiddleware:      middleware.Auth,
		CollectionHandler:   handlers.Collection,
		EntityHandler:       handlers.Entity,
		VersionHandler:      handlers.Version,
		RelationshipHandler: handlers.Relationship,
		AgentHandler:        handlers.Agent,
	})
}
