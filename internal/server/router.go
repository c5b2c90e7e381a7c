package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/handlers"
	"github.com/yungbote/mlcatalog-backend/internal/middleware"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type RouterConfig struct {
	ServiceName         string
	CORSAllowOrigins    []string
	DB                  *gorm.DB
	AuthMiddleware      *middleware.AuthMiddleware
	CollectionHandler   *handlers.CollectionHandler
	EntityHandler       *handlers.EntityHandler
	VersionHandler      *handlers.VersionHandler
	RelationshipHandler *handlers.RelationshipHandler
	AgentHandler        *handlers.AgentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	origins := cfg.CORSAllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck(cfg.DB))

	api := router.Group("/api/v1")

	// ===============
	// || Public    ||
	// ===============
	api.GET("/collections", cfg.CollectionHandler.List)
	api.GET("/collections/:collection", cfg.CollectionHandler.Get)
	api.GET("/collections/:collection/entities", cfg.CollectionHandler.ListEntities)

	api.GET("/datasets/:collection/:name", cfg.EntityHandler.Get(types.KindDataset))
	api.GET("/trained-models/:collection/:name", cfg.EntityHandler.Get(types.KindTrainedModel))
	api.GET("/tasks/:collection/:name", cfg.EntityHandler.Get(types.KindTask))

	entity := api.Group("/entities/:kind/:collection/:name")
	entity.GET("/upstream", cfg.VersionHandler.Upstream)
	entity.GET("/downstream", cfg.VersionHandler.Downstream)
	entity.GET("/versions", cfg.VersionHandler.History)
	entity.GET("/versions/:ref", cfg.VersionHandler.Checkout)
	entity.GET("/diff", cfg.VersionHandler.Diff)

	api.GET("/tags/:tagName/entities", cfg.VersionHandler.EntitiesByTag)
	api.GET("/entity-relationships", cfg.RelationshipHandler.List)
	api.GET("/entity-relationships/:id", cfg.RelationshipHandler.Get)
	api.GET("/agents", cfg.AgentHandler.List)
	api.GET("/agents/:id", cfg.AgentHandler.Get)

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAdmin())

	protected.POST("/collections", cfg.CollectionHandler.Create)

	protected.POST("/datasets/:collection", cfg.EntityHandler.Create(types.KindDataset))
	protected.PUT("/datasets/:collection/:name", cfg.EntityHandler.Update(types.KindDataset))
	protected.DELETE("/datasets/:collection/:name", cfg.EntityHandler.Delete(types.KindDataset))

	protected.POST("/trained-models/:collection", cfg.EntityHandler.Create(types.KindTrainedModel))
	protected.PUT("/trained-models/:collection/:name", cfg.EntityHandler.Update(types.KindTrainedModel))
	protected.DELETE("/trained-models/:collection/:name", cfg.EntityHandler.Delete(types.KindTrainedModel))

	protected.POST("/tasks/:collection", cfg.EntityHandler.Create(types.KindTask))
	protected.PUT("/tasks/:collection/:name", cfg.EntityHandler.Update(types.KindTask))
	protected.DELETE("/tasks/:collection/:name", cfg.EntityHandler.Delete(types.KindTask))

	protectedEntity := protected.Group("/entities/:kind/:collection/:name")
	protectedEntity.POST("/versions", cfg.VersionHandler.CreateVersion)
	protectedEntity.POST("/tags", cfg.VersionHandler.Tag)

	protected.POST("/entity-relationships", cfg.RelationshipHandler.Create)
	protected.DELETE("/entity-relationships/:id", cfg.RelationshipHandler.Delete)

	protected.POST("/agents", cfg.AgentHandler.Create)

	return router
}
