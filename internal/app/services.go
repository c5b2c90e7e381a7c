package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/services"
)

type Services struct {
	Collection   services.CollectionService
	Version      services.VersionService
	Entity       services.EntityService
	Lineage      services.LineageService
	Relationship services.RelationshipService
	Agent        services.AgentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	versionService := services.NewVersionService(db, log, r.Entity, r.Version, cfg.VersionMaxRetries)
	return Services{
		Collection:   services.NewCollectionService(db, log, r.Collection, r.Entity),
		Version:      versionService,
		Entity:       services.NewEntityService(db, log, r.Collection, r.Entity, r.Relationship, versionService),
		Lineage:      services.NewLineageService(db, log, r.Entity, r.Relationship, cfg.MaxTraversalDepth),
		Relationship: services.NewRelationshipService(db, log, r.Entity, r.Relationship, r.Agent),
		Agent:        services.NewAgentService(db, log, r.Agent),
	}
}
