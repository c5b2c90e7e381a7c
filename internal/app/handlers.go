package app

import (
	"github.com/yungbote/mlcatalog-backend/internal/handlers"
	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
)

type Handlers struct {
	Collection   *handlers.CollectionHandler
	Entity       *handlers.EntityHandler
	Version      *handlers.VersionHandler
	Relationship *handlers.RelationshipHandler
	Agent        *handlers.AgentHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Collection:   handlers.NewCollectionHandler(log, services.Collection),
		Entity:       handlers.NewEntityHandler(log, services.Entity),
		Version:      handlers.NewVersionHandler(log, services.Entity, services.Version, services.Lineage),
		Relationship: handlers.NewRelationshipHandler(log, services.Relationship),
		Agent:        handlers.NewAgentHandler(log, services.Agent),
	}
}
