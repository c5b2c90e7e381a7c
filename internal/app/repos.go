package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/repos"
)

type Repos struct {
	Collection   repos.CollectionRepo
	Entity       repos.EntityRepo
	Version      repos.VersionRepo
	Relationship repos.RelationshipRepo
	Agent        repos.AgentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Collection:   repos.NewCollectionRepo(db, log),
		Entity:       repos.NewEntityRepo(db, log),
		Version:      repos.NewVersionRepo(db, log),
		Relationship: repos.NewRelationshipRepo(db, log),
		Agent:        repos.NewAgentRepo(db, log),
	}
}
