package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/repos"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type testEnv struct {
	db            *gorm.DB
	collections   CollectionService
	entities      EntityService
	versions      VersionService
	lineage       LineageService
	relationships RelationshipService
	agents        AgentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.Collection{},
		&types.Agent{},
		&types.Entity{},
		&types.Dataset{},
		&types.TrainedModel{},
		&types.Task{},
		&types.EntityVersion{},
		&types.VersionTag{},
		&types.EntityRelationship{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	collectionRepo := repos.NewCollectionRepo(db, log)
	entityRepo := repos.NewEntityRepo(db, log)
	versionRepo := repos.NewVersionRepo(db, log)
	relationshipRepo := repos.NewRelationshipRepo(db, log)
	agentRepo := repos.NewAgentRepo(db, log)

	versionService := NewVersionService(db, log, entityRepo, versionRepo, 3)
	return &testEnv{
		db:            db,
		collections:   NewCollectionService(db, log, collectionRepo, entityRepo),
		entities:      NewEntityService(db, log, collectionRepo, entityRepo, relationshipRepo, versionService),
		versions:      versionService,
		lineage:       NewLineageService(db, log, entityRepo, relationshipRepo, 25),
		relationships: NewRelationshipService(db, log, entityRepo, relationshipRepo, agentRepo),
		agents:        NewAgentService(db, log, agentRepo),
	}
}

func (e *testEnv) mustCollection(t *testing.T, name string) *types.Collection {
	t.Helper()
	col, err := e.collections.Create(context.Background(), nil, name, "")
	if err != nil {
		t.Fatalf("create collection %s: %v", name, err)
	}
	return col
}

func (e *testEnv) mustDataset(t *testing.T, collection, name, dataPath string) *types.Entity {
	t.Helper()
	entity, err := e.entities.Create(context.Background(), nil, collection, name, &types.Dataset{
		DataPath: dataPath,
		Format:   "parquet",
	}, "", nil, nil)
	if err != nil {
		t.Fatalf("create dataset %s/%s: %v", collection, name, err)
	}
	return entity
}

func (e *testEnv) mustModel(t *testing.T, collection, name, modelPath string) *types.Entity {
	t.Helper()
	entity, err := e.entities.Create(context.Background(), nil, collection, name, &types.TrainedModel{
		ModelPath: modelPath,
		Framework: "pytorch",
	}, "", nil, nil)
	if err != nil {
		t.Fatalf("create model %s/%s: %v", collection, name, err)
	}
	return entity
}

func (e *testEnv) mustTask(t *testing.T, collection, name string) *types.Entity {
	t.Helper()
	workflow, _ := json.Marshal(map[string]interface{}{"steps": []string{"train"}})
	entity, err := e.entities.Create(context.Background(), nil, collection, name, &types.Task{
		Workflow: datatypes.JSON(workflow),
	}, "", nil, nil)
	if err != nil {
		t.Fatalf("create task %s/%s: %v", collection, name, err)
	}
	return entity
}

func (e *testEnv) mustEdge(t *testing.T, sourceRef, targetRef, activity string, agentID *uuid.UUID) *types.EntityRelationship {
	t.Helper()
	rel, err := e.relationships.Create(context.Background(), nil, CreateRelationshipInput{
		SourceRef:    sourceRef,
		TargetRef:    targetRef,
		ActivityName: activity,
		AgentID:      agentID,
	})
	if err != nil {
		t.Fatalf("create relationship %s -> %s: %v", sourceRef, targetRef, err)
	}
	return rel
}
