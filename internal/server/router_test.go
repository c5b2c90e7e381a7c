package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/mlcatalog-backend/internal/handlers"
	"github.com/yungbote/mlcatalog-backend/internal/middleware"
	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/repos"
	"github.com/yungbote/mlcatalog-backend/internal/services"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

const testAdminToken = "router-test-token"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	versionService := services.NewVersionService(db, log, entityRepo, versionRepo, 3)
	collectionService := services.NewCollectionService(db, log, collectionRepo, entityRepo)
	entityService := services.NewEntityService(db, log, collectionRepo, entityRepo, relationshipRepo, versionService)
	lineageService := services.NewLineageService(db, log, entityRepo, relationshipRepo, 25)
	relationshipService := services.NewRelationshipService(db, log, entityRepo, relationshipRepo, agentRepo)
	agentService := services.NewAgentService(db, log, agentRepo)

	return NewRouter(RouterConfig{
		ServiceName:         "mlcatalog-test",
		DB:                  db,
		AuthMiddleware:      middleware.NewAuthMiddleware(log, testAdminToken),
		CollectionHandler:   handlers.NewCollectionHandler(log, collectionService),
		EntityHandler:       handlers.NewEntityHandler(log, entityService),
		VersionHandler:      handlers.NewVersionHandler(log, entityService, versionService, lineageService),
		RelationshipHandler: handlers.NewRelationshipHandler(log, relationshipService),
		AgentHandler:        handlers.NewAgentHandler(log, agentService),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthcheck(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMutationsRequireAdminToken(t *testing.T) {
	router := newTestRouter(t)

	body := map[string]string{"name": "research"}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/collections", "", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/collections", "wrong", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/collections", testAdminToken, body); rec.Code != http.StatusCreated {
		t.Fatalf("valid token got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDatasetRoundTripOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	if rec := doJSON(t, router, http.MethodPost, "/api/v1/collections", testAdminToken, map[string]string{"name": "research"}); rec.Code != http.StatusCreated {
		t.Fatalf("create collection got %d: %s", rec.Code, rec.Body.String())
	}

	create := map[string]interface{}{
		"name":      "images",
		"data_path": "s3://bucket/images",
		"format":    "parquet",
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/datasets/research", testAdminToken, create); rec.Code != http.StatusCreated {
		t.Fatalf("create dataset got %d: %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/datasets/research/images", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get dataset got %d: %s", rec.Code, rec.Body.String())
	}
	var entity types.Entity
	if err := json.Unmarshal(rec.Body.Bytes(), &entity); err != nil {
		t.Fatalf("decode dataset: %v", err)
	}
	if entity.Name != "images" || entity.Kind != types.KindDataset || entity.CurrentDigest == "" {
		t.Fatalf("unexpected entity: %+v", entity)
	}

	// conflict on duplicate name
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/datasets/research", testAdminToken, create); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate dataset got %d: %s", rec.Code, rec.Body.String())
	}

	// version history is public
	rec = doJSON(t, router, http.MethodGet, "/api/v1/entities/dataset/research/images/versions", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history got %d: %s", rec.Code, rec.Body.String())
	}
	var history services.VersionHistory
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if history.TotalVersions != 1 {
		t.Fatalf("expected 1 version over http, got %d", history.TotalVersions)
	}

	// checkout by sequence index
	rec = doJSON(t, router, http.MethodGet, "/api/v1/entities/dataset/research/images/versions/0", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout got %d: %s", rec.Code, rec.Body.String())
	}

	// unknown entity maps to 404
	rec = doJSON(t, router, http.MethodGet, "/api/v1/datasets/research/ghost", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ghost dataset got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDatasetRenameOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	if rec := doJSON(t, router, http.MethodPost, "/api/v1/collections", testAdminToken, map[string]string{"name": "research"}); rec.Code != http.StatusCreated {
		t.Fatalf("create collection got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/datasets/research", testAdminToken, map[string]interface{}{
		"name": "images", "data_path": "s3://bucket/images", "format": "parquet",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create dataset got %d: %s", rec.Code, rec.Body.String())
	}

	// body name differs from the path name: rename
	update := map[string]interface{}{
		"name": "imagery", "data_path": "s3://bucket/images", "format": "parquet",
	}
	rec := doJSON(t, router, http.MethodPut, "/api/v1/datasets/research/images", testAdminToken, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename got %d: %s", rec.Code, rec.Body.String())
	}
	var entity types.Entity
	if err := json.Unmarshal(rec.Body.Bytes(), &entity); err != nil {
		t.Fatalf("decode entity: %v", err)
	}
	if entity.Name != "imagery" {
		t.Fatalf("expected renamed entity, got %q", entity.Name)
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/datasets/research/imagery", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("get by new name got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/datasets/research/images", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("old name got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRelationshipAndLineageOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	if rec := doJSON(t, router, http.MethodPost, "/api/v1/collections", testAdminToken, map[string]string{"name": "research"}); rec.Code != http.StatusCreated {
		t.Fatalf("create collection got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/datasets/research", testAdminToken, map[string]interface{}{
		"name": "raw", "data_path": "s3://bucket/raw", "format": "parquet",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create dataset got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/trained-models/research", testAdminToken, map[string]interface{}{
		"name": "classifier", "model_path": "s3://bucket/model", "framework": "pytorch",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create model got %d: %s", rec.Code, rec.Body.String())
	}

	edge := map[string]interface{}{
		"source_entity_str": "dataset/research/raw",
		"target_entity_str": "trained_model/research/classifier",
		"activity_name":     "training",
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/entity-relationships", testAdminToken, edge); rec.Code != http.StatusCreated {
		t.Fatalf("create relationship got %d: %s", rec.Code, rec.Body.String())
	}

	// edge listing is public
	rec := doJSON(t, router, http.MethodGet, "/api/v1/entity-relationships", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list relationships got %d: %s", rec.Code, rec.Body.String())
	}
	var edges []types.EntityRelationship
	if err := json.Unmarshal(rec.Body.Bytes(), &edges); err != nil {
		t.Fatalf("decode relationships: %v", err)
	}
	if len(edges) != 1 || edges[0].ActivityName != "training" {
		t.Fatalf("unexpected relationships: %+v", edges)
	}

	// self loop maps to 422
	loop := map[string]interface{}{
		"source_entity_str": "dataset/research/raw",
		"target_entity_str": "dataset/research/raw",
		"activity_name":     "noop",
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/entity-relationships", testAdminToken, loop); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("self loop got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/entities/trained_model/research/classifier/upstream", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("upstream got %d: %s", rec.Code, rec.Body.String())
	}
	var node services.LineageNode
	if err := json.Unmarshal(rec.Body.Bytes(), &node); err != nil {
		t.Fatalf("decode lineage: %v", err)
	}
	if len(node.Upstream) != 1 || node.Upstream[0].Name != "raw" {
		t.Fatalf("unexpected lineage: %+v", node)
	}
}
