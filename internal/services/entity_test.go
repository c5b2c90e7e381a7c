package services

import (
	"context"
	"testing"

	"github.com/yungbote/mlcatalog-backend/internal/types"
)

func TestEntityNamesUniquePerCollection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustCollection(t, "staging")
	env.mustDataset(t, "research", "images", "s3://bucket/images")

	_, err := env.entities.Create(ctx, nil, "research", "images", &types.Dataset{
		DataPath: "s3://bucket/other",
		Format:   "csv",
	}, "", nil, nil)
	if !types.IsDuplicateName(err) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}

	// same name in another collection is fine
	env.mustDataset(t, "staging", "images", "s3://bucket/staging-images")
}

func TestEntityKindIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "images", "s3://bucket/images")

	_, err := env.entities.Update(ctx, nil, types.KindDataset, "research", "images", "", &types.TrainedModel{
		ModelPath: "s3://bucket/model",
		Framework: "pytorch",
	}, "", nil, nil)
	if !types.IsValidation(err) {
		t.Fatalf("expected validation error changing kind, got %v", err)
	}
}

func TestUpdateRenamesEntity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	entity := env.mustDataset(t, "research", "images", "s3://bucket/images")

	updated, err := env.entities.Update(ctx, nil, types.KindDataset, "research", "images", "imagery", &types.Dataset{
		DataPath: "s3://bucket/images",
		Format:   "parquet",
	}, "renamed", nil, nil)
	if err != nil {
		t.Fatalf("rename update: %v", err)
	}
	if updated.Name != "imagery" {
		t.Fatalf("expected renamed entity, got %q", updated.Name)
	}
	// the name is a versioned field, so the rename appends a version
	if updated.CurrentDigest == entity.CurrentDigest {
		t.Fatalf("expected rename to move the current digest")
	}
	history, err := env.versions.History(ctx, nil, entity.ID, 0, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.TotalVersions != 2 {
		t.Fatalf("expected 2 versions after rename, got %d", history.TotalVersions)
	}

	if _, err := env.entities.Get(ctx, nil, types.KindDataset, "research", "images"); !types.IsNotFound(err) {
		t.Fatalf("expected old name gone, got %v", err)
	}
	if _, err := env.entities.Get(ctx, nil, types.KindDataset, "research", "imagery"); err != nil {
		t.Fatalf("get by new name: %v", err)
	}
}

func TestUpdateRenameRejectsTakenName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "images", "s3://bucket/images")
	env.mustDataset(t, "research", "labels", "s3://bucket/labels")

	_, err := env.entities.Update(ctx, nil, types.KindDataset, "research", "images", "labels", &types.Dataset{
		DataPath: "s3://bucket/images",
		Format:   "parquet",
	}, "", nil, nil)
	if !types.IsDuplicateName(err) {
		t.Fatalf("expected duplicate name error renaming onto a taken name, got %v", err)
	}
}

func TestGetEntityKindMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "images", "s3://bucket/images")

	if _, err := env.entities.Get(ctx, nil, types.KindTrainedModel, "research", "images"); !types.IsNotFound(err) {
		t.Fatalf("expected not found for wrong kind, got %v", err)
	}
}

func TestEntityPayloadValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")

	_, err := env.entities.Create(ctx, nil, "research", "broken", &types.Dataset{Format: "csv"}, "", nil, nil)
	if !types.IsValidation(err) {
		t.Fatalf("expected validation error for missing data path, got %v", err)
	}
	_, err = env.entities.Create(ctx, nil, "research", "broken", &types.Task{}, "", nil, nil)
	if !types.IsValidation(err) {
		t.Fatalf("expected validation error for empty workflow, got %v", err)
	}
}

func TestDeleteEntityGuardedByEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "raw", "s3://bucket/raw")
	env.mustModel(t, "research", "classifier", "s3://bucket/model")
	rel := env.mustEdge(t, "dataset/research/raw", "trained_model/research/classifier", "training", nil)

	err := env.entities.Delete(ctx, nil, types.KindDataset, "research", "raw")
	if !types.IsValidation(err) {
		t.Fatalf("expected delete to be blocked by provenance edge, got %v", err)
	}

	if err := env.relationships.Delete(ctx, nil, rel.ID); err != nil {
		t.Fatalf("delete relationship: %v", err)
	}
	if err := env.entities.Delete(ctx, nil, types.KindDataset, "research", "raw"); err != nil {
		t.Fatalf("delete after edge removal: %v", err)
	}
	if _, err := env.entities.Get(ctx, nil, types.KindDataset, "research", "raw"); !types.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteEntityRemovesVersionsAndTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	entity := env.mustDataset(t, "research", "raw", "s3://bucket/raw")

	if _, err := env.versions.TagVersion(ctx, nil, entity.ID, "0", "v1.0"); err != nil {
		t.Fatalf("tag: %v", err)
	}
	if err := env.entities.Delete(ctx, nil, types.KindDataset, "research", "raw"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var versionCount, tagCount int64
	env.db.Model(&types.EntityVersion{}).Where("entity_id = ?", entity.ID).Count(&versionCount)
	env.db.Model(&types.VersionTag{}).Where("entity_id = ?", entity.ID).Count(&tagCount)
	if versionCount != 0 || tagCount != 0 {
		t.Fatalf("expected versions and tags gone, got %d versions %d tags", versionCount, tagCount)
	}
}

func TestCollectionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")

	if _, err := env.collections.Create(ctx, nil, "research", ""); !types.IsDuplicateName(err) {
		t.Fatalf("expected duplicate collection error, got %v", err)
	}
	if _, err := env.collections.Get(ctx, nil, "ghost"); !types.IsNotFound(err) {
		t.Fatalf("expected not found for ghost collection, got %v", err)
	}

	env.mustDataset(t, "research", "images", "s3://bucket/images")
	entities, err := env.collections.ListEntities(ctx, nil, "research", 0, 10)
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(entities) != 1 || entities[0].Name != "images" {
		t.Fatalf("unexpected entities: %+v", entities)
	}

	cols, err := env.collections.List(ctx, nil, 0, 10)
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(cols) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(cols))
	}
}
