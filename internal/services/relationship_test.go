package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/mlcatalog-backend/internal/types"
)

func TestCreateRelationshipResolvesHandles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	raw := env.mustDataset(t, "research", "raw", "s3://bucket/raw")
	model := env.mustModel(t, "research", "classifier", "s3://bucket/model")

	agent, err := env.agents.Create(ctx, nil, "trainer-bot", "pipeline")
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	rel := env.mustEdge(t, "dataset/research/raw", "trained_model/research/classifier", "training", &agent.ID)
	if rel.SourceEntityID != raw.ID || rel.TargetEntityID != model.ID {
		t.Fatalf("endpoints not resolved: %+v", rel)
	}
	if rel.ActivityName != "training" {
		t.Fatalf("unexpected activity: %s", rel.ActivityName)
	}
	if rel.Agent == nil || rel.Agent.Name != "trainer-bot" {
		t.Fatalf("agent not attached: %+v", rel.Agent)
	}
	if rel.SourceEntity == nil || rel.SourceEntity.Name != "raw" {
		t.Fatalf("source not preloaded: %+v", rel.SourceEntity)
	}
}

func TestCreateRelationshipRejectsSelfLoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "raw", "s3://bucket/raw")

	_, err := env.relationships.Create(ctx, nil, CreateRelationshipInput{
		SourceRef:    "dataset/research/raw",
		TargetRef:    "dataset/research/raw",
		ActivityName: "noop",
	})
	if !types.IsSelfLoop(err) {
		t.Fatalf("expected self loop error, got %v", err)
	}
}

func TestCreateRelationshipUnknownEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "raw", "s3://bucket/raw")

	_, err := env.relationships.Create(ctx, nil, CreateRelationshipInput{
		SourceRef:    "dataset/research/raw",
		TargetRef:    "trained_model/research/ghost",
		ActivityName: "training",
	})
	if !types.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRelationshipKindMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "raw", "s3://bucket/raw")
	env.mustModel(t, "research", "classifier", "s3://bucket/model")

	// classifier exists but is not a dataset
	_, err := env.relationships.Create(ctx, nil, CreateRelationshipInput{
		SourceRef:    "dataset/research/classifier",
		TargetRef:    "dataset/research/raw",
		ActivityName: "training",
	})
	if !types.IsNotFound(err) {
		t.Fatalf("expected not found for kind mismatch, got %v", err)
	}
}

func TestCreateRelationshipUnknownAgent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "raw", "s3://bucket/raw")
	env.mustModel(t, "research", "classifier", "s3://bucket/model")

	ghost := uuid.New()
	_, err := env.relationships.Create(ctx, nil, CreateRelationshipInput{
		SourceRef:    "dataset/research/raw",
		TargetRef:    "trained_model/research/classifier",
		ActivityName: "training",
		AgentID:      &ghost,
	})
	if !types.IsNotFound(err) {
		t.Fatalf("expected not found for ghost agent, got %v", err)
	}
}

func TestDeleteRelationship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustCollection(t, "research")
	env.mustDataset(t, "research", "raw", "s3://bucket/raw")
	env.mustModel(t, "research", "classifier", "s3://bucket/model")
	rel := env.mustEdge(t, "dataset/research/raw", "trained_model/research/classifier", "training", nil)

	if err := env.relationships.Delete(ctx, nil, rel.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.relationships.Get(ctx, nil, rel.ID); !types.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := env.relationships.Delete(ctx, nil, rel.ID); !types.IsNotFound(err) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestParseEntityRef(t *testing.T) {
	ref, err := ParseEntityRef("dataset/research/raw")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ref.Kind != "dataset" || ref.Collection != "research" || ref.Name != "raw" {
		t.Fatalf("unexpected parse result: %+v", ref)
	}

	for _, bad := range []string{"", "dataset/research", "dataset//raw", "pipeline/research/raw", "dataset/research/raw/extra"} {
		if _, err := ParseEntityRef(bad); !types.IsValidation(err) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
}
