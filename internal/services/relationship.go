package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/repos"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type CreateRelationshipInput struct {
	// SourceRef and TargetRef are "kind/collection/name" handles.
	SourceRef    string
	TargetRef    string
	ActivityName string
	AgentID      *uuid.UUID
}

type RelationshipService interface {
	Create(ctx context.Context, tx *gorm.DB, input CreateRelationshipInput) (*types.EntityRelationship, error)
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EntityRelationship, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.EntityRelationship, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type relationshipService struct {
	db               *gorm.DB
	log              *logger.Logger
	entityRepo       repos.EntityRepo
	relationshipRepo repos.RelationshipRepo
	agentRepo        repos.AgentRepo
}

func NewRelationshipService(
	db *gorm.DB,
	baseLog *logger.Logger,
	entityRepo repos.EntityRepo,
	relationshipRepo repos.RelationshipRepo,
	agentRepo repos.AgentRepo,
) RelationshipService {
	return &relationshipService{
		db:               db,
		log:              baseLog.With("service", "RelationshipService"),
		entityRepo:       entityRepo,
		relationshipRepo: relationshipRepo,
		agentRepo:        agentRepo,
	}
}

func (s *relationshipService) Create(ctx context.Context, tx *gorm.DB, input CreateRelationshipInput) (*types.EntityRelationship, error) {
	activityName := strings.TrimSpace(input.ActivityName)
	if activityName == "" {
		return nil, &types.ValidationError{Field: "activity_name", Reason: "activity name is required"}
	}

	sourceRef, err := ParseEntityRef(input.SourceRef)
	if err != nil {
		return nil, err
	}
	targetRef, err := ParseEntityRef(input.TargetRef)
	if err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.EntityRelationship
	err = transaction.Transaction(func(innerTx *gorm.DB) error {
		source, err := s.resolveEndpoint(ctx, innerTx, sourceRef)
		if err != nil {
			return err
		}
		target, err := s.resolveEndpoint(ctx, innerTx, targetRef)
		if err != nil {
			return err
		}
		if source.ID == target.ID {
			return &types.SelfLoopError{EntityID: source.ID}
		}
		if input.AgentID != nil {
			if _, err := s.agentRepo.GetByID(ctx, innerTx, *input.AgentID); err != nil {
				return err
			}
		}

		created = &types.EntityRelationship{
			ID:             uuid.New(),
			SourceEntityID: source.ID,
			TargetEntityID: target.ID,
			ActivityName:   activityName,
			AgentID:        input.AgentID,
			CreatedAt:      time.Now().UTC(),
		}
		_, err = s.relationshipRepo.Create(ctx, innerTx, created)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("relationship created",
		"source", sourceRef.String(),
		"target", targetRef.String(),
		"activity", activityName,
	)
	return s.relationshipRepo.GetByID(ctx, tx, created.ID)
}

func (s *relationshipService) resolveEndpoint(ctx context.Context, tx *gorm.DB, ref EntityRef) (*types.Entity, error) {
	entity, err := s.entityRepo.GetByHandle(ctx, tx, ref.Collection, ref.Name)
	if err != nil {
		return nil, err
	}
	if entity.Kind != ref.Kind {
		return nil, &types.NotFoundError{Resource: "entity", Ref: ref.String()}
	}
	return entity, nil
}

func (s *relationshipService) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EntityRelationship, error) {
	return s.relationshipRepo.GetByID(ctx, tx, id)
}

func (s *relationshipService) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.EntityRelationship, error) {
	return s.relationshipRepo.List(ctx, tx, offset, limit)
}

func (s *relationshipService) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return s.relationshipRepo.Delete(ctx, tx, id)
}
