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

type EntityService interface {
	// Create registers a new entity under the collection and snapshots its
	// sequence-0 version in the same transaction.
	Create(ctx context.Context, tx *gorm.DB, collectionName, name string, payload types.VariantPayload, message string, tags []string, createdBy *uuid.UUID) (*types.Entity, error)
	Get(ctx context.Context, tx *gorm.DB, kind, collectionName, name string) (*types.Entity, error)
	// Update replaces the entity's payload fields and appends a version when
	// the content actually changed. A non-empty newName differing from the
	// current name renames the entity; the name is a versioned field, so the
	// rename lands in the same version as the payload change.
	Update(ctx context.Context, tx *gorm.DB, kind, collectionName, name, newName string, payload types.VariantPayload, message string, tags []string, createdBy *uuid.UUID) (*types.Entity, error)
	// Delete removes the entity with its versions and tags. It is rejected
	// while any relationship edge still references the entity.
	Delete(ctx context.Context, tx *gorm.DB, kind, collectionName, name string) error
}

type entityService struct {
	db               *gorm.DB
	log              *logger.Logger
	collectionRepo   repos.CollectionRepo
	entityRepo       repos.EntityRepo
	relationshipRepo repos.RelationshipRepo
	versionService   VersionService
}

func NewEntityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	collectionRepo repos.CollectionRepo,
	entityRepo repos.EntityRepo,
	relationshipRepo repos.RelationshipRepo,
	versionService VersionService,
) EntityService {
	return &entityService{
		db:               db,
		log:              baseLog.With("service", "EntityService"),
		collectionRepo:   collectionRepo,
		entityRepo:       entityRepo,
		relationshipRepo: relationshipRepo,
		versionService:   versionService,
	}
}

func (s *entityService) Create(ctx context.Context, tx *gorm.DB, collectionName, name string, payload types.VariantPayload, message string, tags []string, createdBy *uuid.UUID) (*types.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &types.ValidationError{Field: "name", Reason: "entity name is required"}
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var entityID uuid.UUID
	err := transaction.Transaction(func(innerTx *gorm.DB) error {
		collection, err := s.collectionRepo.GetByName(ctx, innerTx, collectionName)
		if err != nil {
			return err
		}
		exists, err := s.entityRepo.NameExists(ctx, innerTx, collection.ID, name)
		if err != nil {
			return err
		}
		if exists {
			return &types.DuplicateNameError{Collection: collectionName, Name: name}
		}

		entity := &types.Entity{
			ID:           uuid.New(),
			CollectionID: collection.ID,
			Name:         name,
			Kind:         payload.Kind(),
			CreatedAt:    time.Now().UTC(),
		}
		entityID = entity.ID
		setPayloadEntityID(payload, entity.ID)
		if _, err := s.entityRepo.Create(ctx, innerTx, entity, payload); err != nil {
			return err
		}

		if message == "" {
			message = "Initial version"
		}
		_, err = s.versionService.CreateVersion(ctx, innerTx, entity.ID, message, tags, createdBy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("entity created", "collection", collectionName, "name", name, "kind", payload.Kind())
	return s.entityRepo.GetByID(ctx, tx, entityID)
}

func (s *entityService) Get(ctx context.Context, tx *gorm.DB, kind, collectionName, name string) (*types.Entity, error) {
	entity, err := s.entityRepo.GetByHandle(ctx, tx, collectionName, name)
	if err != nil {
		return nil, err
	}
	if kind != "" && entity.Kind != kind {
		return nil, &types.NotFoundError{Resource: "entity", Ref: kind + "/" + collectionName + "/" + name}
	}
	return entity, nil
}

func (s *entityService) Update(ctx context.Context, tx *gorm.DB, kind, collectionName, name, newName string, payload types.VariantPayload, message string, tags []string, createdBy *uuid.UUID) (*types.Entity, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	newName = strings.TrimSpace(newName)

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var entityID uuid.UUID
	err := transaction.Transaction(func(innerTx *gorm.DB) error {
		entity, err := s.Get(ctx, innerTx, kind, collectionName, name)
		if err != nil {
			return err
		}
		if payload.Kind() != entity.Kind {
			return &types.ValidationError{Field: "kind", Reason: "entity kind is immutable"}
		}
		entityID = entity.ID

		if newName != "" && newName != entity.Name {
			exists, err := s.entityRepo.NameExists(ctx, innerTx, entity.CollectionID, newName)
			if err != nil {
				return err
			}
			if exists {
				return &types.DuplicateNameError{Collection: collectionName, Name: newName}
			}
			if err := s.entityRepo.Rename(ctx, innerTx, entity.ID, newName); err != nil {
				return err
			}
		}

		setPayloadEntityID(payload, entity.ID)
		if err := s.entityRepo.SavePayload(ctx, innerTx, payload); err != nil {
			return err
		}
		_, err = s.versionService.CreateVersion(ctx, innerTx, entity.ID, message, tags, createdBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.entityRepo.GetByID(ctx, tx, entityID)
}

func (s *entityService) Delete(ctx context.Context, tx *gorm.DB, kind, collectionName, name string) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.Transaction(func(innerTx *gorm.DB) error {
		entity, err := s.Get(ctx, innerTx, kind, collectionName, name)
		if err != nil {
			return err
		}
		edges, err := s.relationshipRepo.CountByEntity(ctx, innerTx, entity.ID)
		if err != nil {
			return err
		}
		if edges > 0 {
			return &types.ValidationError{
				Field:  "entity",
				Reason: "entity is referenced by provenance relationships and cannot be deleted",
			}
		}
		return s.entityRepo.Delete(ctx, innerTx, entity)
	})
}

func setPayloadEntityID(payload types.VariantPayload, entityID uuid.UUID) {
	switch p := payload.(type) {
	case *types.Dataset:
		p.EntityID = entityID
	case *types.TrainedModel:
		p.EntityID = entityID
	case *types.Task:
		p.EntityID = entityID
	}
}

func validatePayload(payload types.VariantPayload) error {
	if payload == nil {
		return &types.ValidationError{Field: "payload", Reason: "entity payload is required"}
	}
	switch p := payload.(type) {
	case *types.Dataset:
		if strings.TrimSpace(p.DataPath) == "" {
			return &types.ValidationError{Field: "data_path", Reason: "data path is required"}
		}
		if strings.TrimSpace(p.Format) == "" {
			return &types.ValidationError{Field: "format", Reason: "format is required"}
		}
	case *types.TrainedModel:
		if strings.TrimSpace(p.ModelPath) == "" {
			return &types.ValidationError{Field: "model_path", Reason: "model path is required"}
		}
		if strings.TrimSpace(p.Framework) == "" {
			return &types.ValidationError{Field: "framework", Reason: "framework is required"}
		}
	case *types.Task:
		if len(p.Workflow) == 0 {
			return &types.ValidationError{Field: "workflow", Reason: "workflow document is required"}
		}
	default:
		return &types.ValidationError{Field: "payload", Reason: "unknown payload kind"}
	}
	return nil
}
