package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/repos"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type CollectionService interface {
	Create(ctx context.Context, tx *gorm.DB, name, description string) (*types.Collection, error)
	Get(ctx context.Context, tx *gorm.DB, name string) (*types.Collection, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Collection, error)
	ListEntities(ctx context.Context, tx *gorm.DB, name string, offset, limit int) ([]*types.Entity, error)
}

type collectionService struct {
	db             *gorm.DB
	log            *logger.Logger
	collectionRepo repos.CollectionRepo
	entityRepo     repos.EntityRepo
}

func NewCollectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	collectionRepo repos.CollectionRepo,
	entityRepo repos.EntityRepo,
) CollectionService {
	return &collectionService{
		db:             db,
		log:            baseLog.With("service", "CollectionService"),
		collectionRepo: collectionRepo,
		entityRepo:     entityRepo,
	}
}

func (s *collectionService) Create(ctx context.Context, tx *gorm.DB, name, description string) (*types.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &types.ValidationError{Field: "name", Reason: "collection name is required"}
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.Collection
	err := transaction.Transaction(func(innerTx *gorm.DB) error {
		exists, err := s.collectionRepo.NameExists(ctx, innerTx, name)
		if err != nil {
			return fmt.Errorf("check collection name: %w", err)
		}
		if exists {
			return &types.DuplicateNameError{Collection: name, Name: name}
		}
		now := time.Now().UTC()
		created = &types.Collection{
			ID:          uuid.New(),
			Name:        name,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = s.collectionRepo.Create(ctx, innerTx, created)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("collection created", "collection", name)
	return created, nil
}

func (s *collectionService) Get(ctx context.Context, tx *gorm.DB, name string) (*types.Collection, error) {
	return s.collectionRepo.GetByName(ctx, tx, name)
}

func (s *collectionService) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Collection, error) {
	return s.collectionRepo.List(ctx, tx, offset, limit)
}

func (s *collectionService) ListEntities(ctx context.Context, tx *gorm.DB, name string, offset, limit int) ([]*types.Entity, error) {
	collection, err := s.collectionRepo.GetByName(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	return s.entityRepo.ListByCollectionID(ctx, tx, collection.ID, offset, limit)
}
