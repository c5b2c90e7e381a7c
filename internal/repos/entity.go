package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type EntityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entity *types.Entity, payload types.VariantPayload) (*types.Entity, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error)
	GetByHandle(ctx context.Context, tx *gorm.DB, collectionName, name string) (*types.Entity, error)
	NameExists(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, name string) (bool, error)
	ListByCollectionID(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, offset, limit int) ([]*types.Entity, error)
	SavePayload(ctx context.Context, tx *gorm.DB, payload types.VariantPayload) error
	Rename(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, name string) error
	// CompareAndSwapDigest advances the entity's current-digest pointer only
	// if it still holds expected. Returns false when a concurrent writer won.
	CompareAndSwapDigest(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, expected, next string) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, entity *types.Entity) error
}

type entityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	return &entityRepo{db: db, log: baseLog.With("repo", "EntityRepo")}
}

func (r *entityRepo) Create(ctx context.Context, tx *gorm.DB, entity *types.Entity, payload types.VariantPayload) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	if err := transaction.WithContext(ctx).Create(payload).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *entityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Entity
	if err := transaction.WithContext(ctx).
		Preload("Collection").
		Preload("Dataset").
		Preload("TrainedModel").
		Preload("Task").
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "entity", Ref: id.String()}
		}
		return nil, err
	}
	return &result, nil
}

func (r *entityRepo) GetByHandle(ctx context.Context, tx *gorm.DB, collectionName, name string) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Entity
	if err := transaction.WithContext(ctx).
		Joins("JOIN collections ON collections.id = entities.collection_id").
		Where("collections.name = ? AND entities.name = ?", collectionName, name).
		Preload("Collection").
		Preload("Dataset").
		Preload("TrainedModel").
		Preload("Task").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "entity", Ref: fmt.Sprintf("%s/%s", collectionName, name)}
		}
		return nil, err
	}
	return &result, nil
}

func (r *entityRepo) NameExists(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, name string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Where("collection_id = ? AND name = ?", collectionID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *entityRepo) ListByCollectionID(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, offset, limit int) ([]*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Entity
	if err := transaction.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Preload("Dataset").
		Preload("TrainedModel").
		Preload("Task").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *entityRepo) SavePayload(ctx context.Context, tx *gorm.DB, payload types.VariantPayload) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(payload).Error
}

func (r *entityRepo) Rename(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, name string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Where("id = ?", entityID).
		Update("name", name).Error
}

func (r *entityRepo) CompareAndSwapDigest(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, expected, next string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Entity{}).
		Where("id = ? AND current_digest = ?", entityID, expected).
		Update("current_digest", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *entityRepo) Delete(ctx context.Context, tx *gorm.DB, entity *types.Entity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Versions and tags are owned by the entity and go with it. Relationship
	// edges are not: the service layer rejects deletion while any edge still
	// references the entity.
	if err := transaction.WithContext(ctx).
		Where("entity_id = ?", entity.ID).
		Delete(&types.VersionTag{}).Error; err != nil {
		return err
	}
	if err := transaction.WithContext(ctx).
		Where("entity_id = ?", entity.ID).
		Delete(&types.EntityVersion{}).Error; err != nil {
		return err
	}
	if p := entity.Payload(); p != nil {
		if err := transaction.WithContext(ctx).Delete(p).Error; err != nil {
			return err
		}
	}
	return transaction.WithContext(ctx).Delete(&types.Entity{}, "id = ?", entity.ID).Error
}
