package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type RelationshipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rel *types.EntityRelationship) (*types.EntityRelationship, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EntityRelationship, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.EntityRelationship, error)
	// ListOutgoing returns edges where the entity is the source, in creation
	// order; ListIncoming the edges where it is the target.
	ListOutgoing(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.EntityRelationship, error)
	ListIncoming(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.EntityRelationship, error)
	CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error)
}

type relationshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) RelationshipRepo {
	return &relationshipRepo{db: db, log: baseLog.With("repo", "RelationshipRepo")}
}

func (r *relationshipRepo) Create(ctx context.Context, tx *gorm.DB, rel *types.EntityRelationship) (*types.EntityRelationship, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(rel).Error; err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *relationshipRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.EntityRelationship, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.EntityRelationship
	if err := transaction.WithContext(ctx).
		Preload("SourceEntity").
		Preload("SourceEntity.Collection").
		Preload("TargetEntity").
		Preload("TargetEntity.Collection").
		Preload("Agent").
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "relationship", Ref: id.String()}
		}
		return nil, err
	}
	return &result, nil
}

func (r *relationshipRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).Delete(&types.EntityRelationship{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &types.NotFoundError{Resource: "relationship", Ref: id.String()}
	}
	return nil
}

func (r *relationshipRepo) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.EntityRelationship, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntityRelationship
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Preload("SourceEntity").
		Preload("SourceEntity.Collection").
		Preload("TargetEntity").
		Preload("TargetEntity.Collection").
		Preload("Agent").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *relationshipRepo) ListOutgoing(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.EntityRelationship, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntityRelationship
	if err := transaction.WithContext(ctx).
		Where("source_entity_id = ?", entityID).
		Order("created_at ASC").
		Preload("TargetEntity").
		Preload("TargetEntity.Collection").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *relationshipRepo) ListIncoming(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.EntityRelationship, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntityRelationship
	if err := transaction.WithContext(ctx).
		Where("target_entity_id = ?", entityID).
		Order("created_at ASC").
		Preload("SourceEntity").
		Preload("SourceEntity.Collection").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *relationshipRepo) CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.EntityRelationship{}).
		Where("source_entity_id = ? OR target_entity_id = ?", entityID, entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
