package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type CollectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, collection *types.Collection) (*types.Collection, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Collection, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Collection, error)
	NameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Collection, error)
}

type collectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{db: db, log: baseLog.With("repo", "CollectionRepo")}
}

func (r *collectionRepo) Create(ctx context.Context, tx *gorm.DB, collection *types.Collection) (*types.Collection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

func (r *collectionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Collection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Collection
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "collection", Ref: id.String()}
		}
		return nil, err
	}
	return &result, nil
}

func (r *collectionRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Collection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Collection
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "collection", Ref: name}
		}
		return nil, err
	}
	return &result, nil
}

func (r *collectionRepo) NameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Collection{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *collectionRepo) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Collection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Collection
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
