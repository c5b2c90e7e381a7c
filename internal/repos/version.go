package repos

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type VersionRepo interface {
	Append(ctx context.Context, tx *gorm.DB, version *types.EntityVersion) (*types.EntityVersion, error)
	CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error)
	ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, offset, limit int) ([]*types.EntityVersion, error)
	GetBySequence(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, sequenceIndex int) (*types.EntityVersion, error)
	GetByDigest(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, digest string) (*types.EntityVersion, error)
	FindByDigestPrefix(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, prefix string) ([]*types.EntityVersion, error)
	UpsertTag(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, digest, tagName string) (*types.VersionTag, error)
	GetTagByName(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, tagName string) (*types.VersionTag, error)
	ListTagsByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.VersionTag, error)
	ListEntityIDsByTag(ctx context.Context, tx *gorm.DB, tagName string) ([]uuid.UUID, error)
}

type versionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVersionRepo(db *gorm.DB, baseLog *logger.Logger) VersionRepo {
	return &versionRepo{db: db, log: baseLog.With("repo", "VersionRepo")}
}

func (r *versionRepo) Append(ctx context.Context, tx *gorm.DB, version *types.EntityVersion) (*types.EntityVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(version).Error; err != nil {
		return nil, err
	}
	return version, nil
}

func (r *versionRepo) CountByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.EntityVersion{}).
		Where("entity_id = ?", entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *versionRepo) ListByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, offset, limit int) ([]*types.EntityVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntityVersion
	if err := transaction.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("sequence_index DESC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *versionRepo) GetBySequence(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, sequenceIndex int) (*types.EntityVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.EntityVersion
	if err := transaction.WithContext(ctx).
		Where("entity_id = ? AND sequence_index = ?", entityID, sequenceIndex).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "version", Ref: strconv.Itoa(sequenceIndex)}
		}
		return nil, err
	}
	return &result, nil
}

func (r *versionRepo) GetByDigest(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, digest string) (*types.EntityVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.EntityVersion
	if err := transaction.WithContext(ctx).
		Where("entity_id = ? AND digest = ?", entityID, digest).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "version", Ref: digest}
		}
		return nil, err
	}
	return &result, nil
}

func (r *versionRepo) FindByDigestPrefix(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, prefix string) ([]*types.EntityVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Digests are lowercase hex, so the prefix needs no LIKE escaping.
	var results []*types.EntityVersion
	if err := transaction.WithContext(ctx).
		Where("entity_id = ? AND digest LIKE ?", entityID, prefix+"%").
		Order("sequence_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *versionRepo) UpsertTag(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, digest, tagName string) (*types.VersionTag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var existing types.VersionTag
	err := transaction.WithContext(ctx).
		Where("entity_id = ? AND tag_name = ?", entityID, tagName).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Digest = digest
		if err := transaction.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		tag := &types.VersionTag{
			ID:       uuid.New(),
			EntityID: entityID,
			Digest:   digest,
			TagName:  tagName,
		}
		if err := transaction.WithContext(ctx).Create(tag).Error; err != nil {
			return nil, err
		}
		return tag, nil
	default:
		return nil, err
	}
}

func (r *versionRepo) GetTagByName(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, tagName string) (*types.VersionTag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.VersionTag
	if err := transaction.WithContext(ctx).
		Where("entity_id = ? AND tag_name = ?", entityID, tagName).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "tag", Ref: tagName}
		}
		return nil, err
	}
	return &result, nil
}

func (r *versionRepo) ListTagsByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID) ([]*types.VersionTag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.VersionTag
	if err := transaction.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("tag_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *versionRepo) ListEntityIDsByTag(ctx context.Context, tx *gorm.DB, tagName string) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.VersionTag{}).
		Where("tag_name = ?", tagName).
		Distinct().
		Pluck("entity_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
