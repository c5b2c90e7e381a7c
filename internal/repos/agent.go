package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type AgentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, agent *types.Agent) (*types.Agent, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Agent, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Agent, error)
}

type agentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAgentRepo(db *gorm.DB, baseLog *logger.Logger) AgentRepo {
	return &agentRepo{db: db, log: baseLog.With("repo", "AgentRepo")}
}

func (r *agentRepo) Create(ctx context.Context, tx *gorm.DB, agent *types.Agent) (*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

func (r *agentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Agent
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{Resource: "agent", Ref: id.String()}
		}
		return nil, err
	}
	return &result, nil
}

func (r *agentRepo) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Agent
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
