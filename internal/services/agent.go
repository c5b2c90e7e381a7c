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

type AgentService interface {
	Create(ctx context.Context, tx *gorm.DB, name, agentType string) (*types.Agent, error)
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Agent, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Agent, error)
}

type agentService struct {
	db        *gorm.DB
	log       *logger.Logger
	agentRepo repos.AgentRepo
}

func NewAgentService(db *gorm.DB, baseLog *logger.Logger, agentRepo repos.AgentRepo) AgentService {
	return &agentService{
		db:        db,
		log:       baseLog.With("service", "AgentService"),
		agentRepo: agentRepo,
	}
}

func (s *agentService) Create(ctx context.Context, tx *gorm.DB, name, agentType string) (*types.Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &types.ValidationError{Field: "name", Reason: "agent name is required"}
	}
	agent := &types.Agent{
		ID:        uuid.New(),
		Name:      name,
		Type:      agentType,
		CreatedAt: time.Now().UTC(),
	}
	return s.agentRepo.Create(ctx, tx, agent)
}

func (s *agentService) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Agent, error) {
	return s.agentRepo.GetByID(ctx, tx, id)
}

func (s *agentService) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Agent, error) {
	return s.agentRepo.List(ctx, tx, offset, limit)
}
