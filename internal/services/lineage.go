package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/repos"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

// LineageNode is one entity in a lineage view. ActivityName is the label of
// the edge that connected this node to its child (upstream walk) or parent
// (downstream walk); it is empty on the root. Only the walked direction is
// populated at each level, the opposite slice stays empty so the view does
// not explode re-expanding descendants of every ancestor.
type LineageNode struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	CollectionName string         `json:"collection_name"`
	Kind           string         `json:"kind"`
	ActivityName   string         `json:"activity_name,omitempty"`
	AgentID        *uuid.UUID     `json:"agent_id,omitempty"`
	Upstream       []*LineageNode `json:"upstream"`
	Downstream     []*LineageNode `json:"downstream"`
}

type lineageDirection int

const (
	directionUpstream lineageDirection = iota
	directionDownstream
)

type LineageService interface {
	// UpstreamOf walks incoming edges (this entity as target) transitively.
	// depthLimit <= 0 means walk to exhaustion, bounded by the configured
	// hard maximum.
	UpstreamOf(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, depthLimit int) (*LineageNode, error)
	DownstreamOf(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, depthLimit int) (*LineageNode, error)
}

type lineageService struct {
	db               *gorm.DB
	log              *logger.Logger
	entityRepo       repos.EntityRepo
	relationshipRepo repos.RelationshipRepo
	maxDepth         int
}

func NewLineageService(
	db *gorm.DB,
	baseLog *logger.Logger,
	entityRepo repos.EntityRepo,
	relationshipRepo repos.RelationshipRepo,
	maxDepth int,
) LineageService {
	if maxDepth < 1 {
		maxDepth = 25
	}
	return &lineageService{
		db:               db,
		log:              baseLog.With("service", "LineageService"),
		entityRepo:       entityRepo,
		relationshipRepo: relationshipRepo,
		maxDepth:         maxDepth,
	}
}

func (s *lineageService) UpstreamOf(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, depthLimit int) (*LineageNode, error) {
	return s.lineage(ctx, tx, entityID, depthLimit, directionUpstream)
}

func (s *lineageService) DownstreamOf(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, depthLimit int) (*LineageNode, error) {
	return s.lineage(ctx, tx, entityID, depthLimit, directionDownstream)
}

func (s *lineageService) lineage(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, depthLimit int, direction lineageDirection) (*LineageNode, error) {
	if depthLimit <= 0 || depthLimit > s.maxDepth {
		depthLimit = s.maxDepth
	}
	root, err := s.entityRepo.GetByID(ctx, tx, entityID)
	if err != nil {
		return nil, err
	}
	visited := map[uuid.UUID]struct{}{}
	return s.walk(ctx, tx, root, "", nil, depthLimit, direction, visited)
}

// walk builds the node for entity and recurses on its neighbors. visited
// holds the ids on the current path: a neighbor already on the path is
// emitted as a leaf instead of recursed into, so cyclic graphs terminate.
func (s *lineageService) walk(ctx context.Context, tx *gorm.DB, entity *types.Entity, activityName string, agentID *uuid.UUID, depth int, direction lineageDirection, visited map[uuid.UUID]struct{}) (*LineageNode, error) {
	node := &LineageNode{
		ID:           entity.ID,
		Name:         entity.Name,
		Kind:         entity.Kind,
		ActivityName: activityName,
		AgentID:      agentID,
		Upstream:     []*LineageNode{},
		Downstream:   []*LineageNode{},
	}
	if entity.Collection != nil {
		node.CollectionName = entity.Collection.Name
	}
	if depth <= 0 {
		return node, nil
	}

	visited[entity.ID] = struct{}{}
	defer delete(visited, entity.ID)

	var edges []*types.EntityRelationship
	var err error
	if direction == directionUpstream {
		edges, err = s.relationshipRepo.ListIncoming(ctx, tx, entity.ID)
	} else {
		edges, err = s.relationshipRepo.ListOutgoing(ctx, tx, entity.ID)
	}
	if err != nil {
		return nil, err
	}

	for _, edge := range edges {
		var neighbor *types.Entity
		if direction == directionUpstream {
			neighbor = edge.SourceEntity
		} else {
			neighbor = edge.TargetEntity
		}
		if neighbor == nil {
			continue
		}

		if _, onPath := visited[neighbor.ID]; onPath {
			leaf := &LineageNode{
				ID:           neighbor.ID,
				Name:         neighbor.Name,
				Kind:         neighbor.Kind,
				ActivityName: edge.ActivityName,
				AgentID:      edge.AgentID,
				Upstream:     []*LineageNode{},
				Downstream:   []*LineageNode{},
			}
			if neighbor.Collection != nil {
				leaf.CollectionName = neighbor.Collection.Name
			}
			s.appendChild(node, leaf, direction)
			continue
		}

		child, err := s.walk(ctx, tx, neighbor, edge.ActivityName, edge.AgentID, depth-1, direction, visited)
		if err != nil {
			return nil, err
		}
		s.appendChild(node, child, direction)
	}
	return node, nil
}

func (s *lineageService) appendChild(parent, child *LineageNode, direction lineageDirection) {
	if direction == directionUpstream {
		parent.Upstream = append(parent.Upstream, child)
	} else {
		parent.Downstream = append(parent.Downstream, child)
	}
}
