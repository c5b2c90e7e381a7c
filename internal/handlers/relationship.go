package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/services"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type RelationshipHandler struct {
	log     *logger.Logger
	service services.RelationshipService
}

func NewRelationshipHandler(log *logger.Logger, service services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{
		log:     log.With("handler", "RelationshipHandler"),
		service: service,
	}
}

type createRelationshipRequest struct {
	SourceEntityStr string     `json:"source_entity_str"`
	TargetEntityStr string     `json:"target_entity_str"`
	ActivityName    string     `json:"activity_name"`
	AgentID         *uuid.UUID `json:"agent_id"`
}

func (h *RelationshipHandler) Create(c *gin.Context) {
	var req createRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 422, "invalid_body", err)
		return
	}
	rel, err := h.service.Create(c.Request.Context(), nil, services.CreateRelationshipInput{
		SourceRef:    req.SourceEntityStr,
		TargetRef:    req.TargetEntityStr,
		ActivityName: req.ActivityName,
		AgentID:      req.AgentID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, rel)
}

func (h *RelationshipHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, &types.ValidationError{Field: "id", Reason: "must be a uuid"})
		return
	}
	rel, svcErr := h.service.Get(c.Request.Context(), nil, id)
	if svcErr != nil {
		RespondDomainError(c, svcErr)
		return
	}
	RespondOK(c, rel)
}

func (h *RelationshipHandler) List(c *gin.Context) {
	offset, limit := pagination(c)
	rels, err := h.service.List(c.Request.Context(), nil, offset, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rels)
}

func (h *RelationshipHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, &types.ValidationError{Field: "id", Reason: "must be a uuid"})
		return
	}
	if svcErr := h.service.Delete(c.Request.Context(), nil, id); svcErr != nil {
		RespondDomainError(c, svcErr)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
