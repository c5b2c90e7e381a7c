package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/services"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type AgentHandler struct {
	log     *logger.Logger
	service services.AgentService
}

func NewAgentHandler(log *logger.Logger, service services.AgentService) *AgentHandler {
	return &AgentHandler{
		log:     log.With("handler", "AgentHandler"),
		service: service,
	}
}

type createAgentRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *AgentHandler) Create(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 422, "invalid_body", err)
		return
	}
	agent, svcErr := h.service.Create(c.Request.Context(), nil, req.Name, req.Type)
	if svcErr != nil {
		RespondDomainError(c, svcErr)
		return
	}
	RespondCreated(c, agent)
}

func (h *AgentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, &types.ValidationError{Field: "id", Reason: "must be a uuid"})
		return
	}
	agent, svcErr := h.service.Get(c.Request.Context(), nil, id)
	if svcErr != nil {
		RespondDomainError(c, svcErr)
		return
	}
	RespondOK(c, agent)
}

func (h *AgentHandler) List(c *gin.Context) {
	offset, limit := pagination(c)
	agents, err := h.service.List(c.Request.Context(), nil, offset, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, agents)
}
