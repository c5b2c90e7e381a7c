package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/services"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type VersionHandler struct {
	log            *logger.Logger
	entityService  services.EntityService
	versionService services.VersionService
	lineageService services.LineageService
}

func NewVersionHandler(log *logger.Logger, entityService services.EntityService, versionService services.VersionService, lineageService services.LineageService) *VersionHandler {
	return &VersionHandler{
		log:            log.With("handler", "VersionHandler"),
		entityService:  entityService,
		versionService: versionService,
		lineageService: lineageService,
	}
}

type createVersionRequest struct {
	Message   string     `json:"message"`
	Tags      []string   `json:"tags"`
	CreatedBy *uuid.UUID `json:"created_by"`
}

type tagVersionRequest struct {
	Ref     string `json:"ref"`
	TagName string `json:"tag_name"`
}

// resolveEntity turns the kind/collection/name path triple into an entity row.
func (h *VersionHandler) resolveEntity(c *gin.Context) (*types.Entity, bool) {
	entity, err := h.entityService.Get(c.Request.Context(), nil, c.Param("kind"), c.Param("collection"), c.Param("name"))
	if err != nil {
		RespondDomainError(c, err)
		return nil, false
	}
	return entity, true
}

func (h *VersionHandler) CreateVersion(c *gin.Context) {
	entity, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 422, "invalid_body", err)
		return
	}
	version, err := h.versionService.CreateVersion(c.Request.Context(), nil, entity.ID, req.Message, req.Tags, req.CreatedBy)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, version)
}

func (h *VersionHandler) History(c *gin.Context) {
	entity, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)
	history, err := h.versionService.History(c.Request.Context(), nil, entity.ID, offset, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, history)
}

func (h *VersionHandler) Checkout(c *gin.Context) {
	entity, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	info, err := h.versionService.CheckoutVersion(c.Request.Context(), nil, entity.ID, c.Param("ref"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, info)
}

func (h *VersionHandler) Tag(c *gin.Context) {
	entity, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	var req tagVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 422, "invalid_body", err)
		return
	}
	tag, err := h.versionService.TagVersion(c.Request.Context(), nil, entity.ID, req.Ref, req.TagName)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, tag)
}

// Diff compares two resolvable refs of the same entity, query params
// from and to.
func (h *VersionHandler) Diff(c *gin.Context) {
	entity, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		RespondDomainError(c, &types.ValidationError{Field: "from", Reason: "both from and to query params are required"})
		return
	}
	diffs, err := h.versionService.CompareVersions(c.Request.Context(), nil, entity.ID, from, to)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"from": from, "to": to, "changes": diffs})
}

// EntitiesByTag is the reverse tag lookup, optionally narrowed to a kind.
func (h *VersionHandler) EntitiesByTag(c *gin.Context) {
	entities, err := h.versionService.GetEntitiesByTag(c.Request.Context(), nil, c.Param("tagName"), c.Query("kind"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, entities)
}

func (h *VersionHandler) Upstream(c *gin.Context) {
	h.lineage(c, true)
}

func (h *VersionHandler) Downstream(c *gin.Context) {
	h.lineage(c, false)
}

func (h *VersionHandler) lineage(c *gin.Context, upstream bool) {
	entity, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	depth := 0
	if raw := c.Query("max_depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			RespondDomainError(c, &types.ValidationError{Field: "max_depth", Reason: "must be a non-negative integer"})
			return
		}
		depth = parsed
	}
	var (
		node *services.LineageNode
		err  error
	)
	if upstream {
		node, err = h.lineageService.UpstreamOf(c.Request.Context(), nil, entity.ID, depth)
	} else {
		node, err = h.lineageService.DownstreamOf(c.Request.Context(), nil, entity.ID, depth)
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, node)
}
