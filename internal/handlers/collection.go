package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/services"
)

type CollectionHandler struct {
	log               *logger.Logger
	collectionService services.CollectionService
}

func NewCollectionHandler(log *logger.Logger, collectionService services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		log:               log.With("handler", "CollectionHandler"),
		collectionService: collectionService,
	}
}

type createCollectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 422, "invalid_body", err)
		return
	}
	collection, err := h.collectionService.Create(c.Request.Context(), nil, req.Name, req.Description)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, collection)
}

func (h *CollectionHandler) Get(c *gin.Context) {
	collection, err := h.collectionService.Get(c.Request.Context(), nil, c.Param("collection"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, collection)
}

func (h *CollectionHandler) List(c *gin.Context) {
	offset, limit := pagination(c)
	collections, err := h.collectionService.List(c.Request.Context(), nil, offset, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"collections": collections})
}

func (h *CollectionHandler) ListEntities(c *gin.Context) {
	offset, limit := pagination(c)
	entities, err := h.collectionService.ListEntities(c.Request.Context(), nil, c.Param("collection"), offset, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"entities": entities})
}
