package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/services"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type EntityHandler struct {
	log           *logger.Logger
	entityService services.EntityService
}

func NewEntityHandler(log *logger.Logger, entityService services.EntityService) *EntityHandler {
	return &EntityHandler{
		log:           log.With("handler", "EntityHandler"),
		entityService: entityService,
	}
}

// datasetRequest doubles for create and full-replace update.
type datasetRequest struct {
	Name            string          `json:"name"`
	DataPath        string          `json:"data_path"`
	Format          string          `json:"format"`
	MetadataVersion string          `json:"metadata_version"`
	Metadata        json.RawMessage `json:"metadata"`
	LongDescription string          `json:"long_description"`
	PreviewPath     string          `json:"preview_path"`
	Message         string          `json:"message"`
	Tags            []string        `json:"tags"`
	AgentID         *uuid.UUID      `json:"agent_id"`
}

type trainedModelRequest struct {
	Name            string          `json:"name"`
	ModelPath       string          `json:"model_path"`
	Framework       string          `json:"framework"`
	MetadataVersion string          `json:"metadata_version"`
	Metadata        json.RawMessage `json:"metadata"`
	LongDescription string          `json:"long_description"`
	Message         string          `json:"message"`
	Tags            []string        `json:"tags"`
	AgentID         *uuid.UUID      `json:"agent_id"`
}

type taskRequest struct {
	Name           string          `json:"name"`
	Workflow       json.RawMessage `json:"workflow"`
	Version        string          `json:"version"`
	Description    string          `json:"description"`
	HasFileUploads bool            `json:"has_file_uploads"`
	Message        string          `json:"message"`
	Tags           []string        `json:"tags"`
	AgentID        *uuid.UUID      `json:"agent_id"`
}

// Create returns the creation handler for one entity kind; the route group
// fixes the kind, the request body carries the payload.
func (h *EntityHandler) Create(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, payload, message, tags, agentID, err := h.bindPayload(c, kind)
		if err != nil {
			RespondError(c, 422, "invalid_body", err)
			return
		}
		entity, svcErr := h.entityService.Create(c.Request.Context(), nil, c.Param("collection"), name, payload, message, tags, agentID)
		if svcErr != nil {
			RespondDomainError(c, svcErr)
			return
		}
		RespondCreated(c, entity)
	}
}

func (h *EntityHandler) Get(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entity, err := h.entityService.Get(c.Request.Context(), nil, kind, c.Param("collection"), c.Param("name"))
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		RespondOK(c, entity)
	}
}

func (h *EntityHandler) Update(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, payload, message, tags, agentID, err := h.bindPayload(c, kind)
		if err != nil {
			RespondError(c, 422, "invalid_body", err)
			return
		}
		// The handle in the path addresses the entity; a differing body name
		// is a rename and lands in the same version as the payload change.
		entity, svcErr := h.entityService.Update(c.Request.Context(), nil, kind, c.Param("collection"), c.Param("name"), name, payload, message, tags, agentID)
		if svcErr != nil {
			RespondDomainError(c, svcErr)
			return
		}
		RespondOK(c, entity)
	}
}

func (h *EntityHandler) Delete(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := h.entityService.Delete(c.Request.Context(), nil, kind, c.Param("collection"), c.Param("name"))
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		RespondOK(c, gin.H{"deleted": true})
	}
}

func (h *EntityHandler) bindPayload(c *gin.Context, kind string) (name string, payload types.VariantPayload, message string, tags []string, agentID *uuid.UUID, err error) {
	switch kind {
	case types.KindDataset:
		var req datasetRequest
		if err = c.ShouldBindJSON(&req); err != nil {
			return
		}
		name = req.Name
		payload = &types.Dataset{
			DataPath:        req.DataPath,
			Format:          req.Format,
			MetadataVersion: req.MetadataVersion,
			Metadata:        datatypes.JSON(req.Metadata),
			LongDescription: req.LongDescription,
			PreviewPath:     req.PreviewPath,
		}
		message, tags, agentID = req.Message, req.Tags, req.AgentID
	case types.KindTrainedModel:
		var req trainedModelRequest
		if err = c.ShouldBindJSON(&req); err != nil {
			return
		}
		name = req.Name
		payload = &types.TrainedModel{
			ModelPath:       req.ModelPath,
			Framework:       req.Framework,
			MetadataVersion: req.MetadataVersion,
			Metadata:        datatypes.JSON(req.Metadata),
			LongDescription: req.LongDescription,
		}
		message, tags, agentID = req.Message, req.Tags, req.AgentID
	case types.KindTask:
		var req taskRequest
		if err = c.ShouldBindJSON(&req); err != nil {
			return
		}
		name = req.Name
		payload = &types.Task{
			Workflow:       datatypes.JSON(req.Workflow),
			Version:        req.Version,
			Description:    req.Description,
			HasFileUploads: req.HasFileUploads,
		}
		message, tags, agentID = req.Message, req.Tags, req.AgentID
	default:
		err = &types.ValidationError{Field: "kind", Reason: "unknown entity kind " + kind}
	}
	return
}
