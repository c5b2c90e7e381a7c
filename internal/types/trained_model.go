package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TrainedModel struct {
	EntityID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"entity_id"`
	ModelPath       string         `gorm:"column:model_path;not null" json:"model_path"`
	Framework       string         `gorm:"column:framework;not null" json:"framework"`
	MetadataVersion string         `gorm:"column:metadata_version" json:"metadata_version"`
	Metadata        datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	LongDescription string         `gorm:"column:long_description" json:"long_description"`
}

func (TrainedModel) TableName() string { return "trained_models" }

func (TrainedModel) Kind() string { return KindTrainedModel }

func (m *TrainedModel) VersionedFields() map[string]interface{} {
	return map[string]interface{}{
		"model_path":       m.ModelPath,
		"framework":        m.Framework,
		"metadata_version": m.MetadataVersion,
		"metadata":         m.Metadata,
		"long_description": m.LongDescription,
	}
}
