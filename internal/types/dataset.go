package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Dataset payload. DataPath is an opaque location in external storage; the
// catalog never dereferences it. PreviewPath is excluded from versioned
// fields so bulky previews never enter content hashing.
type Dataset struct {
	EntityID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"entity_id"`
	DataPath        string         `gorm:"column:data_path;not null" json:"data_path"`
	Format          string         `gorm:"column:format;not null" json:"format"`
	MetadataVersion string         `gorm:"column:metadata_version" json:"metadata_version"`
	Metadata        datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	LongDescription string         `gorm:"column:long_description" json:"long_description"`
	PreviewPath     string         `gorm:"column:preview_path" json:"preview_path,omitempty"`
}

func (Dataset) TableName() string { return "datasets" }

func (Dataset) Kind() string { return KindDataset }

func (d *Dataset) VersionedFields() map[string]interface{} {
	return map[string]interface{}{
		"data_path":        d.DataPath,
		"format":           d.Format,
		"metadata_version": d.MetadataVersion,
		"metadata":         d.Metadata,
		"long_description": d.LongDescription,
	}
}
