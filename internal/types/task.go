package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Task payload. Workflow is a free-form document describing the steps the
// task runs; the catalog versions it but never executes it.
type Task struct {
	EntityID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"entity_id"`
	Workflow       datatypes.JSON `gorm:"column:workflow;type:jsonb;not null" json:"workflow"`
	Version        string         `gorm:"column:version" json:"version"`
	Description    string         `gorm:"column:description" json:"description"`
	HasFileUploads bool           `gorm:"column:has_file_uploads;not null;default:false" json:"has_file_uploads"`
}

func (Task) TableName() string { return "tasks" }

func (Task) Kind() string { return KindTask }

func (t *Task) VersionedFields() map[string]interface{} {
	return map[string]interface{}{
		"workflow":         t.Workflow,
		"version":          t.Version,
		"description":      t.Description,
		"has_file_uploads": t.HasFileUploads,
	}
}
