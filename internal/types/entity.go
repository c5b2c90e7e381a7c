package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindDataset      = "dataset"
	KindTrainedModel = "trained_model"
	KindTask         = "task"
)

func ValidKind(kind string) bool {
	switch kind {
	case KindDataset, KindTrainedModel, KindTask:
		return true
	default:
		return false
	}
}

// VariantPayload is the kind-specific half of an entity. VersionedFields
// returns exactly the fields that enter content hashing for that kind; bulky
// columns (dataset previews) stay out.
type VariantPayload interface {
	Kind() string
	VersionedFields() map[string]interface{}
}

// Entity is the base record shared by all artifact kinds. Kind is fixed at
// creation. CurrentDigest is empty until the first snapshot lands and from
// then on always names an existing version of this entity.
type Entity struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CollectionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_entities_handle" json:"collection_id"`
	Name          string    `gorm:"column:name;not null;uniqueIndex:idx_entities_handle" json:"name"`
	Kind          string    `gorm:"column:kind;not null;index" json:"kind"`
	CurrentDigest string    `gorm:"column:current_digest;size:64" json:"current_digest"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`

	Collection   *Collection   `gorm:"foreignKey:CollectionID;references:ID" json:"collection,omitempty"`
	Dataset      *Dataset      `gorm:"foreignKey:EntityID;references:ID" json:"dataset,omitempty"`
	TrainedModel *TrainedModel `gorm:"foreignKey:EntityID;references:ID" json:"trained_model,omitempty"`
	Task         *Task         `gorm:"foreignKey:EntityID;references:ID" json:"task,omitempty"`
}

func (Entity) TableName() string { return "entities" }

// Payload returns the loaded variant payload for the entity's kind, or nil
// when the payload association was not preloaded.
func (e *Entity) Payload() VariantPayload {
	switch e.Kind {
	case KindDataset:
		if e.Dataset != nil {
			return e.Dataset
		}
	case KindTrainedModel:
		if e.TrainedModel != nil {
			return e.TrainedModel
		}
	case KindTask:
		if e.Task != nil {
			return e.Task
		}
	}
	return nil
}

// VersionedFields merges the base fields with the payload's versioned fields.
// This is the exact hash input for the entity.
func (e *Entity) VersionedFields() map[string]interface{} {
	fields := map[string]interface{}{
		"name": e.Name,
	}
	if p := e.Payload(); p != nil {
		for k, v := range p.VersionedFields() {
			fields[k] = v
		}
	}
	return fields
}
