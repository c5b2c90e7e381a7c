package types

import (
	"time"

	"github.com/google/uuid"
)

// EntityRelationship is a directed provenance edge: target was produced from
// source via the named activity. Multiple edges may exist between the same
// pair under different activities; self-loops are rejected at creation.
type EntityRelationship struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SourceEntityID uuid.UUID  `gorm:"type:uuid;not null;index" json:"source_entity_id"`
	TargetEntityID uuid.UUID  `gorm:"type:uuid;not null;index" json:"target_entity_id"`
	ActivityName   string     `gorm:"column:activity_name;not null" json:"activity_name"`
	AgentID        *uuid.UUID `gorm:"type:uuid;column:agent_id" json:"agent_id,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`

	SourceEntity *Entity `gorm:"foreignKey:SourceEntityID;references:ID" json:"source_entity,omitempty"`
	TargetEntity *Entity `gorm:"foreignKey:TargetEntityID;references:ID" json:"target_entity,omitempty"`
	Agent        *Agent  `gorm:"foreignKey:AgentID;references:ID" json:"agent,omitempty"`
}

func (EntityRelationship) TableName() string { return "entity_relationships" }
