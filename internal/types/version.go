package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EntityVersion is an immutable snapshot of an entity's versioned fields.
// Rows are append-only: never updated, never deleted while the entity lives.
// SequenceIndex is 0-based and strictly increasing per entity.
type EntityVersion struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_versions_seq,priority:1;uniqueIndex:idx_versions_digest,priority:1" json:"entity_id"`
	SequenceIndex int            `gorm:"column:sequence_index;not null;uniqueIndex:idx_versions_seq,priority:2" json:"sequence_index"`
	Digest        string         `gorm:"column:digest;size:64;not null;uniqueIndex:idx_versions_digest,priority:2" json:"digest"`
	Snapshot      datatypes.JSON `gorm:"column:snapshot;type:jsonb;not null" json:"snapshot"`
	Message       string         `gorm:"column:message" json:"message"`
	CreatedBy     *uuid.UUID     `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (EntityVersion) TableName() string { return "entity_versions" }

// VersionTag aliases a digest with a human-meaningful name, scoped to one
// entity. Re-tagging an existing name repoints it; no repoint history kept.
type VersionTag struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_name,priority:1" json:"entity_id"`
	Digest   string    `gorm:"column:digest;size:64;not null" json:"digest"`
	TagName  string    `gorm:"column:tag_name;not null;uniqueIndex:idx_tags_name,priority:2;index" json:"tag_name"`
}

func (VersionTag) TableName() string { return "version_tags" }
