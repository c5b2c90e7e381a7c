package types

import (
	"time"

	"github.com/google/uuid"
)

// Agent is an attributable actor (a person, a pipeline, a service account)
// referenced by relationships for provenance. No credentials live here.
type Agent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Type      string    `gorm:"column:type" json:"type"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Agent) TableName() string { return "agents" }
