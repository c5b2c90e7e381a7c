package types

import (
	"time"

	"github.com/google/uuid"
)

// Collection is a named grouping of entities. Entity names are unique within
// a collection, not globally.
type Collection struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Collection) TableName() string { return "collections" }
