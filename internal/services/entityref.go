package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/mlcatalog-backend/internal/types"
)

// EntityRef is the human-readable handle "kind/collection/name" used at the
// service boundary wherever an entity is addressed by name instead of id.
type EntityRef struct {
	Kind       string
	Collection string
	Name       string
}

func (r EntityRef) String() string {
	return r.Kind + "/" + r.Collection + "/" + r.Name
}

func ParseEntityRef(ref string) (EntityRef, error) {
	parts := strings.Split(strings.Trim(ref, "/"), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return EntityRef{}, &types.ValidationError{
			Field:  "entity_ref",
			Reason: fmt.Sprintf("expected kind/collection/name, got %q", ref),
		}
	}
	if !types.ValidKind(parts[0]) {
		return EntityRef{}, &types.ValidationError{
			Field:  "entity_ref",
			Reason: fmt.Sprintf("unknown entity kind %q", parts[0]),
		}
	}
	return EntityRef{Kind: parts[0], Collection: parts[1], Name: parts[2]}, nil
}
