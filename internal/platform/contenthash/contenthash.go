package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Package contenthash canonicalizes an entity's versioned fields and digests
// them. The digest is a pure function of the field values: the same logical
// content always yields the same digest regardless of map insertion order or
// how nested documents were produced.

// Canonicalize serializes v into a deterministic byte sequence: every value
// is round-tripped through JSON so that structs, raw JSON columns and maps
// all collapse to the same representation, then marshaled compactly with
// lexicographically sorted object keys.
func Canonicalize(v interface{}) ([]byte, error) {
	norm, err := normalize(v)
	if err != nil {
		return nil, err
	}
	// encoding/json sorts map keys and emits no insignificant whitespace.
	out, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}
	return out, nil
}

// Digest returns the lowercase hex SHA-256 of the canonical form of fields.
func Digest(fields map[string]interface{}) (string, error) {
	canonical, err := Canonicalize(fields)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// normalize collapses v to the generic JSON data model (map[string]interface{},
// []interface{}, float64, string, bool, nil). Types implementing
// json.Marshaler (e.g. datatypes.JSON) are honored by the round trip.
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return out, nil
}
