package contenthash

import (
	"strings"
	"testing"

	"gorm.io/datatypes"
)

func TestDigestStableAcrossInsertionOrder(t *testing.T) {
	a := map[string]interface{}{
		"name":      "mnist",
		"data_path": "/data/mnist.csv",
		"format":    "csv",
	}
	b := map[string]interface{}{
		"format":    "csv",
		"name":      "mnist",
		"data_path": "/data/mnist.csv",
	}

	da, err := Digest(a)
	if err != nil {
		t.Fatalf("Digest(a): %v", err)
	}
	db, err := Digest(b)
	if err != nil {
		t.Fatalf("Digest(b): %v", err)
	}
	if da != db {
		t.Fatalf("digest not stable across insertion order: %s vs %s", da, db)
	}
}

func TestDigestHexShape(t *testing.T) {
	d, err := Digest(map[string]interface{}{"name": "x"})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(d) != 64 {
		t.Fatalf("digest length: want=64 got=%d", len(d))
	}
	if d != strings.ToLower(d) {
		t.Fatalf("digest not lowercase: %s", d)
	}
	for _, c := range d {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("digest contains non-hex rune %q", c)
		}
	}
}

func TestDigestDiffersForDifferentContent(t *testing.T) {
	d1, err := Digest(map[string]interface{}{"format": "csv"})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	d2, err := Digest(map[string]interface{}{"format": "parquet"})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if d1 == d2 {
		t.Fatalf("different content produced identical digest %s", d1)
	}
}

func TestDigestNormalizesNestedDocuments(t *testing.T) {
	// Semantically identical nested metadata delivered as a map and as a raw
	// JSON column must hash identically.
	asMap := map[string]interface{}{
		"name":     "m1",
		"metadata": map[string]interface{}{"b": 2, "a": 1},
	}
	asRaw := map[string]interface{}{
		"name":     "m1",
		"metadata": datatypes.JSON([]byte(`{"a": 1, "b": 2}`)),
	}

	d1, err := Digest(asMap)
	if err != nil {
		t.Fatalf("Digest(map): %v", err)
	}
	d2, err := Digest(asRaw)
	if err != nil {
		t.Fatalf("Digest(raw): %v", err)
	}
	if d1 != d2 {
		t.Fatalf("nested document normalization broken: %s vs %s", d1, d2)
	}
}

func TestCanonicalizeCompactAndSorted(t *testing.T) {
	out, err := Canonicalize(map[string]interface{}{"z": 1, "a": map[string]interface{}{"y": true, "b": "v"}})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := `{"a":{"b":"v","y":true},"z":1}`
	if string(out) != want {
		t.Fatalf("canonical form: want=%s got=%s", want, out)
	}
}
