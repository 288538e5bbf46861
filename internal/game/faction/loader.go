package faction

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// matrixFile is the YAML shape for an initial relationship matrix.
type matrixFile struct {
	Relationships []relationshipEntry `yaml:"relationships"`
}

// relationshipEntry is one explicit pair in the matrix file.
type relationshipEntry struct {
	A        string `yaml:"a"`
	B        string `yaml:"b"`
	Relation string `yaml:"relation"` // "hostile" | "neutral" | "ally"
}

// LoadFile reads a YAML relationship matrix and returns a populated Resolver.
// Pairs absent from the file keep the Hostile default.
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns a non-nil Resolver or an error for unreadable files,
// unknown fields, self-pairs, or unknown relation labels.
func LoadFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading faction matrix %q: %w", path, err)
	}

	var file matrixFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing faction matrix %q: %w", path, err)
	}

	resolver := NewResolver()
	for _, e := range file.Relationships {
		if e.A == "" || e.B == "" {
			return nil, fmt.Errorf("faction matrix %q: entry with empty faction name", path)
		}
		if e.A == e.B {
			return nil, fmt.Errorf("faction matrix %q: %q paired with itself", path, e.A)
		}
		rel, err := parseRelationship(e.Relation)
		if err != nil {
			return nil, fmt.Errorf("faction matrix %q: %w", path, err)
		}
		resolver.Set(e.A, e.B, rel)
	}
	return resolver, nil
}

func parseRelationship(s string) (Relationship, error) {
	switch s {
	case "hostile":
		return Hostile, nil
	case "neutral":
		return Neutral, nil
	case "ally":
		return Ally, nil
	default:
		return Hostile, fmt.Errorf("unknown relation %q (want hostile, neutral, or ally)", s)
	}
}
