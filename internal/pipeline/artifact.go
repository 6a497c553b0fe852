package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

// WriteArtifact persists the artifact as indented JSON. The file is written
// to a temp sibling and renamed into place, so a crash mid-write never
// leaves a truncated artifact behind.
func WriteArtifact(path string, artifact *shapes.Artifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// LoadArtifact reads and validates a persisted artifact. Malformed JSON or
// an artifact violating the structural contract is a fatal input error for
// every downstream stage.
func LoadArtifact(path string) (*shapes.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var artifact shapes.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("artifact %s is not valid JSON: %w", path, err)
	}

	if err := validateArtifact(&artifact); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	if artifact.Instances == nil {
		artifact.Instances = []*shapes.Instance{}
	}
	return &artifact, nil
}

// validateArtifact checks the structural contract: definition keys are
// decimal ids, and every instance resolves to a known definition.
func validateArtifact(a *shapes.Artifact) error {
	ids := make(map[int]struct{}, len(a.Definitions))
	for key, def := range a.Definitions {
		id, err := strconv.Atoi(key)
		if err != nil || id < 1 {
			return fmt.Errorf("invalid shape definition key %q", key)
		}
		if def == nil {
			return fmt.Errorf("shape definition %q is null", key)
		}
		ids[id] = struct{}{}
	}
	for _, in := range a.Instances {
		if in == nil {
			return fmt.Errorf("null instance entry")
		}
		if _, ok := ids[in.ShapeID]; !ok {
			return fmt.Errorf("instance %d references unknown shape %d", in.InstanceID, in.ShapeID)
		}
	}
	return nil
}
