package unit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestContractJSONArtifactsAreValid(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	patterns := []string{
		"contracts/api/v1/*.json",
		"contracts/events/v1/*.json",
		"contracts/schemas/v1/*.json",
	}

	found := 0
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			t.Fatalf("invalid glob pattern %s: %v", pattern, err)
		}
		for _, path := range matches {
			found++
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			var payload any
			if err := json.Unmarshal(data, &payload); err != nil {
				t.Fatalf("invalid json contract file %s: %v", path, err)
			}
		}
	}

	if found == 0 {
		t.Fatalf("no contract json artifacts found")
	}
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	current := wd
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("go.mod not found from %s", wd)
		}
		current = parent
	}
}

// isHeaderRequiredWithRefs reports whether the named header parameter is
// declared required on an operation, following $ref indirection into the
// document's components.parameters.
func isHeaderRequiredWithRefs(operation any, name string, componentParams map[string]map[string]any) bool {
	opMap, ok := operation.(map[string]any)
	if !ok {
		return false
	}
	rawParams, ok := opMap["parameters"].([]any)
	if !ok {
		return false
	}
	for _, raw := range rawParams {
		param, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if ref, _ := param["$ref"].(string); ref != "" {
			const prefix = "#/components/parameters/"
			if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
				key := ref[len(prefix):]
				if resolved, ok := componentParams[key]; ok {
					param = resolved
				}
			}
		}
		paramName, _ := param["name"].(string)
		if paramName != name {
			continue
		}
		required, _ := param["required"].(bool)
		return required
	}
	return false
}
