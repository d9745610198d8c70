package unit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readFormWorkflowContract(t *testing.T) []byte {
	t.Helper()
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "contracts", "api", "v1", "form-workflow-service.openapi.json"))
	if err != nil {
		t.Fatalf("read form-workflow-service openapi: %v", err)
	}
	return data
}

func TestFormWorkflowServiceOpenAPIContractIncludesImplementedRoutes(t *testing.T) {
	data := readFormWorkflowContract(t)

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode form-workflow-service openapi: %v", err)
	}

	expected := map[string][]string{
		"/api/tally/v1/intake/barcode":                        {"post"},
		"/api/tally/v1/forms":                                 {"get", "post"},
		"/api/tally/v1/forms/{form_id}":                       {"get"},
		"/api/tally/v1/forms/{form_id}/history":               {"get"},
		"/api/tally/v1/forms/{form_id}/intake":                {"post"},
		"/api/tally/v1/forms/{form_id}/intake/confirm":        {"post"},
		"/api/tally/v1/forms/{form_id}/intake/center-station": {"post"},
		"/api/tally/v1/forms/{form_id}/data-entry":            {"post"},
		"/api/tally/v1/forms/{form_id}/corrections":           {"get", "post"},
		"/api/tally/v1/forms/{form_id}/quality-control":       {"post"},
		"/api/tally/v1/forms/{form_id}/audits":                {"post"},
		"/api/tally/v1/forms/{form_id}/audits/review":         {"post"},
		"/api/tally/v1/forms/{form_id}/clearances":            {"post"},
		"/api/tally/v1/forms/{form_id}/clearances/review":     {"post"},
		"/api/tally/v1/forms/{form_id}/recall":                {"post"},
		"/api/tally/v1/recalls/{request_id}/resolve":          {"post"},
		"/api/tally/v1/quarantine-checks":                     {"post"},
		"/api/tally/v1/tallies/{tally_id}/results":            {"get"},
		"/api/tally/v1/tallies/{tally_id}/duplicates":         {"get"},

		"/api/tally/v1/tallies/{tally_id}/exports/candidate-votes":   {"get"},
		"/api/tally/v1/tallies/{tally_id}/exports/barcode-results":   {"get"},
		"/api/tally/v1/tallies/{tally_id}/exports/duplicate-results": {"get"},
		"/api/tally/v1/forms/{form_id}/exports/history":              {"get"},
	}

	for path, methods := range expected {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("missing path in openapi contract: %s", path)
		}
		for _, method := range methods {
			if _, ok := ops[method]; !ok {
				t.Fatalf("missing method %s for path %s in openapi contract", method, path)
			}
		}
	}
}

func TestFormWorkflowServiceOpenAPIContractRequiresIdentityHeaders(t *testing.T) {
	data := readFormWorkflowContract(t)

	var doc struct {
		Paths      map[string]map[string]any `json:"paths"`
		Components struct {
			Parameters map[string]map[string]any `json:"parameters"`
		} `json:"components"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode form-workflow-service openapi: %v", err)
	}

	for path, ops := range doc.Paths {
		for method, op := range ops {
			if !isHeaderRequiredWithRefs(op, "X-User-Id", doc.Components.Parameters) {
				t.Fatalf("expected X-User-Id header required for %s %s", method, path)
			}
			if !isHeaderRequiredWithRefs(op, "X-Request-Id", doc.Components.Parameters) {
				t.Fatalf("expected X-Request-Id header required for %s %s", method, path)
			}
		}
	}
}

func TestFormWorkflowServiceOpenAPIContractDeclaresUnauthorizedResponse(t *testing.T) {
	data := readFormWorkflowContract(t)

	var doc struct {
		Paths map[string]map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode form-workflow-service openapi: %v", err)
	}

	for path, ops := range doc.Paths {
		for method, op := range ops {
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				t.Fatalf("missing responses block for %s %s", method, path)
			}
			if _, ok := responses["401"]; !ok {
				t.Fatalf("expected 401 response for %s %s", method, path)
			}
		}
	}
}
