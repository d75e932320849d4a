package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compiled schemas keyed by their canonical JSON text.
var schemaCache sync.Map

// ParseStructuredJSON parses JSON from model output. Markdown code fences and
// prose around a single JSON object or array are tolerated.
func ParseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		normalized, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize structured output: %w", err)
		}
		return normalized, nil
	}

	return nil, fmt.Errorf("no JSON document found in model output")
}

func stripCodeFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if last := len(lines) - 1; strings.TrimSpace(lines[last]) == "```" {
		lines = lines[:last]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractJSONCandidate returns the span from the first opening brace or
// bracket to the last matching closer.
func extractJSONCandidate(content string) string {
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return ""
	}
	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}

// ValidateStructuredJSON validates parsed JSON against a schema. The schema
// may be a bare JSON schema document or one of the OpenAI wrapper forms.
func ValidateStructuredJSON(schemaRaw, parsed json.RawMessage) error {
	if len(schemaRaw) == 0 {
		return nil
	}
	if len(parsed) == 0 {
		return fmt.Errorf("empty document")
	}

	schema, err := compileSchema(schemaRaw)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return fmt.Errorf("failed to decode structured JSON for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}

func compileSchema(schemaRaw json.RawMessage) (*jsonschema.Schema, error) {
	core, err := extractValidationSchema(schemaRaw)
	if err != nil {
		return nil, err
	}
	key := string(core)
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(core)); err != nil {
		return nil, fmt.Errorf("failed to load structured schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile structured schema: %w", err)
	}
	schemaCache.Store(key, schema)
	return schema, nil
}

func extractValidationSchema(schemaRaw json.RawMessage) (json.RawMessage, error) {
	var root map[string]any
	if err := json.Unmarshal(schemaRaw, &root); err != nil {
		return nil, fmt.Errorf("invalid structured schema JSON: %w", err)
	}

	// {"name","strict","schema":{...}}
	if inner, ok := root["schema"]; ok {
		return json.Marshal(inner)
	}
	// {"type":"json_schema","json_schema":{"schema":{...}}}
	if wrapper, ok := root["json_schema"].(map[string]any); ok {
		if inner, ok := wrapper["schema"]; ok {
			return json.Marshal(inner)
		}
	}
	return json.Marshal(root)
}

// JSONSchemaParts splits a wrapped schema into its name and core document.
func JSONSchemaParts(schemaRaw json.RawMessage) (name string, core map[string]any, err error) {
	var root map[string]any
	if err := json.Unmarshal(schemaRaw, &root); err != nil {
		return "", nil, fmt.Errorf("invalid structured schema JSON: %w", err)
	}
	if wrapper, ok := root["json_schema"].(map[string]any); ok {
		root = wrapper
	}
	name, _ = root["name"].(string)
	if name == "" {
		name = "structured_output"
	}
	if inner, ok := root["schema"].(map[string]any); ok {
		return name, inner, nil
	}
	return name, root, nil
}
