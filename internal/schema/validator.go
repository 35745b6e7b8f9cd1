// file: internal/schema/validator.go
//
// Package schema validates MCP tool arguments against the JSON Schema each
// tool advertises, and checks tool, prompt and resource names against the
// naming rules MCP clients accept.
//
// Each tool's input schema is compiled once, at registration, and looked up by
// tool name on every call.
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resourceBase prefixes the in-memory URL each schema is compiled under.
const resourceBase = "mem://instapaper-mcp/tools/"

// Validator holds the compiled input schema of every registered tool.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
	logger  logging.Logger
}

// NewValidator creates an empty Validator.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.GetLogger("schema_validator")
	}
	return &Validator{
		schemas: make(map[string]*jsonschema.Schema),
		logger:  logger,
	}
}

// Register compiles schemaDoc, any JSON-marshalable schema document, as the
// input schema of the named tool. Registering a name again replaces its schema.
func (v *Validator) Register(name string, schemaDoc interface{}) error {
	if err := ValidateName(EntityTypeTool, name); err != nil {
		return err
	}
	raw, err := json.Marshal(schemaDoc)
	if err != nil {
		return NewValidationError(ErrSchemaCompileFailed,
			fmt.Sprintf("failed to encode input schema of tool %s", name), err)
	}

	start := time.Now()
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := resourceBase + name + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return NewValidationError(ErrSchemaCompileFailed,
			fmt.Sprintf("failed to add input schema of tool %s", name), err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return NewValidationError(ErrSchemaCompileFailed,
			fmt.Sprintf("failed to compile input schema of tool %s", name), err).
			WithContext("schemaPreview", calculatePreview(raw))
	}

	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()

	v.logger.Debug("Compiled tool input schema.", "tool", name, "duration", time.Since(start))
	return nil
}

// HasSchema reports whether a schema is registered under name.
func (v *Validator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Names lists the registered tools in order.
func (v *Validator) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the JSON arguments data against the named tool's schema.
// Empty data and JSON null are validated as an empty object.
func (v *Validator) Validate(_ context.Context, name string, data []byte) error {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return NewValidationError(ErrSchemaNotFound,
			fmt.Sprintf("no input schema registered for tool %s", name), nil).
			WithContext("availableSchemas", v.Names())
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	var instance interface{}
	if err := json.Unmarshal(trimmed, &instance); err != nil {
		return NewValidationError(ErrInvalidJSONFormat, "arguments are not valid JSON",
			errors.Wrap(err, "json.Unmarshal failed")).
			WithContext("tool", name).
			WithContext("dataPreview", calculatePreview(data))
	}

	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			converted := convertValidationError(valErr, name, trimmed)
			v.logger.Debug("Tool arguments failed schema validation.",
				"tool", name,
				"instancePath", converted.InstancePath,
				"schemaPath", converted.SchemaPath)
			return converted
		}
		return NewValidationError(ErrValidationFailed, "schema validation failed",
			errors.Wrap(err, "schema.Validate failed unexpectedly")).
			WithContext("tool", name)
	}
	return nil
}
