// file: internal/schema/validator_test.go
package schema

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moveSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"bookmark_id": map[string]interface{}{"type": "number"},
		"folder_id":   map[string]interface{}{"type": "number"},
		"progress":    map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		"format":      map[string]interface{}{"type": "string", "enum": []string{"html", "text"}},
	},
	"required": []string{"bookmark_id"},
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v := NewValidator(logging.GetNoopLogger())
	require.NoError(t, v.Register("move_bookmark", moveSchema))
	return v
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr), "expected *ValidationError, got %T", err)
	return valErr
}

func TestValidatorAcceptsValidArguments(t *testing.T) {
	v := newTestValidator(t)
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, "move_bookmark", []byte(`{"bookmark_id":1,"folder_id":2}`)))
	assert.NoError(t, v.Validate(ctx, "move_bookmark", []byte(`{"bookmark_id":1,"progress":0.5,"format":"text"}`)))
}

func TestValidatorReportsOffendingArgument(t *testing.T) {
	v := newTestValidator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		data     string
		instance string
	}{
		{name: "wrong type", data: `{"bookmark_id":"seven"}`, instance: "/bookmark_id"},
		{name: "below minimum", data: `{"bookmark_id":1,"progress":-0.5}`, instance: "/progress"},
		{name: "above maximum", data: `{"bookmark_id":1,"progress":1.5}`, instance: "/progress"},
		{name: "not in enum", data: `{"bookmark_id":1,"format":"pdf"}`, instance: "/format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			valErr := requireValidationError(t, v.Validate(ctx, "move_bookmark", []byte(tc.data)))
			assert.Equal(t, ErrValidationFailed, valErr.Code)
			assert.Equal(t, tc.instance, valErr.InstancePath)
			assert.NotEmpty(t, valErr.SchemaPath)
			assert.Contains(t, valErr.Error(), tc.instance)
			assert.Equal(t, "move_bookmark", valErr.Context["tool"])
		})
	}
}

func TestValidatorRequiredProperty(t *testing.T) {
	v := newTestValidator(t)

	valErr := requireValidationError(t, v.Validate(context.Background(), "move_bookmark", []byte(`{"folder_id":2}`)))
	assert.Contains(t, valErr.Error(), "bookmark_id")
}

func TestValidatorTreatsMissingArgumentsAsEmptyObject(t *testing.T) {
	v := NewValidator(logging.GetNoopLogger())
	require.NoError(t, v.Register("list_folders", map[string]interface{}{"type": "object"}))
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, "list_folders", nil))
	assert.NoError(t, v.Validate(ctx, "list_folders", []byte("null")))
	assert.NoError(t, v.Validate(ctx, "list_folders", []byte("  ")))

	// An empty object still misses required properties.
	requireValidationError(t, newTestValidator(t).Validate(ctx, "move_bookmark", nil))
}

func TestValidatorRejectsMalformedJSON(t *testing.T) {
	v := newTestValidator(t)

	valErr := requireValidationError(t, v.Validate(context.Background(), "move_bookmark", []byte(`{"bookmark_id":`)))
	assert.Equal(t, ErrInvalidJSONFormat, valErr.Code)
	assert.NotNil(t, valErr.Unwrap())
}

func TestValidatorUnknownTool(t *testing.T) {
	v := newTestValidator(t)

	valErr := requireValidationError(t, v.Validate(context.Background(), "nope", []byte(`{}`)))
	assert.Equal(t, ErrSchemaNotFound, valErr.Code)
	assert.Equal(t, []string{"move_bookmark"}, valErr.Context["availableSchemas"])
}

func TestRegisterRejectsBadSchemaAndName(t *testing.T) {
	v := NewValidator(logging.GetNoopLogger())

	err := v.Register("broken", map[string]interface{}{"type": 42})
	valErr := requireValidationError(t, err)
	assert.Equal(t, ErrSchemaCompileFailed, valErr.Code)
	assert.False(t, v.HasSchema("broken"))

	require.Error(t, v.Register("Bad-Name", map[string]interface{}{"type": "object"}))
	assert.False(t, v.HasSchema("Bad-Name"))
	assert.Empty(t, v.Names())
}

func TestRegisterReplacesSchema(t *testing.T) {
	v := newTestValidator(t)
	require.NoError(t, v.Register("move_bookmark", map[string]interface{}{"type": "object"}))

	assert.True(t, v.HasSchema("move_bookmark"))
	assert.NoError(t, v.Validate(context.Background(), "move_bookmark", []byte(`{}`)))
}

func TestCalculatePreview(t *testing.T) {
	assert.Equal(t, "a.b", calculatePreview([]byte("a\nb")))

	long := make([]byte, maxPreviewLen+10)
	for i := range long {
		long[i] = 'x'
	}
	preview := calculatePreview(long)
	assert.Len(t, preview, maxPreviewLen+3)
	assert.True(t, len(preview) > 3 && preview[len(preview)-3:] == "...")
}
