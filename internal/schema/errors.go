// file: internal/schema/errors.go
package schema

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode defines validation error codes.
type ErrorCode int

// Defined validation error codes.
const (
	ErrSchemaNotFound ErrorCode = iota + 1000
	ErrSchemaCompileFailed
	ErrValidationFailed
	ErrInvalidJSONFormat
)

// ValidationError reports arguments that do not satisfy a tool's input schema.
type ValidationError struct {
	// Code is the numeric error code.
	Code ErrorCode
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
	// SchemaPath is the keyword location of the violated constraint.
	SchemaPath string
	// InstancePath is the JSON pointer of the offending argument.
	InstancePath string
	// Context contains additional error context.
	Context map[string]interface{}
}

// Error implements the error interface. The cause is left out; a jsonschema
// error repeats the schema URL, which means nothing to a tool caller.
func (e *ValidationError) Error() string {
	if e.InstancePath != "" {
		return fmt.Sprintf("%s: %s", e.InstancePath, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the validation error.
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError creates a new ValidationError.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   errors.WithStack(cause),
	}
}

// convertValidationError reduces a jsonschema error tree to its first leaf,
// which names the argument and the constraint it broke.
func convertValidationError(valErr *jsonschema.ValidationError, name string, data []byte) *ValidationError {
	leaf := valErr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	customErr := NewValidationError(ErrValidationFailed, leaf.Message, valErr)
	customErr.SchemaPath = leaf.KeywordLocation
	customErr.InstancePath = leaf.InstanceLocation
	customErr = customErr.WithContext("tool", name).
		WithContext("dataPreview", calculatePreview(data))

	basicOutput := valErr.BasicOutput()
	if len(basicOutput.Errors) > 0 {
		causes := make([]map[string]string, 0, len(basicOutput.Errors))
		for _, cause := range basicOutput.Errors {
			causes = append(causes, map[string]string{
				"instanceLocation": cause.InstanceLocation,
				"keywordLocation":  cause.KeywordLocation,
				"error":            cause.Error,
			})
		}
		customErr = customErr.WithContext("validationErrors", causes)
	}
	return customErr
}
