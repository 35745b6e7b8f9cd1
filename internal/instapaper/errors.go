// file: internal/instapaper/errors.go
package instapaper

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds. Every error returned by Client matches exactly one of these
// under errors.Is, except context cancellation and transport failures which
// are returned wrapped but unmarked.
var (
	// ErrAuthentication marks a rejected xAuth exchange.
	ErrAuthentication = errors.New("instapaper authentication failed")
	// ErrTokenParse marks an xAuth response that lacked a usable token pair.
	ErrTokenParse = errors.New("failed to obtain OAuth tokens")
	// ErrAPIRequest marks a non-2xx response to a signed API call.
	ErrAPIRequest = errors.New("instapaper API request failed")
	// ErrValidation marks input rejected before any network I/O.
	ErrValidation = errors.New("invalid request")
	// ErrDecode marks a response whose shape did not match the operation.
	ErrDecode = errors.New("unexpected response format")
)

// APIRequestError carries the details of a non-2xx API response.
type APIRequestError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
	// Code and Message are filled when the body is an Instapaper error array.
	Code    int
	Message string
}

// Error implements the error interface.
func (e *APIRequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API request failed: %s - %d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("API request failed: %s - %s", e.Status, e.Body)
}

// Is lets errors.Is(err, ErrAPIRequest) match.
func (e *APIRequestError) Is(target error) bool {
	return target == ErrAPIRequest
}

func newAPIRequestError(endpoint string, statusCode int, status, body string) *APIRequestError {
	apiErr := &APIRequestError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
	}
	// Instapaper reports failures as [{"type":"error","error_code":1241,"message":"..."}].
	var items []struct {
		Type    string `json:"type"`
		Code    int    `json:"error_code"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(body), &items) == nil {
		for _, item := range items {
			if item.Type == "error" {
				apiErr.Code = item.Code
				apiErr.Message = item.Message
				break
			}
		}
	}
	return apiErr
}

func validationErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func decodeErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrDecode)
}
