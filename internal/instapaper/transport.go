// file: internal/instapaper/transport.go
package instapaper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const verifyCredentialsEndpoint = "/account/verify_credentials"

// Response is the body of a successful API call. It is either a JSONResponse
// or a TextResponse, chosen by the response Content-Type.
type Response interface {
	isResponse()
}

// JSONResponse is a body served as application/json.
type JSONResponse struct {
	Raw json.RawMessage
}

// TextResponse is any other body, such as article HTML.
type TextResponse struct {
	Body string
}

func (JSONResponse) isResponse() {}
func (TextResponse) isResponse() {}

// request signs body with the held token pair, authenticating first if
// needed, and posts it to endpoint.
func (c *Client) request(ctx context.Context, endpoint string, body url.Values) (resp Response, err error) {
	ctx, span := metrics.StartSpan(ctx, "instapaper "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("instapaper.endpoint", endpoint)),
	)
	start := time.Now()
	defer func() {
		c.metrics.RecordAPIRequest(ctx, endpoint, time.Since(start), err)
		metrics.EndSpan(span, err)
	}()

	token, err := c.ensureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	endpointURL := c.endpointURL(endpoint)
	signed, err := c.signer.Sign(http.MethodPost, endpointURL, body, token)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.post(ctx, endpointURL, signed)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", endpoint)
	}
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := newAPIRequestError(endpoint, httpResp.StatusCode, httpResp.Status, string(raw))
		c.logger.Debug("Instapaper API returned an error.", "endpoint", endpoint, "status", httpResp.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}

	return decodeResponse(httpResp.Header.Get("Content-Type"), raw), nil
}

// post sends a form-encoded POST.
func (c *Client) post(ctx context.Context, endpointURL string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	return resp, nil
}

func decodeResponse(contentType string, raw []byte) Response {
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		return JSONResponse{Raw: json.RawMessage(raw)}
	}
	return TextResponse{Body: string(raw)}
}

// decodeJSON unmarshals a JSON response into out.
func decodeJSON(endpoint string, resp Response, out interface{}) error {
	jr, ok := resp.(JSONResponse)
	if !ok {
		return decodeErrorf("%s: expected a JSON response, got %T", endpoint, resp)
	}
	if err := json.Unmarshal(jr.Raw, out); err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: decode response", endpoint), ErrDecode)
	}
	return nil
}

// decodeFirst unmarshals a JSON array response and returns its first element.
func decodeFirst[T any](endpoint string, resp Response) (*T, error) {
	var items []T
	if err := decodeJSON(endpoint, resp, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, decodeErrorf("%s: empty response array", endpoint)
	}
	return &items[0], nil
}

// expectText returns the body of a text response.
func expectText(endpoint string, resp Response) (string, error) {
	tr, ok := resp.(TextResponse)
	if !ok {
		return "", decodeErrorf("%s: expected a text response, got %T", endpoint, resp)
	}
	return tr.Body, nil
}

// VerifyCredentials reports whether the held token pair is accepted.
// Any failure yields false.
func (c *Client) VerifyCredentials(ctx context.Context) bool {
	if _, err := c.request(ctx, verifyCredentialsEndpoint, nil); err != nil {
		c.logger.Debug("Credential verification failed.", "error", err)
		return false
	}
	return true
}
