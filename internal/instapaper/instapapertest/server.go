// Package instapapertest provides a mock Instapaper API server for tests.
// It records every request and, unless disabled, rejects requests whose
// OAuth signature does not verify.
// file: internal/instapaper/instapapertest/server.go
package instapapertest

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is what the protocol specifies.
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/dghubble/oauth1"
	"github.com/stretchr/testify/require"
)

// Fixed credentials accepted by the mock server.
const (
	ConsumerKey    = "test-consumer-key"
	ConsumerSecret = "test-consumer-secret&more"
	Username       = "reader@example.com"
	Password       = "correct horse"
	Token          = "test-token"
	TokenSecret    = "test-token-secret"
)

// APIPrefix is the path under which the API is served.
const APIPrefix = "/api/1"

// Response is a canned reply.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// JSON returns a 200 application/json response.
func JSON(body string) Response {
	return Response{Status: http.StatusOK, ContentType: "application/json", Body: body}
}

// Text returns a 200 text/html response.
func Text(body string) Response {
	return Response{Status: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: body}
}

// Error returns a JSON error response in Instapaper's format.
func Error(status int, body string) Response {
	return Response{Status: status, ContentType: "application/json", Body: body}
}

// HandlerFunc computes a response from the request form.
type HandlerFunc func(form url.Values) Response

// Request is a recorded request.
type Request struct {
	Path string
	Form url.Values
}

// Server is a mock Instapaper API.
type Server struct {
	Server *httptest.Server
	// BaseURL is the API root to pass to the client.
	BaseURL string
	// VerifySignatures rejects unsigned or badly signed requests with 401.
	VerifySignatures bool

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	requests []Request
}

// NewServer starts a mock server that is closed when the test ends.
// /oauth/access_token answers with Token and TokenSecret for the fixed
// Username and Password and with 401 otherwise.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		VerifySignatures: true,
		handlers:         make(map[string]HandlerFunc),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handleRequest))
	s.BaseURL = s.Server.URL + APIPrefix
	t.Cleanup(s.Server.Close)

	s.Handle("/oauth/access_token", func(form url.Values) Response {
		if form.Get("x_auth_username") != Username || form.Get("x_auth_password") != Password ||
			form.Get("x_auth_mode") != "client_auth" {
			return Response{Status: http.StatusUnauthorized, ContentType: "text/plain", Body: "Invalid xAuth credentials."}
		}
		return Response{
			Status:      http.StatusOK,
			ContentType: "text/plain",
			Body:        "oauth_token=" + Token + "&oauth_token_secret=" + TokenSecret,
		}
	})
	return s
}

// Handle registers a dynamic handler for an endpoint such as "/bookmarks/list".
func (s *Server) Handle(endpoint string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[endpoint] = h
}

// AddResponse registers a fixed response for an endpoint.
func (s *Server) AddResponse(endpoint string, resp Response) {
	s.Handle(endpoint, func(url.Values) Response { return resp })
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests for one endpoint.
func (s *Server) RequestsTo(endpoint string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == endpoint {
			out = append(out, r)
		}
	}
	return out
}

// FirstRequestTo returns the first recorded request for endpoint and fails
// the test when there is none.
func (s *Server) FirstRequestTo(t *testing.T, endpoint string) Request {
	t.Helper()
	reqs := s.RequestsTo(endpoint)
	require.NotEmpty(t, reqs, "no request recorded for %s", endpoint)
	return reqs[0]
}

// Count returns how many requests hit an endpoint.
func (s *Server) Count(endpoint string) int {
	return len(s.RequestsTo(endpoint))
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	endpoint := strings.TrimPrefix(r.URL.Path, APIPrefix)

	s.mu.Lock()
	s.requests = append(s.requests, Request{Path: endpoint, Form: r.PostForm})
	handler, ok := s.handlers[endpoint]
	verify := s.VerifySignatures
	s.mu.Unlock()

	if verify && !s.validSignature(s.Server.URL+r.URL.Path, endpoint, r.PostForm) {
		writeResponse(w, Error(http.StatusUnauthorized, `[{"type":"error","error_code":1040,"message":"Invalid signature"}]`))
		return
	}
	if !ok {
		writeResponse(w, Error(http.StatusNotFound, `[{"type":"error","error_code":404,"message":"Unknown endpoint"}]`))
		return
	}
	writeResponse(w, handler(r.PostForm))
}

func writeResponse(w http.ResponseWriter, resp Response) {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

// validSignature recomputes the HMAC-SHA1 signature of form.
func (s *Server) validSignature(fullURL, endpoint string, form url.Values) bool {
	got := form.Get("oauth_signature")
	if got == "" || form.Get("oauth_consumer_key") != ConsumerKey {
		return false
	}
	tokenSecret := ""
	if endpoint != "/oauth/access_token" {
		if form.Get("oauth_token") != Token {
			return false
		}
		tokenSecret = TokenSecret
	}
	return hmac.Equal([]byte(got), []byte(Signature(http.MethodPost, fullURL, form, ConsumerSecret, tokenSecret)))
}

// Signature computes the OAuth 1.0a HMAC-SHA1 signature of params, ignoring
// any oauth_signature already present.
func Signature(method, fullURL string, params url.Values, consumerSecret, tokenSecret string) string {
	var pairs []string
	for key, values := range params {
		if key == "oauth_signature" {
			continue
		}
		for _, v := range values {
			pairs = append(pairs, oauth1.PercentEncode(key)+"="+oauth1.PercentEncode(v))
		}
	}
	// Sorting encoded pairs matches sorting raw keys for the parameter names the API uses.
	sort.Strings(pairs)
	base := strings.ToUpper(method) + "&" + oauth1.PercentEncode(fullURL) + "&" + oauth1.PercentEncode(strings.Join(pairs, "&"))
	key := oauth1.PercentEncode(consumerSecret) + "&" + oauth1.PercentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
