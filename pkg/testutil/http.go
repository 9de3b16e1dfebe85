// Package testutil provides request builders and response assertions for
// handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrorResponse mirrors the JSON error body written by httputil.WriteError.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description"`
	Details     map[string]string `json:"details"`
}

// NewJSONRequest builds a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, path string, v any) *http.Request {
	t.Helper()

	var body io.Reader = http.NoBody
	if v != nil {
		raw, err := json.Marshal(v)
		require.NoError(t, err, "failed to marshal request body")
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithBearer sets the Authorization header.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// DoRequest serves req and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeJSON decodes the response body into a T.
func DecodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), "failed to decode response: %s", rr.Body.String())
	return &out
}

// AssertError checks the status and error code and returns the decoded body
// for further checks on details.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) *ErrorResponse {
	t.Helper()
	require.Equal(t, status, rr.Code, "unexpected status, body: %s", rr.Body.String())
	body := DecodeJSON[ErrorResponse](t, rr)
	assert.Equal(t, code, body.Error, "unexpected error code")
	return body
}
