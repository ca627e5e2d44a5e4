package client

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Logger = zerolog.Nop()
}

type recordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   map[string]any
}

type MockHTTPClient struct {
	mu       sync.Mutex
	requests []recordedRequest

	Status      int
	ContentType string
	Reply       string
	Handler     func(req *http.Request) (*http.Response, error)
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	r := recordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&r.Body)
	}
	m.mu.Lock()
	m.requests = append(m.requests, r)
	m.mu.Unlock()

	if m.Handler != nil {
		return m.Handler(req)
	}

	status := m.Status
	if status == 0 {
		status = http.StatusOK
	}
	contentType := m.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	reply := m.Reply
	if reply == "" {
		reply = `{"success":true}`
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(reply)),
		Request:    req,
	}, nil
}

func (m *MockHTTPClient) Requests() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}

func (m *MockHTTPClient) Last(t *testing.T) recordedRequest {
	reqs := m.Requests()
	require.NotEmpty(t, reqs, "no request was sent")
	return reqs[len(reqs)-1]
}

func newTestClient(t *testing.T, m *MockHTTPClient, opts ...Option) *Client {
	opts = append([]Option{
		WithHTTPClient(m),
		WithEndpoint("https://api.test/"),
		WithGetEnv(func(string) string { return "" }),
	}, opts...)
	c, err := New("test-key", opts...)
	require.NoError(t, err)
	return c
}
