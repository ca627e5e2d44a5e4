package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/idanalyzer/idanalyzer-go/pkg/endpoint"
	"github.com/idanalyzer/idanalyzer-go/pkg/input"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/idanalyzer/idanalyzer-go/pkg/static"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout  = 60 * time.Second
	ExportTimeout   = 300 * time.Second
	DocupassTimeout = 30 * time.Second

	HeaderAPIKey    = "X-Api-Key"
	HeaderRequestID = "X-Request-ID"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor sends requests on behalf of every resource type. It is safe for
// concurrent use.
type Executor struct {
	HTTPClient
	Endpoints *endpoint.Resolver
	Inputs    *input.Resolver

	apiKey        string
	throwAPIError bool
	timeout       time.Duration
}

type options struct {
	endpoint      string
	region        string
	insecure      bool
	throwAPIError bool
	timeout       time.Duration
	httpClient    HTTPClient
	getEnv        func(string) string
}

type Option func(*options)

// Base URL replacing the region hosts, e.g. an on-premise deployment.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// Disables TLS certificate verification. Ignored when WithHTTPClient is set.
func WithInsecureSkipVerify(insecure bool) Option {
	return func(o *options) { o.insecure = insecure }
}

// Return error envelopes as *models.APIError in addition to the response.
func WithThrowAPIError(throw bool) Option {
	return func(o *options) { o.throwAPIError = throw }
}

// Replaces every per-operation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) { o.httpClient = client }
}

func WithGetEnv(getEnv func(string) string) Option {
	return func(o *options) { o.getEnv = getEnv }
}

// WithConfiguration applies a file configuration. The API key is not part
// of it since it has to be resolved through a credential provider first.
func WithConfiguration(c *models.Configuration) Option {
	return func(o *options) {
		o.endpoint = c.Endpoint
		o.region = c.Region
		o.insecure = c.InsecureSkipVerify
		o.throwAPIError = c.ThrowAPIError
		o.timeout = c.Timeout
	}
}

// NewExecutor creates an executor for apiKey. When apiKey is empty the
// IDANALYZER_KEY environment variable is used.
func NewExecutor(apiKey string, opts ...Option) (*Executor, error) {
	o := &options{getEnv: os.Getenv}
	for _, opt := range opts {
		opt(o)
	}

	if apiKey == "" {
		apiKey = o.getEnv(models.EnvAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("please set API key via environment variable '%s'", models.EnvAPIKey)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: o.insecure,
		}
		httpClient = &http.Client{Transport: transport}
	}

	endpoints := endpoint.NewResolver(o.endpoint, o.region)
	endpoints.GetEnv = o.getEnv

	return &Executor{
		HTTPClient:    httpClient,
		Endpoints:     endpoints,
		Inputs:        input.NewResolver(),
		apiKey:        apiKey,
		throwAPIError: o.throwAPIError,
		timeout:       o.timeout,
	}, nil
}

func (e *Executor) Get(ctx context.Context, operation string, query url.Values, timeout time.Duration) (*Response, error) {
	return e.do(ctx, http.MethodGet, operation, query, nil, timeout)
}

func (e *Executor) Post(ctx context.Context, operation string, body any, timeout time.Duration) (*Response, error) {
	return e.do(ctx, http.MethodPost, operation, nil, body, timeout)
}

func (e *Executor) Patch(ctx context.Context, operation string, body any, timeout time.Duration) (*Response, error) {
	return e.do(ctx, http.MethodPatch, operation, nil, body, timeout)
}

func (e *Executor) Delete(ctx context.Context, operation string, timeout time.Duration) (*Response, error) {
	return e.do(ctx, http.MethodDelete, operation, nil, nil, timeout)
}

// Download streams the body of a GET request into the file at destination.
// A JSON response is treated as an API reply instead of file content.
func (e *Executor) Download(ctx context.Context, operation string, destination string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeoutOr(timeout))
	defer cancel()

	resp, err := e.send(ctx, http.MethodGet, operation, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if isJSON(resp.Header.Get("Content-Type")) {
		r, err := e.decode(resp)
		if err != nil {
			return err
		}
		if r.Error != nil {
			return r.Error
		}
		return fmt.Errorf("download %s: unexpected JSON response", operation)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return unexpectedStatus(resp)
	}

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destination, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", destination, err)
	}

	log.Debug().Str("destination", destination).Int64("bytes", n).Msg("download complete")
	return nil
}

func (e *Executor) do(ctx context.Context, method, operation string, query url.Values, body any, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeoutOr(timeout))
	defer cancel()

	resp, err := e.send(ctx, method, operation, query, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	r, err := e.decode(resp)
	if err != nil {
		return nil, err
	}

	if _, err := models.HandleError(r.Body, e.throwAPIError); err != nil {
		return r, err
	}
	return r, nil
}

func (e *Executor) send(ctx context.Context, method, operation string, query url.Values, body any) (*http.Response, error) {
	u, err := e.Endpoints.Resolve(operation)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPIKey, e.apiKey)
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("User-Agent", static.UserAgent())

	start := time.Now()
	resp, err := e.Do(req)
	if err != nil {
		log.Debug().Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("url", u).
			Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, operation, err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("response_time", time.Since(start)).
		Msg("api request")
	return resp, nil
}

func (e *Executor) decode(resp *http.Response) (*Response, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil || body == nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, truncate(data))
		}
		if err == nil {
			err = errors.New("response is not a JSON object")
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Error:      models.ParseAPIError(body),
	}, nil
}

func (e *Executor) timeoutOr(timeout time.Duration) time.Duration {
	if e.timeout > 0 {
		return e.timeout
	}
	return timeout
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func unexpectedStatus(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, truncate(data))
}

func truncate(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}
