package client

import (
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

// Response is the decoded reply of an API call. Error is set when the body
// carries an error envelope, whether or not the executor returned it as an
// error.
type Response struct {
	StatusCode int
	Body       map[string]any
	Error      *models.APIError
}

// Err returns the API error of the response, if any.
func (r *Response) Err() error {
	if r == nil || r.Error == nil {
		return nil
	}
	return r.Error
}

// Unwrap returns the response, or its API error when it has one.
func (r *Response) Unwrap() (*Response, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Decode converts the body into a typed value such as models.Transaction.
func (r *Response) Decode(out any) error {
	return models.Convert(r.Body, out)
}

// String returns a top-level string field of the body.
func (r *Response) String(key string) string {
	s, _ := r.Body[key].(string)
	return s
}
