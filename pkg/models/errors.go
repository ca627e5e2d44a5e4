package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Local validation failure, raised before anything is sent over the wire.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func InvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

// Failure reported by the API inside the response body. Code is vendor
// defined and unrelated to the HTTP status code.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return "api error: " + e.Message
	}
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

// IntCode returns the numeric form of Code when it has one.
func (e *APIError) IntCode() (int, bool) {
	n, err := strconv.Atoi(e.Code)
	return n, err == nil
}

// ParseAPIError extracts the error envelope of a decoded response body.
// Returns nil when the body has no top-level "error" key.
func ParseAPIError(body map[string]any) *APIError {
	raw, ok := body["error"]
	if !ok || raw == nil {
		return nil
	}

	switch e := raw.(type) {
	case map[string]any:
		message, _ := e["message"].(string)
		return &APIError{Message: message, Code: codeString(e["code"])}
	case string:
		return &APIError{Message: e}
	default:
		return &APIError{Message: fmt.Sprint(e)}
	}
}

// HandleError returns the body unchanged unless it carries an error envelope
// and throw is set, in which case the envelope is returned as *APIError.
func HandleError(body map[string]any, throw bool) (map[string]any, error) {
	if !throw {
		return body, nil
	}
	if apiErr := ParseAPIError(body); apiErr != nil {
		return body, apiErr
	}
	return body, nil
}

func codeString(code any) string {
	switch c := code.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case json.Number:
		return c.String()
	case int:
		return strconv.Itoa(c)
	default:
		return fmt.Sprint(c)
	}
}
