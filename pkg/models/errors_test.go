package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decode(t *testing.T, s string) map[string]any {
	var body map[string]any
	if err := json.Unmarshal([]byte(s), &body); err != nil {
		t.Fatal(err)
	}
	return body
}

func TestHandleError(t *testing.T) {
	body := decode(t, `{"error":{"message":"bad key","code":401}}`)

	out, err := HandleError(body, true)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad key", apiErr.Message)
	assert.Equal(t, "401", apiErr.Code)
	assert.Equal(t, body, out)

	code, ok := apiErr.IntCode()
	assert.True(t, ok)
	assert.Equal(t, 401, code)

	out, err = HandleError(body, false)
	assert.NoError(t, err)
	assert.Equal(t, body, out)
}

func TestHandleErrorSuccess(t *testing.T) {
	body := decode(t, `{"success":true,"transactionId":"abc"}`)
	out, err := HandleError(body, true)
	assert.NoError(t, err)
	assert.Equal(t, body, out)
}

func TestParseAPIError(t *testing.T) {
	cases := []struct {
		body     string
		expected *APIError
	}{
		{`{}`, nil},
		{`{"error":null}`, nil},
		{`{"error":{"message":"quota","code":"QUOTA_EXCEEDED"}}`, &APIError{Message: "quota", Code: "QUOTA_EXCEEDED"}},
		{`{"error":{"message":"no code"}}`, &APIError{Message: "no code"}},
		{`{"error":"plain"}`, &APIError{Message: "plain"}},
		{`{"error":{"message":"float","code":1.5}}`, &APIError{Message: "float", Code: "1.5"}},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, ParseAPIError(decode(t, c.body)), c.body)
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "api error 401: bad key", (&APIError{Message: "bad key", Code: "401"}).Error())
	assert.Equal(t, "api error: bad key", (&APIError{Message: "bad key"}).Error())
	assert.Equal(t, "'limit' required.", InvalidArgument("'%s' required.", "limit").Error())
}
