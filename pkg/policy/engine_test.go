package policy

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Logger = zerolog.Nop()
}

const agePolicy = `
default decision := "review"

decision := "reject" if "FAKE_ID" in warnings

decision := "accept" if {
	count(warnings) == 0
	print("debug: holder age", years_since(input.data.dob[0].value))
	years_since(input.data.dob[0].value) >= 18
}
`

func compile(t *testing.T, src string) *Engine {
	e := NewEngine(src)
	e.Now = func() time.Time { return time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, e.Compile(context.TODO()))
	return e
}

func transaction(dob string, warnings ...string) map[string]any {
	w := []any{}
	for _, code := range warnings {
		w = append(w, map[string]any{"code": code, "severity": "high"})
	}
	return map[string]any{
		"transactionId": "tx1",
		"decision":      "review",
		"data": map[string]any{
			"dob": []any{map[string]any{"value": dob}},
		},
		"warning": w,
	}
}

func TestDecide(t *testing.T) {
	e := compile(t, agePolicy)
	ctx := context.TODO()

	tests := []struct {
		name     string
		tx       map[string]any
		decision string
	}{
		{"adult", transaction("1990/04/20"), "accept"},
		{"minor", transaction("2008/04/21"), "review"},
		{"turns 18 today", transaction("2008-04-20"), "accept"},
		{"fake id", transaction("1990/04/20", "FAKE_ID"), "reject"},
		{"other warning", transaction("1990/04/20", "IMAGE_FORGERY"), "review"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := e.Decide(ctx, tt.tx)
			assert.NoError(t, err)
			assert.Equal(t, tt.decision, decision)
		})
	}
}

func TestPrelude(t *testing.T) {
	e := compile(t, `decision := api_decision`)
	decision, err := e.Decide(context.TODO(), transaction("1990/01/01"))
	assert.NoError(t, err)
	assert.Equal(t, "review", decision)
}

func TestDecideErrors(t *testing.T) {
	ctx := context.TODO()

	e := compile(t, `other := 1`)
	_, err := e.Decide(ctx, transaction("1990/01/01"))
	assert.EqualError(t, err, "policy did not produce a decision")

	e = compile(t, `decision := "maybe"`)
	_, err = e.Decide(ctx, transaction("1990/01/01"))
	assert.EqualError(t, err, "invalid decision maybe, expected one of accept, review, reject")

	e = compile(t, `decision := years_since(input.data.dob[0].value)`)
	_, err = e.Decide(ctx, transaction("01.01.1990"))
	assert.Error(t, err)
}

func TestCompileError(t *testing.T) {
	e := NewEngine(`decision := `)
	assert.Error(t, e.Compile(context.TODO()))
}
