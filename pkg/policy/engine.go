// Package policy decides transactions locally with a Rego policy. The
// policy is evaluated in package idanalyzer with the transaction as input
// and must define a "decision" rule.
package policy

import (
	"context"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/idanalyzer/idanalyzer-go/pkg/static"
	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage/inmem"
	"github.com/open-policy-agent/opa/v1/topdown/print"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const Query = "data.idanalyzer.decision"

//go:embed idanalyzer.rego
var preludeRego string

var _ client.Decider = (*Engine)(nil)

type Engine struct {
	// Rego rules, without package declaration
	Source string
	// Compiled decision query
	Query rego.PreparedEvalQuery
	// Evaluation time, defaults to time.Now
	Now func() time.Time
}

func NewEngine(source string) *Engine {
	return &Engine{
		Source: source,
		Now:    time.Now,
	}
}

// Prepare the engine for evaluation
func (e *Engine) Compile(ctx context.Context) error {
	c, err := ast.CompileModulesWithOpt(map[string]string{
		"idanalyzer.rego": preludeRego,
		"policy.rego":     "package idanalyzer\n" + e.Source,
	}, ast.CompileOpts{
		EnablePrintStatements: true,
		ParserOptions: ast.ParserOptions{
			RegoVersion: ast.RegoV1,
		},
	})
	if err != nil {
		return err
	}

	store := inmem.NewFromObject(map[string]any{
		"decisions": client.Decisions,
		"version":   static.Version,
	})
	query, err := rego.New(
		rego.Query(Query),
		rego.Compiler(c),
		rego.Store(store),
	).PrepareForEval(ctx)
	if err != nil {
		return err
	}

	e.Query = query
	return nil
}

// Decide evaluates the policy against a transaction and returns accept,
// review or reject.
func (e *Engine) Decide(ctx context.Context, transaction map[string]any) (string, error) {
	rs, err := e.Query.Eval(ctx,
		rego.EvalInput(transaction),
		rego.EvalTime(e.Now()),
		rego.EvalPrintHook(e),
	)
	if err != nil {
		return "", err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return "", fmt.Errorf("policy did not produce a decision")
	}

	value := rs[0].Expressions[0].Value
	decision, ok := value.(string)
	if !ok || !slices.Contains(client.Decisions, decision) {
		return "", fmt.Errorf("invalid decision %v, expected one of %s", value, strings.Join(client.Decisions, ", "))
	}
	return decision, nil
}

// Handle print calls from Rego. A "level: " prefix selects the log level.
func (e *Engine) Print(ctx print.Context, msg string) error {
	var line *zerolog.Event
	before, after, found := strings.Cut(msg, ": ")
	if found {
		level, err := zerolog.ParseLevel(before)
		if err != nil || level == zerolog.NoLevel {
			level = zerolog.DebugLevel
		} else {
			msg = after
		}
		line = log.WithLevel(level)
	} else {
		line = log.Debug()
	}

	line.Str("location", ctx.Location.String()).Msg(msg)
	return nil
}
