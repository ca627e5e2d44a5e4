package policy

import (
	"time"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/topdown/builtins"
	"github.com/open-policy-agent/opa/v1/types"
	"github.com/rs/zerolog/log"
)

var dateLayouts = []string{"2006/01/02", "2006-01-02"}

func init() {
	rego.RegisterBuiltin1(yearsSince, func(bctx rego.BuiltinContext, op *ast.Term) (*ast.Term, error) {
		ret, err := builtinYearsSince(bctx, op)
		if err != nil {
			log.Warn().
				Str("location", bctx.Location.String()).
				Msgf("%s: %v", yearsSince.Name, err)
			return nil, err
		}
		return ret, nil
	})
}

// years_since("1990/04/21") is the number of full years elapsed since a
// date, e.g. the age of a document holder.
var yearsSince = &rego.Function{
	Name: "years_since",
	Decl: types.NewFunction(types.Args(types.S), types.N),
}

func builtinYearsSince(bctx rego.BuiltinContext, op *ast.Term) (*ast.Term, error) {
	s, err := builtins.StringOperand(op.Value, 1)
	if err != nil {
		return nil, err
	}

	date, err := parseDate(string(s))
	if err != nil {
		return nil, builtins.NewOperandErr(1, "date must be YYYY/MM/DD or YYYY-MM-DD, got %q", string(s))
	}

	now := evalTime(bctx)
	years := now.Year() - date.Year()
	if now.Month() < date.Month() || (now.Month() == date.Month() && now.Day() < date.Day()) {
		years--
	}
	return ast.IntNumberTerm(years), nil
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func evalTime(bctx rego.BuiltinContext) time.Time {
	if bctx.Time != nil {
		if n, ok := bctx.Time.Value.(ast.Number); ok {
			if ns, ok := n.Int64(); ok {
				return time.Unix(0, ns).UTC()
			}
		}
	}
	return time.Now().UTC()
}
