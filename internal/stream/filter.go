package stream

import (
	"strings"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program evaluated per entry during filtered
// range reads. The zero Filter (empty expression) matches everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles a CEL expression. Available variables:
//
//	id      string    encoded entry key ("ts-seq")
//	ts_ms   int       entry key timestamp
//	seq     int       entry key sequence
//	fields  map       field name -> value, both as strings
//	now_ms  int       wall-clock snapshot for the read
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("seq", cel.IntType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Eval evaluates the expression against one entry. A disabled filter
// returns true; evaluation errors count as non-matches.
func (f Filter) Eval(e Entry, nowMs int64) bool {
	if !f.enabled {
		return true
	}
	fields := make(map[string]string, len(e.Fields)/2)
	for i := 0; i+1 < len(e.Fields); i += 2 {
		fields[string(e.Fields[i])] = string(e.Fields[i+1])
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":     e.Key.Encode(),
		"ts_ms":  e.Key.Ts,
		"seq":    e.Key.Seq,
		"fields": fields,
		"now_ms": nowMs,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
