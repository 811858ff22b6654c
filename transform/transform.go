// Package transform builds field transformers from expressions.
package transform

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/spanyaml/spanyaml/decode"
	"github.com/spanyaml/spanyaml/ir"
)

// Expr compiles src into a transformer that is evaluated once per scalar
// node. The expression sees `value` (the scalar as Go data) and `kind` (the
// node's kind name). Returning nil leaves the node untouched; any other
// result replaces the node, keeping its span. Container nodes are never
// offered to the expression.
func Expr(src string) (decode.Transformer, error) {
	program, err := expr.Compile(src, expr.Env(map[string]any{}))
	if err != nil {
		return nil, fmt.Errorf("compiling transform expression: %w", err)
	}
	return func(v *ir.Value) (*ir.Value, error) {
		return evalScalar(program, v)
	}, nil
}

func evalScalar(program *vm.Program, v *ir.Value) (*ir.Value, error) {
	var in any
	switch v.Kind {
	case ir.NullKind:
		in = nil
	case ir.BoolKind:
		in = v.Bool
	case ir.NumberKind:
		if v.Number.IsFloat() {
			in = v.Number.AsFloat64()
		} else if i, ok := v.Number.AsInt64(); ok {
			in = i
		} else {
			u, _ := v.Number.AsUint64()
			in = u
		}
	case ir.StringKind:
		in = v.Str
	default:
		return nil, nil
	}
	out, err := expr.Run(program, map[string]any{
		"value": in,
		"kind":  v.Kind.String(),
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	nv, err := scalarValue(out)
	if err != nil {
		return nil, err
	}
	return nv.WithSpan(v.Span), nil
}

func scalarValue(out any) (*ir.Value, error) {
	switch x := out.(type) {
	case bool:
		return ir.FromBool(x), nil
	case int:
		return ir.FromInt(int64(x)), nil
	case int64:
		return ir.FromInt(x), nil
	case uint64:
		return ir.FromUint(x), nil
	case float64:
		return ir.FromFloat(x), nil
	case string:
		return ir.FromString(x), nil
	default:
		return nil, fmt.Errorf("transform expression produced unsupported value of type %T", out)
	}
}
