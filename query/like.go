package query

import (
	"fmt"
	"strings"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

const likeEscape = "~"

var likeEscaper = strings.NewReplacer("~", "~~", "%", "~%", "_", "~_")

//escapeLike escapes LIKE wildcards with ~
func escapeLike(text string) string {
	return likeEscaper.Replace(text)
}

//likePattern wraps escaped text with wildcards for Contains, StartsWith and EndsWith
func likePattern(method, text string) string {
	text = escapeLike(text)
	switch method {
	case "StartsWith":
		return text + "%"
	case "EndsWith":
		return "%" + text
	}
	return "%" + text + "%"
}

//like translates string containment tests into LIKE predicates
func (b *builder) like(sc *scope, call *expr.Call) (ir.Predicate, error) {
	if call.Object == nil || len(call.Args) != 1 {
		return nil, unsupported(call.Method, call)
	}
	x, err := b.translate(sc, call.Object)
	if err != nil {
		return nil, err
	}
	patternNode := call.Args[0]
	method := call.Method
	switch classify(patternNode) {
	case classConstant:
		value, err := expr.Eval(patternNode, nil)
		if err != nil {
			return nil, newError(ErrUnsupportedExpressionShape, method, patternNode, "%v", err)
		}
		pattern := &ir.Value{Type: stringType}
		if value = dereference(value); value != nil {
			pattern.Value = likePattern(method, fmt.Sprintf("%v", value))
		}
		return &ir.Like{X: x, Pattern: pattern, Escape: &ir.Value{Value: likeEscape, Type: stringType}}, nil
	case classHost:
		param := b.parameter(patternNode, "like:"+method, func(value interface{}) (interface{}, error) {
			if value = dereference(value); value == nil {
				return nil, nil
			}
			return likePattern(method, fmt.Sprintf("%v", value)), nil
		})
		return &ir.Like{X: x, Pattern: param, Escape: &ir.Value{Value: likeEscape, Type: stringType}}, nil
	}
	pattern, err := b.translate(sc, patternNode)
	if err != nil {
		return nil, err
	}
	wildcard := &ir.Value{Value: "%", Type: stringType}
	switch method {
	case "StartsWith":
		pattern = ir.NewBinary(pattern, "+", wildcard, stringType, ir.PrecedenceAdditive)
	case "EndsWith":
		pattern = ir.NewBinary(wildcard, "+", pattern, stringType, ir.PrecedenceAdditive)
	default:
		pattern = ir.NewBinary(ir.NewBinary(wildcard, "+", pattern, stringType, ir.PrecedenceAdditive), "+", wildcard, stringType, ir.PrecedenceAdditive)
	}
	return &ir.Like{X: x, Pattern: pattern}, nil
}
