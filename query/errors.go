package query

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/expr"
)

var (
	//ErrUnsupportedExpressionShape indicates expression that can not be translated
	ErrUnsupportedExpressionShape = errors.New("unsupported expression shape")
	//ErrGroupingKeyTypeUnsupported indicates key selector not reducible to one SQL value per key field
	ErrGroupingKeyTypeUnsupported = errors.New("grouping key type unsupported")
	//ErrKeyCardinalityMismatch indicates comparison of key sets with different arity
	ErrKeyCardinalityMismatch = errors.New("key cardinality mismatch")
	//ErrMissingInheritanceMapping indicates discriminator value with no mapping and no default
	ErrMissingInheritanceMapping = errors.New("missing inheritance mapping")
	//ErrUnconvertibleType indicates type without scalar converter
	ErrUnconvertibleType = errors.New("unconvertible type")
	//ErrExplicitConstructionNotAllowed indicates explicit entity initializer inside query
	ErrExplicitConstructionNotAllowed = errors.New("explicit construction not allowed")
	//ErrNoElements indicates First or Single over empty result
	ErrNoElements = errors.New("sequence contains no elements")
	//ErrMoreThanOneElement indicates Single over result with more than one row
	ErrMoreThanOneElement = errors.New("sequence contains more than one element")
)

//Error carries compilation context while remaining compatible with errors.Is()
type Error struct {
	Kind  error
	Op    string
	Node  string
	Cause error
}

func (e *Error) Error() string {
	sb := &strings.Builder{}
	sb.WriteString("sqlq")
	if e.Op != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Op)
	}
	sb.WriteString(": ")
	if e.Kind != nil {
		sb.WriteString(e.Kind.Error())
	} else {
		sb.WriteString("error")
	}
	if e.Node != "" {
		sb.WriteString(" expr=")
		sb.WriteString(e.Node)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if e.Kind != nil && target == e.Kind {
		return true
	}
	if e.Cause != nil {
		return errors.Is(e.Cause, target)
	}
	return false
}

func newError(kind error, op string, node expr.Node, format string, args ...interface{}) error {
	ret := &Error{Kind: kind, Op: op}
	if node != nil {
		ret.Node = node.String()
	}
	if format != "" {
		ret.Cause = fmt.Errorf(format, args...)
	}
	return ret
}

func unsupported(op string, node expr.Node) error {
	return newError(ErrUnsupportedExpressionShape, op, node, "")
}

func explicitConstruction(op string, node expr.Node) error {
	if init, ok := node.(*expr.MemberInit); ok {
		return newError(ErrExplicitConstructionNotAllowed, op, node, "explicit construction of entity type %v in query is not allowed", init.RType)
	}
	return nil
}
