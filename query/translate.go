package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

//translate translates scalar expression, constants fold to literals and host expressions become parameters
func (b *builder) translate(sc *scope, node expr.Node) (ir.Expr, error) {
	switch classify(node) {
	case classConstant:
		value, err := expr.Eval(node, nil)
		if err != nil {
			return nil, newError(ErrUnsupportedExpressionShape, "constant", node, "%v", err)
		}
		return b.value(value, node.Type())
	case classHost:
		return b.parameter(node, "", nil), nil
	}
	ret, err := b.translateNode(sc, node)
	if err != nil {
		return nil, err
	}
	return b.dialect.ConvertExpression(ret), nil
}

//value creates literal, enum values are stored as codes
func (b *builder) value(value interface{}, t reflect.Type) (ir.Expr, error) {
	value = dereference(value)
	if enum := b.schema.Enum(t); enum != nil {
		code, err := enum.Code(value)
		if err != nil {
			return nil, err
		}
		return &ir.Value{Value: code, Type: reflect.TypeOf(code)}, nil
	}
	return &ir.Value{Value: value, Type: expr.Deref(t)}, nil
}

func dereference(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return value
}

//parameter returns deferred parameter for host expression, parameters are shared per expression and conversion
func (b *builder) parameter(node expr.Node, kind string, convert func(value interface{}) (interface{}, error)) *ir.Parameter {
	if convert == nil {
		if enum := b.schema.Enum(node.Type()); enum != nil {
			kind = "enum"
			convert = func(value interface{}) (interface{}, error) {
				return enum.Code(dereference(value))
			}
		}
	}
	key := parameterKey(node) + "#" + kind
	if ret, ok := b.byKey[key]; ok {
		return ret.SQL
	}
	param := &Parameter{
		SQL:     &ir.Parameter{Name: b.prefix + strconv.Itoa(len(b.parameters)+1), Type: expr.Deref(node.Type())},
		Expr:    node,
		convert: convert,
	}
	b.parameters = append(b.parameters, param)
	b.byKey[key] = param
	return param.SQL
}

func parameterKey(node expr.Node) string {
	sb := &strings.Builder{}
	sb.WriteString(node.String())
	expr.Walk(node, func(n expr.Node) bool {
		if param, ok := n.(*expr.HostParam); ok {
			sb.WriteString(fmt.Sprintf("/%v", param.Index))
		}
		return true
	})
	return sb.String()
}

func (b *builder) translateNode(sc *scope, node expr.Node) (ir.Expr, error) {
	switch actual := node.(type) {
	case *expr.Parameter, *expr.Member:
		field, ok, err := b.tryField(sc, node)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, unsupported("member", node)
		}
		exprs, err := b.expressions(field)
		if err != nil {
			return nil, err
		}
		if len(exprs) != 1 {
			return nil, newError(ErrUnsupportedExpressionShape, "member", node, "expected scalar value, but had %v columns", len(exprs))
		}
		return exprs[0], nil
	case *expr.Binary:
		return b.binary(sc, actual)
	case *expr.Unary:
		return b.unary(sc, actual)
	case *expr.Conditional:
		test, err := b.predicate(sc, actual.Test)
		if err != nil {
			return nil, err
		}
		then, err := b.translate(sc, actual.Then)
		if err != nil {
			return nil, err
		}
		els, err := b.translate(sc, actual.Else)
		if err != nil {
			return nil, err
		}
		return ir.NewFunction("CASE", actual.Type(), asExpr(test), then, els), nil
	case *expr.Call:
		return b.call(sc, actual)
	case *expr.TypeIs:
		predicate, err := b.predicate(sc, actual)
		if err != nil {
			return nil, err
		}
		return asExpr(predicate), nil
	}
	return nil, unsupported("translate", node)
}

func (b *builder) binary(sc *scope, node *expr.Binary) (ir.Expr, error) {
	if node.Op.IsComparison() || node.Op == expr.OpAnd || node.Op == expr.OpOr {
		predicate, err := b.predicate(sc, node)
		if err != nil {
			return nil, err
		}
		return asExpr(predicate), nil
	}
	x, err := b.translate(sc, node.X)
	if err != nil {
		return nil, err
	}
	y, err := b.translate(sc, node.Y)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case expr.OpCoalesce:
		return ir.NewFunction("Coalesce", node.RType, x, y), nil
	case expr.OpAdd:
		return ir.NewBinary(x, "+", y, node.RType, ir.PrecedenceAdditive), nil
	case expr.OpSub:
		return ir.NewBinary(x, "-", y, node.RType, ir.PrecedenceSubtraction), nil
	case expr.OpMul, expr.OpDiv, expr.OpMod:
		return ir.NewBinary(x, string(node.Op), y, node.RType, ir.PrecedenceMultiplicative), nil
	case expr.OpBitAnd, expr.OpBitOr, expr.OpBitXor:
		return ir.NewBinary(x, string(node.Op), y, node.RType, ir.PrecedenceBitwise), nil
	}
	return nil, unsupported("binary", node)
}

func (b *builder) unary(sc *scope, node *expr.Unary) (ir.Expr, error) {
	switch node.Op {
	case expr.OpNot:
		predicate, err := b.predicate(sc, node)
		if err != nil {
			return nil, err
		}
		return asExpr(predicate), nil
	case expr.OpNegate:
		x, err := b.translate(sc, node.X)
		if err != nil {
			return nil, err
		}
		return ir.NewBinary(ir.NewValue(-1), "*", x, node.RType, ir.PrecedenceMultiplicative), nil
	case expr.OpConvert:
		x, err := b.translate(sc, node.X)
		if err != nil {
			return nil, err
		}
		from, to := expr.Deref(node.X.Type()), expr.Deref(node.RType)
		if from == nil || to == nil || from.Kind() == to.Kind() || b.schema.Enum(from) != nil {
			return x, nil
		}
		return ir.NewFunction("Convert", to, &ir.DataType{Type: to}, x), nil
	}
	return nil, unsupported("unary", node)
}

func (b *builder) call(sc *scope, node *expr.Call) (ir.Expr, error) {
	switch node.Owner {
	case expr.OwnerQueryable, expr.OwnerEnumerable:
		switch node.Method {
		case "Contains", "Any", "All":
			predicate, err := b.predicate(sc, node)
			if err != nil {
				return nil, err
			}
			return asExpr(predicate), nil
		}
		return b.aggregate(sc, node)
	case expr.OwnerStrings:
		switch node.Method {
		case "Contains", "StartsWith", "EndsWith":
			predicate, err := b.predicate(sc, node)
			if err != nil {
				return nil, err
			}
			return asExpr(predicate), nil
		}
	}
	operands := callOperands(node)
	converted, err := b.dialect.ConvertMember(node.Owner, node.Method, operands, node.RType)
	if err != nil {
		return nil, newError(ErrUnsupportedExpressionShape, "member", node, "%v", err)
	}
	if converted != nil {
		return b.translate(sc, converted)
	}
	if node.Owner == expr.OwnerSQL {
		args := make([]ir.Expr, len(operands))
		for i, operand := range operands {
			if args[i], err = b.translate(sc, operand); err != nil {
				return nil, err
			}
		}
		return ir.NewFunction(node.Method, node.RType, args...), nil
	}
	return nil, unsupported("call", node)
}

func callOperands(node *expr.Call) []expr.Node {
	if node.Object == nil {
		return node.Args
	}
	return append([]expr.Node{node.Object}, node.Args...)
}

//asExpr returns predicate as search condition expression
func asExpr(predicate ir.Predicate) ir.Expr {
	if condition, ok := predicate.(*ir.SearchCondition); ok {
		return condition
	}
	return ir.NewSearchCondition(&ir.Condition{Predicate: predicate})
}
