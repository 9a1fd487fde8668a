package query

import (
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

var compareOperators = map[expr.Op]string{
	expr.OpEqual:          ir.OpEqual,
	expr.OpNotEqual:       ir.OpNotEqual,
	expr.OpLess:           ir.OpLess,
	expr.OpLessOrEqual:    ir.OpLessOrEqual,
	expr.OpGreater:        ir.OpGreater,
	expr.OpGreaterOrEqual: ir.OpGreaterOrEqual,
}

func isNullConstant(node expr.Node) bool {
	constant, ok := node.(*expr.Constant)
	return ok && constant.IsNull()
}

//compare translates comparison, entity and anonymous values are compared by their key members
func (b *builder) compare(sc *scope, op expr.Op, x, y expr.Node) (ir.Predicate, error) {
	if isNullConstant(x) {
		x, y = y, x
	}
	if isNullConstant(y) && (op == expr.OpEqual || op == expr.OpNotEqual) {
		return b.compareNull(sc, op, x)
	}
	if !expr.IsScalar(x.Type()) || !expr.IsScalar(y.Type()) {
		if op != expr.OpEqual && op != expr.OpNotEqual {
			return nil, newError(ErrUnsupportedExpressionShape, "compare", x, "operator %v is not supported for %v", op, x.Type())
		}
		return b.compareObjects(sc, op, x, y)
	}
	left, err := b.translate(sc, x)
	if err != nil {
		return nil, err
	}
	right, err := b.translate(sc, y)
	if err != nil {
		return nil, err
	}
	if op == expr.OpEqual || op == expr.OpNotEqual {
		if b.isNullableParameter(left, x) && right.CanBeNull() || b.isNullableParameter(right, y) && left.CanBeNull() {
			sc.current().ParameterDependent = true
		}
	}
	return &ir.Compare{X: left, Op: compareOperators[op], Y: right}, nil
}

func (b *builder) isNullableParameter(e ir.Expr, node expr.Node) bool {
	_, ok := e.(*ir.Parameter)
	return ok && expr.IsNullable(node.Type())
}

//compareNull translates x == nil, LEFT joined sources are tested through their null check column
func (b *builder) compareNull(sc *scope, op expr.Op, x expr.Node) (ir.Predicate, error) {
	not := op == expr.OpNotEqual
	if classify(x) != classServer {
		e, err := b.translate(sc, x)
		if err != nil {
			return nil, err
		}
		return &ir.IsNull{X: e, Not: not}, nil
	}
	field, ok, err := b.tryField(sc, x)
	if err != nil {
		return nil, err
	}
	if ok {
		if source, isSource := field.(Source); isSource {
			if check := nullCheck(source); check != nil {
				return &ir.IsNull{X: check, Not: not}, nil
			}
			return &ir.ExprPredicate{Expr: &ir.Value{Value: not, Type: boolType}}, nil
		}
	}
	e, err := b.translate(sc, x)
	if err != nil {
		return nil, err
	}
	return &ir.IsNull{X: e, Not: not}, nil
}

//nullCheck returns null check expression for optional source, or nil if source is never null
func nullCheck(source Source) ir.Expr {
	switch actual := source.(type) {
	case *Table:
		if actual.CanBeNull() {
			return &ir.NullCheck{Join: actual.join}
		}
	case *GroupJoin:
		return &ir.NullCheck{Join: actual.join}
	case *SubQuery:
		inner := nullCheck(actual.source)
		if inner == nil {
			return nil
		}
		index := actual.sub.Select.Add(inner, "")
		return actual.sub.Column(index)
	}
	return nil
}

//compareObjects compares values member wise, == is a conjunction, != a disjunction
func (b *builder) compareObjects(sc *scope, op expr.Op, x, y expr.Node) (ir.Predicate, error) {
	if classify(x) != classServer {
		x, y = y, x
	}
	names, left, err := b.keyOperands(sc, x)
	if err != nil {
		return nil, err
	}
	if len(left) == 0 {
		return nil, newError(ErrKeyCardinalityMismatch, "compare", x, "no key members to compare")
	}
	var right []ir.Expr
	if classify(y) == classServer {
		var otherNames []string
		if otherNames, right, err = b.keyOperands(sc, y); err != nil {
			return nil, err
		}
		if len(otherNames) != len(names) {
			return nil, newError(ErrKeyCardinalityMismatch, "compare", y, "expected %v key members, but had %v", len(names), len(otherNames))
		}
	} else {
		right = make([]ir.Expr, len(names))
		for i, name := range names {
			node := y
			if name != "" {
				node = expr.Field(y, name)
			}
			if right[i], err = b.translate(sc, node); err != nil {
				return nil, err
			}
		}
	}
	if len(left) != len(right) {
		return nil, newError(ErrKeyCardinalityMismatch, "compare", x, "expected %v key members, but had %v", len(left), len(right))
	}
	if len(left) == 1 {
		return &ir.Compare{X: left[0], Op: compareOperators[op], Y: right[0]}, nil
	}
	ret := ir.NewSearchCondition()
	for i := range left {
		ret.Add(&ir.Condition{
			Predicate: &ir.Compare{X: left[i], Op: compareOperators[op], Y: right[i]},
			Or:        op == expr.OpNotEqual && i < len(left)-1,
		})
	}
	return ret, nil
}
