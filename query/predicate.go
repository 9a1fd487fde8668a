package query

import (
	"reflect"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
)

//predicate translates boolean expression into predicate
func (b *builder) predicate(sc *scope, node expr.Node) (ir.Predicate, error) {
	switch classify(node) {
	case classConstant:
		value, err := expr.Eval(node, nil)
		if err != nil {
			return nil, newError(ErrUnsupportedExpressionShape, "predicate", node, "%v", err)
		}
		return &ir.ExprPredicate{Expr: &ir.Value{Value: dereference(value), Type: boolType}}, nil
	case classHost:
		return &ir.Compare{X: b.parameter(node, "", nil), Op: ir.OpEqual, Y: ir.NewValue(true)}, nil
	}
	ret, err := b.predicateNode(sc, node)
	if err != nil {
		return nil, err
	}
	return b.dialect.ConvertPredicate(ret), nil
}

func (b *builder) predicateNode(sc *scope, node expr.Node) (ir.Predicate, error) {
	switch actual := node.(type) {
	case *expr.Binary:
		switch actual.Op {
		case expr.OpAnd, expr.OpOr:
			x, err := b.predicate(sc, actual.X)
			if err != nil {
				return nil, err
			}
			y, err := b.predicate(sc, actual.Y)
			if err != nil {
				return nil, err
			}
			if actual.Op == expr.OpOr {
				return disjunction(x, y), nil
			}
			return conjunction(x, y), nil
		}
		if actual.Op.IsComparison() {
			return b.compare(sc, actual.Op, actual.X, actual.Y)
		}
	case *expr.Unary:
		if actual.Op == expr.OpNot {
			x, err := b.predicate(sc, actual.X)
			if err != nil {
				return nil, err
			}
			return negate(x), nil
		}
	case *expr.Call:
		switch {
		case actual.Owner == expr.OwnerStrings:
			switch actual.Method {
			case "Contains", "StartsWith", "EndsWith":
				return b.like(sc, actual)
			}
		case actual.IsSequence():
			switch actual.Method {
			case "Contains":
				return b.in(sc, actual)
			case "Any":
				return b.exists(sc, actual, false)
			case "All":
				return b.exists(sc, actual, true)
			}
		}
	case *expr.TypeIs:
		return b.typeIs(sc, actual)
	}
	e, err := b.translateNode(sc, node)
	if err != nil {
		return nil, err
	}
	if condition, ok := e.(*ir.SearchCondition); ok {
		return condition, nil
	}
	return &ir.Compare{X: e, Op: ir.OpEqual, Y: ir.NewValue(true)}, nil
}

func conjunction(x, y ir.Predicate) ir.Predicate {
	ret := ir.NewSearchCondition()
	addCondition(ret, x)
	addCondition(ret, y)
	return ret
}

func disjunction(x, y ir.Predicate) ir.Predicate {
	ret := ir.NewSearchCondition()
	for _, item := range []ir.Predicate{x, y} {
		if condition, ok := item.(*ir.SearchCondition); ok && isDisjunction(condition) {
			for _, c := range condition.Conditions {
				ret.Add(&ir.Condition{Not: c.Not, Predicate: c.Predicate, Or: true})
			}
			continue
		}
		ret.Add(&ir.Condition{Predicate: item, Or: true})
	}
	ret.Conditions[len(ret.Conditions)-1].Or = false
	return ret
}

func isDisjunction(condition *ir.SearchCondition) bool {
	if len(condition.Conditions) < 2 {
		return false
	}
	for _, item := range condition.Conditions[:len(condition.Conditions)-1] {
		if !item.Or {
			return false
		}
	}
	return true
}

//negate returns negated predicate
func negate(predicate ir.Predicate) ir.Predicate {
	switch actual := predicate.(type) {
	case *ir.IsNull:
		return &ir.IsNull{X: actual.X, Not: !actual.Not}
	case *ir.Exists:
		return &ir.Exists{Query: actual.Query, Not: !actual.Not}
	case *ir.Like:
		return &ir.Like{X: actual.X, Pattern: actual.Pattern, Escape: actual.Escape, Not: !actual.Not}
	case *ir.InList:
		return &ir.InList{X: actual.X, Values: actual.Values, Not: !actual.Not}
	case *ir.InSubQuery:
		return &ir.InSubQuery{X: actual.X, Query: actual.Query, Not: !actual.Not}
	case *ir.ExprPredicate:
		if value, ok := actual.Expr.(*ir.Value); ok {
			if flag, ok := value.Value.(bool); ok {
				return &ir.ExprPredicate{Expr: &ir.Value{Value: !flag, Type: boolType}}
			}
		}
	case *ir.SearchCondition:
		if len(actual.Conditions) == 1 && actual.Conditions[0].Not {
			return actual.Conditions[0].Predicate
		}
	}
	return ir.NewSearchCondition(&ir.Condition{Not: true, Predicate: predicate})
}

//exists translates Any/All, All is rendered as NOT EXISTS of rows violating the predicate
func (b *builder) exists(sc *scope, call *expr.Call, all bool) (ir.Predicate, error) {
	nested := sc.nest(sc.current())
	source, err := b.parseSequence(nested, call.Args[0])
	if err != nil {
		return nil, err
	}
	if lambda := call.Lambda(1); lambda != nil {
		body := lambda.Body
		if all {
			body = expr.Not(body)
		}
		if source, err = b.where(nested, source, &expr.Lambda{Params: lambda.Params, Body: body}); err != nil {
			return nil, err
		}
	} else if all {
		return nil, unsupported("All", call)
	}
	query := source.Query()
	if query.ParentSQL == nil {
		query.ParentSQL = sc.current()
	}
	return &ir.Exists{Not: all, Query: query}, nil
}

//in translates Contains, host collections become IN lists, server sequences IN sub queries
func (b *builder) in(sc *scope, call *expr.Call) (ir.Predicate, error) {
	if len(call.Args) != 2 {
		return nil, unsupported("Contains", call)
	}
	seq, item := call.Args[0], call.Args[1]
	itemType := item.Type()
	switch classify(seq) {
	case classConstant:
		values, err := expr.Eval(seq, nil)
		if err != nil {
			return nil, newError(ErrUnsupportedExpressionShape, "Contains", seq, "%v", err)
		}
		items := reflect.ValueOf(values)
		if !items.IsValid() || items.Len() == 0 {
			return &ir.ExprPredicate{Expr: &ir.Value{Value: false, Type: boolType}}, nil
		}
		x, err := b.translate(sc, item)
		if err != nil {
			return nil, err
		}
		list := make([]ir.Expr, items.Len())
		for i := range list {
			if list[i], err = b.value(items.Index(i).Interface(), itemType); err != nil {
				return nil, err
			}
		}
		return &ir.InList{X: x, Values: list}, nil
	case classHost:
		if _, ok := seq.(*expr.NewArray); !ok {
			x, err := b.translate(sc, item)
			if err != nil {
				return nil, err
			}
			return &ir.InList{X: x, Values: []ir.Expr{b.parameter(seq, "", nil)}}, nil
		}
	}
	if array, ok := seq.(*expr.NewArray); ok {
		if len(array.Items) == 0 {
			return &ir.ExprPredicate{Expr: &ir.Value{Value: false, Type: boolType}}, nil
		}
		x, err := b.translate(sc, item)
		if err != nil {
			return nil, err
		}
		list := make([]ir.Expr, len(array.Items))
		for i, element := range array.Items {
			if list[i], err = b.translate(sc, element); err != nil {
				return nil, err
			}
		}
		return &ir.InList{X: x, Values: list}, nil
	}
	source, err := b.parseSequence(sc.nest(sc.current()), seq)
	if err != nil {
		return nil, err
	}
	exprs, err := b.sourceExpressions(source)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, newError(ErrUnsupportedExpressionShape, "Contains", seq, "expected single column sequence, but had %v", len(exprs))
	}
	query := source.Query()
	query.Select.Add(selectable(exprs[0]), "")
	if query.ParentSQL == nil {
		query.ParentSQL = sc.current()
	}
	x, err := b.translate(sc, item)
	if err != nil {
		return nil, err
	}
	return &ir.InSubQuery{X: x, Query: query}, nil
}

func (b *builder) typeIs(sc *scope, node *expr.TypeIs) (ir.Predicate, error) {
	field, ok, err := b.tryField(sc, node.X)
	if err != nil {
		return nil, err
	}
	table, isTable := field.(*Table)
	if !ok || !isTable {
		return nil, unsupported("TypeIs", node)
	}
	return b.typePredicate(table, node.Target), nil
}

//typePredicate returns discriminator test for type t
func (b *builder) typePredicate(table *Table, t reflect.Type) ir.Predicate {
	t = expr.StructType(t)
	entity := table.entity
	var matching, others []*mapping.Inheritance
	for _, candidate := range entity.Inheritance {
		switch {
		case candidate.Type == t && !candidate.IsDefault:
			matching = append(matching, candidate)
		case candidate.Type != t && !candidate.IsDefault:
			others = append(others, candidate)
		}
	}
	if entity.Discriminator == nil || (t == expr.StructType(entity.Type) && entity.InheritanceFor(t) == nil) {
		return &ir.ExprPredicate{Expr: &ir.Value{Value: true, Type: boolType}}
	}
	discriminator := table.byMember[entity.Discriminator.Member].field
	switch len(matching) {
	case 0:
		ret := ir.NewSearchCondition()
		for _, other := range others {
			ret.And(codeTest(discriminator, other.Code, false))
		}
		if ret.IsEmpty() {
			return &ir.ExprPredicate{Expr: &ir.Value{Value: true, Type: boolType}}
		}
		return ret
	case 1:
		return codeTest(discriminator, matching[0].Code, true)
	}
	ret := ir.NewSearchCondition()
	for i, candidate := range matching {
		ret.Add(&ir.Condition{Predicate: codeTest(discriminator, candidate.Code, true), Or: i < len(matching)-1})
	}
	return ret
}

func codeTest(discriminator ir.Expr, code interface{}, equal bool) ir.Predicate {
	if code == nil {
		return &ir.IsNull{X: discriminator, Not: !equal}
	}
	op := ir.OpEqual
	if !equal {
		op = ir.OpNotEqual
	}
	return &ir.Compare{X: discriminator, Op: op, Y: ir.NewValue(code)}
}
