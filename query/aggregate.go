package query

import (
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

var aggregateFunctions = map[string]string{
	"Sum":     "Sum",
	"Min":     "Min",
	"Max":     "Max",
	"Average": "Avg",
}

func countStar() *ir.Function {
	return ir.NewFunction("Count", intType, &ir.Field{Name: "*"})
}

//aggregate translates aggregate over a sequence, grouping aggregates become grouped query expressions, others scalar sub queries
func (b *builder) aggregate(sc *scope, call *expr.Call) (ir.Expr, error) {
	if len(call.Args) == 0 {
		return nil, unsupported(call.Method, call)
	}
	if call.Args[0].Type() == expr.GroupingType {
		field, ok, err := b.tryField(sc, call.Args[0])
		if err != nil {
			return nil, err
		}
		if source, isSource := field.(Source); ok && isSource {
			if group, chain := unwrapGroup(source); group != nil && isAggregate(call.Method) {
				e, err := b.groupAggregate(sc, group, call)
				if err != nil {
					return nil, err
				}
				return promoteChain(chain, e), nil
			}
			if groupJoin, ok := source.(*GroupJoin); ok && isCount(call.Method) && call.Lambda(1) == nil {
				return groupJoin.count(), nil
			}
		}
	}
	return b.scalarSubQuery(sc, call)
}

func isCount(method string) bool {
	return method == "Count" || method == "LongCount"
}

func isAggregate(method string) bool {
	if isCount(method) {
		return true
	}
	_, ok := aggregateFunctions[method]
	return ok
}

//promoteChain exposes grouped expression through wrapping sub queries, chain goes from outer to inner
func promoteChain(chain []*SubQuery, e ir.Expr) ir.Expr {
	for i := len(chain) - 1; i >= 0; i-- {
		index := chain[i].sub.Select.Add(e, "")
		e = chain[i].sub.Column(index)
	}
	return e
}

func (b *builder) groupAggregate(sc *scope, group *GroupBy, call *expr.Call) (ir.Expr, error) {
	lambda := call.Lambda(1)
	if isCount(call.Method) {
		if lambda != nil {
			return b.filteredCount(sc, group, call)
		}
		return countStar(), nil
	}
	elements, err := b.elementSource(group)
	if err != nil {
		return nil, err
	}
	var arg ir.Expr
	if lambda != nil {
		if arg, err = b.translate(sc.bind(lambda.Params, elements), lambda.Body); err != nil {
			return nil, err
		}
	} else {
		exprs, err := b.sourceExpressions(elements)
		if err != nil {
			return nil, err
		}
		if len(exprs) != 1 {
			return nil, newError(ErrUnsupportedExpressionShape, call.Method, call, "expected scalar elements, but had %v columns", len(exprs))
		}
		arg = exprs[0]
	}
	return ir.NewFunction(aggregateFunctions[call.Method], call.RType, group.promote(arg)), nil
}

//filteredCount translates group.Count(predicate), dialects without count sub queries use a grouped sibling LEFT JOIN
func (b *builder) filteredCount(sc *scope, group *GroupBy, call *expr.Call) (ir.Expr, error) {
	if b.dialect.IsSubQueryColumnSupported() && b.dialect.IsCountSubQuerySupported() {
		return b.scalarSubQuery(sc, call)
	}
	source, err := b.parseSequence(group.scope, group.sourceNode)
	if err != nil {
		return nil, err
	}
	if source.Query().Select.IsPaged() || source.Query().IsDistinct() || len(source.Query().GroupBy) > 0 {
		source = b.wrap(source)
	}
	key, err := b.selectSource(group.scope.bind(group.keyLambda.Params, source), group.keyLambda.Body)
	if err != nil {
		return nil, err
	}
	fields, _, err := b.keyFields(key)
	if err != nil {
		return nil, err
	}
	if len(fields) != len(group.query.GroupBy) {
		return nil, newError(ErrKeyCardinalityMismatch, call.Method, call, "expected %v key fields, but had %v", len(group.query.GroupBy), len(fields))
	}
	var keys []ir.Expr
	for _, field := range fields {
		exprs, err := b.expressions(field)
		if err != nil {
			return nil, err
		}
		if len(exprs) != 1 {
			return nil, newError(ErrGroupingKeyTypeUnsupported, call.Method, call, "key field yields %v expressions", len(exprs))
		}
		keys = append(keys, exprs[0])
	}
	elements := source
	if group.element != nil {
		if elements, err = b.selectSource(group.scope.bind(group.element.Params, source), group.element.Body); err != nil {
			return nil, err
		}
	}
	lambda := call.Lambda(1)
	condition, err := b.predicate(sc.bind(lambda.Params, elements), lambda.Body)
	if err != nil {
		return nil, err
	}
	query := source.Query()
	addCondition(query.Where, condition)
	query.Select.AddNew(countStar(), "cnt")
	query.GroupBy = keys
	if len(group.query.From.Tables) == 0 {
		return nil, unsupported(call.Method, call)
	}
	join := group.query.From.Tables[0].Join(ir.LeftJoin, query, queryAlias(query), true)
	for i, key := range keys {
		index := query.Select.Add(key, "")
		join.Condition.And(b.keyEquality(query.Column(index), group.query.GroupBy[i]))
	}
	max := ir.NewFunction("Max", intType, query.Column(0))
	return ir.NewFunction("Coalesce", intType, max, ir.NewValue(0)), nil
}

//scalarSubQuery translates aggregate or element operator into correlated single value sub query
func (b *builder) scalarSubQuery(sc *scope, call *expr.Call) (ir.Expr, error) {
	nested := sc.nest(sc.current())
	source, err := b.parseSequence(nested, call.Args[0])
	if err != nil {
		return nil, err
	}
	lambda := call.Lambda(1)
	var column ir.Expr
	switch call.Method {
	case "Count", "LongCount":
		if lambda != nil {
			if source, err = b.where(nested, source, lambda); err != nil {
				return nil, err
			}
		}
		if isSliced(source) || hasColumns(source) {
			source = b.wrap(source)
		}
		column = countStar()
	case "Sum", "Min", "Max", "Average":
		if isSliced(source) || hasColumns(source) {
			source = b.wrap(source)
		}
		var arg ir.Expr
		if lambda != nil {
			if arg, err = b.translate(nested.bind(lambda.Params, source), lambda.Body); err != nil {
				return nil, err
			}
		} else {
			exprs, err := b.sourceExpressions(source)
			if err != nil {
				return nil, err
			}
			if len(exprs) != 1 {
				return nil, newError(ErrUnsupportedExpressionShape, call.Method, call, "expected scalar elements, but had %v columns", len(exprs))
			}
			arg = exprs[0]
		}
		column = ir.NewFunction(aggregateFunctions[call.Method], call.RType, arg)
	case "First", "FirstOrDefault", "Single", "SingleOrDefault":
		if lambda != nil {
			if source, err = b.where(nested, source, lambda); err != nil {
				return nil, err
			}
		}
		if hasColumns(source) {
			source = b.wrap(source)
		}
		exprs, err := b.sourceExpressions(source)
		if err != nil {
			return nil, err
		}
		if len(exprs) != 1 {
			return nil, newError(ErrUnsupportedExpressionShape, call.Method, call, "expected scalar element, but had %v columns", len(exprs))
		}
		column = selectable(exprs[0])
		if (call.Method == "First" || call.Method == "FirstOrDefault") && b.dialect.IsSubQueryTakeSupported() {
			source.Query().Select.Take = ir.NewValue(1)
		}
	default:
		return nil, unsupported(call.Method, call)
	}
	query := source.Query()
	query.Select.Add(column, "")
	if query.ParentSQL == nil {
		query.ParentSQL = sc.current()
	}
	return query, nil
}

func hasColumns(source Source) bool {
	return len(source.Query().Select.Columns) > 0
}

func isSliced(source Source) bool {
	query := source.Query()
	return query.Select.IsPaged() || query.IsDistinct() || len(query.GroupBy) > 0
}
