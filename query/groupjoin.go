package query

import (
	"reflect"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

//GroupJoin represents group join: weak LEFT JOIN to the inner sequence plus a grouped counter sub query
type GroupJoin struct {
	query       *ir.Query
	outer       *SubQuery
	inner       *SubQuery
	join        *ir.Join
	counter     *ir.Query
	counterJoin *ir.Join
	outerKey    *expr.Lambda
	innerKey    *expr.Lambda
	innerNode   expr.Node
	scope       *scope
	groupType   *expr.GroupType
}

func (s *GroupJoin) Query() *ir.Query   { return s.query }
func (s *GroupJoin) Type() reflect.Type { return expr.GroupingType }
func (s *GroupJoin) CanBeNull() bool    { return true }

//count returns number of inner elements matching outer row
func (s *GroupJoin) count() ir.Expr {
	return ir.NewFunction("Coalesce", intType, s.counter.Column(0), ir.NewValue(0))
}

//groupJoin parses GroupJoin(inner, outerKey, innerKey, result)
func (b *builder) groupJoin(sc *scope, outer Source, call *expr.Call) (Source, error) {
	outerKey, innerKey, result := call.Lambda(2), call.Lambda(3), call.Lambda(4)
	if outerKey == nil || innerKey == nil || result == nil {
		return nil, unsupported("GroupJoin", call)
	}
	if err := explicitConstruction("GroupJoin", outerKey.Body); err != nil {
		return nil, err
	}
	if err := explicitConstruction("GroupJoin", innerKey.Body); err != nil {
		return nil, err
	}
	query := b.newQuery(sc)
	source1 := b.newSubQuery(query, outer, true)
	innerSource, err := b.parseSequence(sc, call.Args[1])
	if err != nil {
		return nil, err
	}
	group := &GroupJoin{
		query:     query,
		outer:     source1,
		outerKey:  outerKey,
		innerKey:  innerKey,
		innerNode: call.Args[1],
		scope:     sc,
		groupType: result.Params[1].Group,
	}
	group.inner = b.newSubQuery(query, innerSource, false)
	group.join = source1.tableSource.Join(ir.LeftJoin, innerSource.Query(), queryAlias(innerSource.Query()), true)
	group.inner.tableSource = group.join.Table

	counterSource, err := b.parseSequence(sc, call.Args[1])
	if err != nil {
		return nil, err
	}
	group.counter = counterSource.Query()
	group.counter.Select.AddNew(ir.NewFunction("Count", intType, &ir.Field{Name: "*"}), "cnt")
	counter := b.newSubQuery(query, counterSource, false)
	group.counterJoin = source1.tableSource.Join(ir.LeftJoin, group.counter, queryAlias(group.counter), true)
	counter.tableSource = group.counterJoin.Table

	outerNodes, innerNodes, err := keyPairs("GroupJoin", outerKey.Body, innerKey.Body)
	if err != nil {
		return nil, err
	}
	joinScope := sc.bind([]*expr.Parameter{outerKey.Params[0], innerKey.Params[0]}, source1, group.inner)
	counterScope := sc.bind([]*expr.Parameter{outerKey.Params[0], innerKey.Params[0]}, source1, counter)
	groupScope := sc.bind(innerKey.Params, counterSource)
	for i := range outerNodes {
		predicate, err := b.compare(joinScope, expr.OpEqual, outerNodes[i], innerNodes[i])
		if err != nil {
			return nil, err
		}
		group.join.Condition.And(predicate)
		if predicate, err = b.compare(counterScope, expr.OpEqual, outerNodes[i], innerNodes[i]); err != nil {
			return nil, err
		}
		group.counterJoin.Condition.And(predicate)
		e, err := b.translate(groupScope, innerNodes[i])
		if err != nil {
			return nil, err
		}
		group.counter.GroupBy = append(group.counter.GroupBy, e)
	}
	return b.selectSource(sc.bind(result.Params, source1, group), result.Body)
}

//keyPairs pairs join key components, composite keys are paired by position
func keyPairs(op string, outer, inner expr.Node) ([]expr.Node, []expr.Node, error) {
	outerNew, ok1 := outer.(*expr.New)
	innerNew, ok2 := inner.(*expr.New)
	if !ok1 || !ok2 {
		return []expr.Node{outer}, []expr.Node{inner}, nil
	}
	if len(outerNew.Args) != len(innerNew.Args) {
		return nil, nil, newError(ErrKeyCardinalityMismatch, op, outer, "outer key has %v components, inner key has %v", len(outerNew.Args), len(innerNew.Args))
	}
	return outerNew.Args, innerNew.Args, nil
}

//join parses Join(inner, outerKey, innerKey, result)
func (b *builder) join(sc *scope, outer Source, call *expr.Call) (Source, error) {
	outerKey, innerKey, result := call.Lambda(2), call.Lambda(3), call.Lambda(4)
	if outerKey == nil || innerKey == nil || result == nil {
		return nil, unsupported("Join", call)
	}
	if err := explicitConstruction("Join", outerKey.Body); err != nil {
		return nil, err
	}
	if err := explicitConstruction("Join", innerKey.Body); err != nil {
		return nil, err
	}
	query := b.newQuery(sc)
	source1 := b.newSubQuery(query, outer, true)
	innerSource, err := b.parseSequence(sc, call.Args[1])
	if err != nil {
		return nil, err
	}
	source2 := b.newSubQuery(query, innerSource, false)
	join := source1.tableSource.Join(ir.InnerJoin, innerSource.Query(), queryAlias(innerSource.Query()), false)
	source2.tableSource = join.Table
	outerNodes, innerNodes, err := keyPairs("Join", outerKey.Body, innerKey.Body)
	if err != nil {
		return nil, err
	}
	keyScope := sc.bind([]*expr.Parameter{outerKey.Params[0], innerKey.Params[0]}, source1, source2)
	for i := range outerNodes {
		predicate, err := b.compare(keyScope, expr.OpEqual, outerNodes[i], innerNodes[i])
		if err != nil {
			return nil, err
		}
		join.Condition.And(predicate)
	}
	return b.selectSource(sc.bind(result.Params, source1, source2), result.Body)
}
