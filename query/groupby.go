package query

import (
	"reflect"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

//GroupBy represents grouped source, aggregates are resolved against the original ungrouped source
type GroupBy struct {
	query      *ir.Query
	key        Source
	original   Source
	wrapped    *SubQuery
	keyLambda  *expr.Lambda
	element    *expr.Lambda
	sourceNode expr.Node
	scope      *scope
	groupType  *expr.GroupType
	keyField   Field
	elements   Source
}

func (s *GroupBy) Query() *ir.Query   { return s.query }
func (s *GroupBy) Type() reflect.Type { return expr.GroupingType }
func (s *GroupBy) CanBeNull() bool    { return false }

//groupKey returns grouping key field, scalar keys are exposed as GroupByColumn
func (b *builder) groupKey(group *GroupBy) (Field, error) {
	if group.keyField != nil {
		return group.keyField, nil
	}
	var key Field = group.key
	if expr.IsScalar(group.groupType.Key) {
		fields, err := b.sourceFields(group.key)
		if err != nil {
			return nil, err
		}
		if len(fields) != 1 {
			return nil, newError(ErrGroupingKeyTypeUnsupported, "GroupBy", group.keyLambda, "expected single key field, but had %v", len(fields))
		}
		key = &GroupByColumn{group: group, inner: fields[0]}
	}
	group.keyField = key
	return key, nil
}

//elementSource returns source of grouped elements in the original query
func (b *builder) elementSource(group *GroupBy) (Source, error) {
	if group.elements != nil {
		return group.elements, nil
	}
	group.elements = group.original
	if group.element != nil {
		sc := group.scope.bind(group.element.Params, group.original)
		source, err := b.selectSource(sc, group.element.Body)
		if err != nil {
			return nil, err
		}
		group.elements = source
	}
	return group.elements, nil
}

//promote exposes original query expression to the grouped query
func (group *GroupBy) promote(e ir.Expr) ir.Expr {
	if group.wrapped == nil {
		return e
	}
	index := group.wrapped.sub.Select.Add(e, "")
	return group.wrapped.sub.Column(index)
}

//groupBy parses GroupBy(key[, element])
func (b *builder) groupBy(sc *scope, source Source, call *expr.Call) (Source, error) {
	keyLambda := call.Lambda(1)
	if keyLambda == nil {
		return nil, unsupported("GroupBy", call)
	}
	if err := explicitConstruction("GroupBy", keyLambda.Body); err != nil {
		return nil, err
	}
	if source.Query().Select.IsPaged() || source.Query().IsDistinct() || len(source.Query().GroupBy) > 0 {
		source = b.wrap(source)
	}
	key, err := b.selectSource(sc.bind(keyLambda.Params, source), keyLambda.Body)
	if err != nil {
		return nil, err
	}
	fields, _, err := b.keyFields(key)
	if err != nil {
		return nil, err
	}
	var exprs []ir.Expr
	wrap := false
	for _, field := range fields {
		items, err := b.expressions(field)
		if err != nil {
			return nil, err
		}
		if len(items) != 1 {
			return nil, newError(ErrGroupingKeyTypeUnsupported, "GroupBy", keyLambda.Body, "key field yields %v expressions", len(items))
		}
		switch items[0].(type) {
		case *ir.Field, *ir.Column:
		default:
			wrap = true
		}
		exprs = append(exprs, items[0])
	}
	group := &GroupBy{
		query:      source.Query(),
		key:        key,
		original:   source,
		keyLambda:  keyLambda,
		element:    call.Lambda(2),
		sourceNode: call.Args[0],
		scope:      sc,
		groupType:  groupTypeOf(call),
	}
	if wrap {
		sub := b.wrap(key)
		exprs = exprs[:0]
		for _, field := range fields {
			index, err := b.index(field)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, sub.sub.Column(index))
		}
		group.query = sub.query
		group.key = sub
		group.wrapped = sub
	}
	group.query.GroupBy = exprs
	return group, nil
}

func groupTypeOf(call *expr.Call) *expr.GroupType {
	ret := &expr.GroupType{}
	if key := call.Lambda(1); key != nil {
		ret.Key = key.Body.Type()
		ret.Element = key.Params[0].Type()
	}
	if element := call.Lambda(2); element != nil {
		ret.Element = element.Body.Type()
	}
	return ret
}
