package query

import (
	"reflect"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

//parseSequence resolves sequence expression into a source
func (b *builder) parseSequence(sc *scope, node expr.Node) (Source, error) {
	switch actual := node.(type) {
	case *expr.Table:
		return b.rootTable(sc, actual.Entity)
	case *expr.Member:
		return b.associationSequence(sc, actual)
	case *expr.Parameter:
		return b.parameterSequence(sc, actual)
	case *expr.Call:
		if actual.IsSequence() {
			return b.parseCall(sc, actual)
		}
	}
	return nil, unsupported("sequence", node)
}

func (b *builder) parseCall(sc *scope, call *expr.Call) (Source, error) {
	if len(call.Args) == 0 {
		return nil, unsupported(call.Method, call)
	}
	b.depth++
	defer func() { b.depth-- }()
	b.logger.Debug("operator", "compilation", b.id, "method", call.Method, "depth", b.depth)
	if call.Method == "GroupJoin" {
		outer, err := b.parseSequence(sc, call.Args[0])
		if err != nil {
			return nil, err
		}
		return b.groupJoin(sc, outer, call)
	}
	if call.Method == "Join" {
		outer, err := b.parseSequence(sc, call.Args[0])
		if err != nil {
			return nil, err
		}
		return b.join(sc, outer, call)
	}
	source, err := b.parseSequence(sc, call.Args[0])
	if err != nil {
		return nil, err
	}
	switch call.Method {
	case "Where":
		return b.where(sc, source, call.Lambda(1))
	case "Select":
		return b.selectOp(sc, source, call.Lambda(1))
	case "SelectMany":
		return b.selectMany(sc, source, call)
	case "OrderBy", "ThenBy":
		return b.orderBy(sc, source, call.Lambda(1), call.Method == "ThenBy", false)
	case "OrderByDescending", "ThenByDescending":
		return b.orderBy(sc, source, call.Lambda(1), call.Method == "ThenByDescending", true)
	case "Take":
		return b.take(sc, source, call.Args[1])
	case "Skip":
		return b.skip(sc, source, call.Args[1])
	case "Distinct":
		return b.distinct(source)
	case "GroupBy":
		return b.groupBy(sc, source, call)
	case "Union":
		return b.union(sc, source, call.Args[1], false)
	case "Concat":
		return b.union(sc, source, call.Args[1], true)
	case "Except":
		return b.exceptIntersect(sc, source, call.Args[1], true)
	case "Intersect":
		return b.exceptIntersect(sc, source, call.Args[1], false)
	case "OfType":
		return b.ofType(source, call.RType)
	case "DefaultIfEmpty", "Cast", "AsQueryable":
		return source, nil
	}
	return nil, unsupported(call.Method, call)
}

func (b *builder) selectOp(sc *scope, source Source, selector *expr.Lambda) (Source, error) {
	if selector == nil {
		return nil, unsupported("Select", nil)
	}
	return b.selectSource(sc.bind(selector.Params, source), selector.Body)
}

//where adds predicate to WHERE or HAVING, mixed predicates are applied to a wrapping sub query
func (b *builder) where(sc *scope, source Source, predicate *expr.Lambda) (Source, error) {
	if predicate == nil {
		return nil, unsupported("Where", nil)
	}
	if source.Query().Select.IsPaged() || source.Query().IsDistinct() {
		source = b.wrap(source)
	}
	having, wrap, err := b.classifyWhere(sc.bind(predicate.Params, source), predicate.Body)
	if err != nil {
		return nil, err
	}
	if wrap {
		source = b.wrap(source)
	}
	condition, err := b.predicate(sc.bind(predicate.Params, source), predicate.Body)
	if err != nil {
		return nil, err
	}
	target := source.Query().Where
	if having {
		target = source.Query().Having
	}
	addCondition(target, condition)
	return source, nil
}

//classifyWhere returns (having, wrap) decision for predicate body
func (b *builder) classifyWhere(sc *scope, body expr.Node) (bool, bool, error) {
	isHaving, isWhere, makeSubQuery := false, false, false
	var err error
	expr.Walk(body, func(n expr.Node) bool {
		if err != nil {
			return false
		}
		switch actual := n.(type) {
		case *expr.Call:
			if !actual.IsSequence() {
				return true
			}
			if actual.Method != "Contains" && b.isGroupAggregate(sc, actual) {
				isHaving = true
			} else {
				isWhere = true
			}
			return false
		case *expr.Member:
			isWhere = true
			field, ok, e := b.tryField(sc, actual)
			if e != nil {
				err = e
				return false
			}
			if ok {
				if _, computed := field.(*ExprColumn); computed {
					makeSubQuery = true
				}
				return false
			}
		case *expr.Parameter:
			isWhere = true
			if source, ok := sc.lookup(actual); ok {
				if scalar, ok := source.(*Scalar); ok {
					if _, computed := scalar.field.(*ExprColumn); computed {
						makeSubQuery = true
					}
				}
			}
		}
		return true
	})
	if err != nil {
		return false, false, err
	}
	return isHaving && !isWhere, makeSubQuery || (isHaving && isWhere), nil
}

//isGroupAggregate returns true if sequence call is rooted at a grouping parameter
func (b *builder) isGroupAggregate(sc *scope, call *expr.Call) bool {
	root := expr.Node(call)
	for {
		next, ok := root.(*expr.Call)
		if !ok || !next.IsSequence() || len(next.Args) == 0 {
			break
		}
		root = next.Args[0]
	}
	param, ok := root.(*expr.Parameter)
	if !ok {
		return false
	}
	source, ok := sc.lookup(param)
	if !ok {
		return false
	}
	group, _ := unwrapGroup(source)
	return group != nil
}

//unwrapGroup returns GroupBy wrapped by sub queries, with the sub query chain from outer to inner
func unwrapGroup(source Source) (*GroupBy, []*SubQuery) {
	var chain []*SubQuery
	for {
		switch actual := source.(type) {
		case *GroupBy:
			return actual, chain
		case *SubQuery:
			chain = append(chain, actual)
			source = actual.source
		default:
			return nil, nil
		}
	}
}

//addCondition appends predicate, conjunctions are flattened
func addCondition(target *ir.SearchCondition, predicate ir.Predicate) {
	if condition, ok := predicate.(*ir.SearchCondition); ok && isConjunction(condition) {
		target.Conditions = append(target.Conditions, condition.Conditions...)
		return
	}
	target.And(predicate)
}

func isConjunction(condition *ir.SearchCondition) bool {
	for _, item := range condition.Conditions {
		if item.Or {
			return false
		}
	}
	return len(condition.Conditions) > 0
}

//orderBy adds order items, OrderBy replaces existing items
func (b *builder) orderBy(sc *scope, source Source, key *expr.Lambda, then, descending bool) (Source, error) {
	if key == nil {
		return nil, unsupported("OrderBy", nil)
	}
	if err := explicitConstruction("OrderBy", key.Body); err != nil {
		return nil, err
	}
	if source.Query().Select.IsPaged() {
		source = b.wrap(source)
	}
	order, err := b.selectSource(sc.bind(key.Params, source), key.Body)
	if err != nil {
		return nil, err
	}
	fields, _, err := b.keyFields(order)
	if err != nil {
		return nil, err
	}
	query := source.Query()
	if !then {
		query.ClearOrderBy()
	}
	for _, field := range fields {
		exprs, err := b.expressions(field)
		if err != nil {
			return nil, err
		}
		for _, e := range exprs {
			query.AddOrderBy(selectable(e), descending)
		}
	}
	return source, nil
}

//take sets TAKE, folding active SKIP when the dialect lacks OFFSET
func (b *builder) take(sc *scope, source Source, count expr.Node) (Source, error) {
	query := source.Query()
	value, err := b.translate(sc.bind(nil, source), count)
	if err != nil {
		return nil, err
	}
	query.Select.Take = value
	if query.Select.Skip != nil && b.dialect.IsTakeSupported() && !b.dialect.IsSkipSupported() {
		query.Select.Take = arithmetic(query.Select.Skip, "+", value)
	}
	query.Select.Take = b.inline(query.Select.Take)
	return source, nil
}

//skip sets SKIP, chained skips are summed
func (b *builder) skip(sc *scope, source Source, count expr.Node) (Source, error) {
	query := source.Query()
	value, err := b.translate(sc.bind(nil, source), count)
	if err != nil {
		return nil, err
	}
	if take := query.Select.Take; take != nil && (b.dialect.IsSkipSupported() || !b.dialect.IsTakeSupported()) {
		query.Select.Take = b.inline(arithmetic(take, "-", value))
	}
	if query.Select.Skip != nil {
		value = arithmetic(query.Select.Skip, "+", value)
	}
	query.Select.Skip = value
	return source, nil
}

//inline marks parameters as inlined when dialect does not accept TAKE parameter
func (b *builder) inline(e ir.Expr) ir.Expr {
	if b.dialect.IsTakeParameterSupported() {
		return e
	}
	switch actual := e.(type) {
	case *ir.Parameter:
		ret := *actual
		ret.Inline = true
		return &ret
	case *ir.Binary:
		return ir.NewBinary(b.inline(actual.X), actual.Op, b.inline(actual.Y), actual.Type, actual.Prec)
	}
	return e
}

//arithmetic creates x op y, integer literals are folded
func arithmetic(x ir.Expr, op string, y ir.Expr) ir.Expr {
	if xv, ok := x.(*ir.Value); ok {
		if yv, ok := y.(*ir.Value); ok {
			if value, err := expr.ApplyBinary(expr.Op(op), xv.Value, yv.Value, intType); err == nil {
				return ir.NewValue(value)
			}
		}
	}
	precedence := ir.PrecedenceAdditive
	if op == "-" {
		precedence = ir.PrecedenceSubtraction
	}
	return ir.NewBinary(x, op, y, intType, precedence)
}

func (b *builder) distinct(source Source) (Source, error) {
	if source.Query().Select.IsPaged() {
		source = b.wrap(source)
	}
	source.Query().Select.Distinct = true
	return source, nil
}

//union appends set operation, both sides select all fields in the same order
func (b *builder) union(sc *scope, source Source, other expr.Node, all bool) (Source, error) {
	right, err := b.parseSequence(sc, other)
	if err != nil {
		return nil, err
	}
	sub, ok := source.(*SubQuery)
	if !ok || !sub.sub.HasUnion() || !sub.query.IsSimple() {
		sub = b.wrap(source)
		if _, err = b.selectAll(sub.source); err != nil {
			return nil, err
		}
	}
	count, err := b.selectAll(right)
	if err != nil {
		return nil, err
	}
	if count != len(sub.sub.Select.Columns) {
		return nil, newError(ErrUnsupportedExpressionShape, "Union", other, "union selects %v columns, but expected %v", count, len(sub.sub.Select.Columns))
	}
	sub.sub.AddUnion(right.Query(), all)
	sub.unions = append(sub.unions, right)
	return sub, nil
}

//selectAll selects all source expressions, returns select list size
func (b *builder) selectAll(source Source) (int, error) {
	exprs, err := b.sourceExpressions(source)
	if err != nil {
		return 0, err
	}
	for _, e := range exprs {
		source.Query().Select.Add(selectable(e), "")
	}
	return len(source.Query().Select.Columns), nil
}

//exceptIntersect lowers set difference and intersection to [NOT] EXISTS correlated on key fields
func (b *builder) exceptIntersect(sc *scope, source Source, other expr.Node, except bool) (Source, error) {
	sub := b.wrap(source)
	right, err := b.parseSequence(sc.nest(sub.query), other)
	if err != nil {
		return nil, err
	}
	right.Query().ParentSQL = sub.query
	leftKeys, _, err := b.keyFields(sub)
	if err != nil {
		return nil, err
	}
	rightKeys, _, err := b.keyFields(right)
	if err != nil {
		return nil, err
	}
	if len(leftKeys) == 0 || len(leftKeys) != len(rightKeys) {
		return nil, newError(ErrKeyCardinalityMismatch, "Except/Intersect", other, "left has %v key fields, right has %v", len(leftKeys), len(rightKeys))
	}
	for i := range leftKeys {
		x, err := b.expressions(leftKeys[i])
		if err != nil {
			return nil, err
		}
		y, err := b.expressions(rightKeys[i])
		if err != nil {
			return nil, err
		}
		if len(x) != len(y) {
			return nil, newError(ErrKeyCardinalityMismatch, "Except/Intersect", other, "key field %v arity differs", i)
		}
		for j := range x {
			right.Query().Where.And(&ir.Compare{X: x[j], Op: ir.OpEqual, Y: y[j]})
		}
	}
	sub.query.Where.And(&ir.Exists{Not: except, Query: right.Query()})
	return sub, nil
}

//ofType narrows table source to inheritance subtype
func (b *builder) ofType(source Source, t reflect.Type) (Source, error) {
	elem := expr.ElementType(t)
	table, ok := source.(*Table)
	if !ok || !table.entity.HasInheritance() {
		return source, nil
	}
	predicate := b.typePredicate(table, elem)
	addCondition(table.query.Where, predicate)
	return table.narrow(elem), nil
}

//selectMany flattens collection, association collections are joined into the current query
func (b *builder) selectMany(sc *scope, source Source, call *expr.Call) (Source, error) {
	collection, result := call.Lambda(1), call.Lambda(2)
	if collection == nil {
		return nil, unsupported("SelectMany", call)
	}
	body := collection.Body
	if body == collection.Params[0] {
		if result == nil {
			return source, nil
		}
		return b.selectSource(sc.bind(result.Params, source, source), result.Body)
	}
	joinType := ir.InnerJoin
	if expr.Is(body, "DefaultIfEmpty") {
		body = body.(*expr.Call).Args[0]
		joinType = ir.LeftJoin
	}
	collectionScope := sc.bind(collection.Params, source)
	if joined, ok, err := b.joinCollection(collectionScope, source, body, joinType); err != nil || ok {
		if err != nil {
			return nil, err
		}
		if result == nil {
			return joined, nil
		}
		return b.selectSource(sc.bind(result.Params, source, joined), result.Body)
	}
	query := b.newQuery(sc)
	source1 := b.newSubQuery(query, source, true)
	inner, err := b.parseSequence(sc.bind(collection.Params, source1).nest(query), body)
	if err != nil {
		return nil, err
	}
	source2 := b.newSubQuery(query, inner, true)
	if result == nil {
		return source2, nil
	}
	return b.selectSource(sc.bind(result.Params, source1, source2), result.Body)
}

//joinCollection joins association or group join collection into the current query
func (b *builder) joinCollection(sc *scope, source Source, body expr.Node, joinType ir.JoinType) (Source, bool, error) {
	if source.Query().Select.IsPaged() || source.Query().IsDistinct() {
		return nil, false, nil
	}
	if member, ok := body.(*expr.Member); ok {
		owner, ok, err := b.tryField(sc, member.X)
		if err != nil {
			return nil, false, err
		}
		if table, isTable := owner.(*Table); ok && isTable && table.query == source.Query() {
			if association := table.entity.Association(member.Name); association != nil && association.IsList {
				joined, err := b.joinAssociation(table, association, joinType, false)
				return joined, err == nil, err
			}
		}
	}
	field, ok, err := b.tryField(sc, body)
	if err != nil || !ok {
		return nil, false, err
	}
	group, ok := field.(*GroupJoin)
	if !ok || group.query != source.Query() {
		return nil, false, nil
	}
	group.join.IsWeak = false
	group.join.Type = joinType
	return group.inner, true, nil
}

//associationSequence resolves association collection into a correlated sub query
func (b *builder) associationSequence(sc *scope, member *expr.Member) (Source, error) {
	if !b.schema.IsEntity(member.X.Type()) {
		field, ok, err := b.tryField(sc, member)
		if err != nil {
			return nil, err
		}
		switch actual := field.(type) {
		case *GroupJoin:
			return b.groupJoinSequence(sc, actual)
		case *GroupBy:
			return b.groupSequence(sc, actual)
		}
		if ok {
			if source, isSource := field.(Source); isSource && !expr.IsScalar(source.Type()) {
				return source, nil
			}
		}
		return nil, unsupported("association", member)
	}
	owner, ok, err := b.tryField(sc, member.X)
	if err != nil {
		return nil, err
	}
	ownerSource, isSource := owner.(Source)
	if !ok || !isSource {
		return nil, unsupported("association", member)
	}
	entity, err := b.schema.Entity(member.X.Type())
	if err != nil {
		return nil, err
	}
	association := entity.Association(member.Name)
	if association == nil {
		return nil, newError(ErrUnsupportedExpressionShape, "association", member, "%v is not an association of %v", member.Name, entity.Table)
	}
	table, err := b.rootTable(sc.nest(sc.current()), association.OtherType)
	if err != nil {
		return nil, err
	}
	thisKeys, otherKeys := associationKeys(entity, table.entity, association)
	if len(thisKeys) != len(otherKeys) || len(thisKeys) == 0 {
		return nil, newError(ErrKeyCardinalityMismatch, "association", member, "keys: %v, %v", thisKeys, otherKeys)
	}
	ownerScope := sc.bind(nil, ownerSource)
	for i := range thisKeys {
		this, err := b.translate(ownerScope, expr.Field(member.X, thisKeys[i]))
		if err != nil {
			return nil, err
		}
		other, ok := table.byMember[otherKeys[i]]
		if !ok {
			return nil, newError(ErrUnsupportedExpressionShape, "association", member, "unknown key %v.%v", table.entity.Table, otherKeys[i])
		}
		table.query.Where.And(&ir.Compare{X: other.field, Op: ir.OpEqual, Y: this})
	}
	if association.IsList {
		return table, nil
	}
	table.query.Select.Take = ir.NewValue(1)
	return table, nil
}

//parameterSequence resolves lambda parameter used as a sequence
func (b *builder) parameterSequence(sc *scope, param *expr.Parameter) (Source, error) {
	source, ok := sc.lookup(param)
	if !ok {
		return nil, unsupported("sequence", param)
	}
	if group, _ := unwrapGroup(source); group != nil {
		return b.groupSequence(sc, group)
	}
	if groupJoin, ok := source.(*GroupJoin); ok {
		return b.groupJoinSequence(sc, groupJoin)
	}
	return source, nil
}

//groupSequence re-parses grouped source as a sub query correlated on the group keys
func (b *builder) groupSequence(sc *scope, group *GroupBy) (Source, error) {
	ret, err := b.parseSequence(group.scope.nest(group.query), group.sourceNode)
	if err != nil {
		return nil, err
	}
	ret.Query().ParentSQL = group.query
	key, err := b.selectSource(group.scope.bind(group.keyLambda.Params, ret), group.keyLambda.Body)
	if err != nil {
		return nil, err
	}
	fields, _, err := b.keyFields(key)
	if err != nil {
		return nil, err
	}
	if len(fields) != len(group.query.GroupBy) {
		return nil, newError(ErrKeyCardinalityMismatch, "GroupBy", group.keyLambda, "group has %v keys, but had %v", len(group.query.GroupBy), len(fields))
	}
	for i, field := range fields {
		exprs, err := b.expressions(field)
		if err != nil {
			return nil, err
		}
		if len(exprs) != 1 {
			return nil, newError(ErrGroupingKeyTypeUnsupported, "GroupBy", group.keyLambda, "key field yields %v expressions", len(exprs))
		}
		ret.Query().Where.And(b.keyEquality(exprs[0], group.query.GroupBy[i]))
	}
	if group.element != nil {
		return b.selectSource(group.scope.bind(group.element.Params, ret), group.element.Body)
	}
	return ret, nil
}

//keyEquality compares keys, nullable keys match on both NULL
func (b *builder) keyEquality(x, y ir.Expr) ir.Predicate {
	equal := &ir.Compare{X: x, Op: ir.OpEqual, Y: y}
	if !x.CanBeNull() || !y.CanBeNull() {
		return equal
	}
	bothNull := ir.NewSearchCondition(
		&ir.Condition{Predicate: &ir.IsNull{X: x}},
		&ir.Condition{Predicate: &ir.IsNull{X: y}},
	)
	return ir.NewSearchCondition(&ir.Condition{Predicate: equal, Or: true}, &ir.Condition{Predicate: bothNull})
}

//groupJoinSequence re-parses inner sequence as a sub query correlated on the join keys
func (b *builder) groupJoinSequence(sc *scope, group *GroupJoin) (Source, error) {
	ret, err := b.parseSequence(group.scope.nest(group.query), group.innerNode)
	if err != nil {
		return nil, err
	}
	ret.Query().ParentSQL = group.query
	outerNodes, innerNodes, err := keyPairs("GroupJoin", group.outerKey.Body, group.innerKey.Body)
	if err != nil {
		return nil, err
	}
	keyScope := group.scope.bind([]*expr.Parameter{group.outerKey.Params[0], group.innerKey.Params[0]}, group.outer, ret)
	for i := range outerNodes {
		predicate, err := b.compare(keyScope, expr.OpEqual, outerNodes[i], innerNodes[i])
		if err != nil {
			return nil, err
		}
		ret.Query().Where.And(predicate)
	}
	return ret, nil
}
