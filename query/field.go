package query

import (
	"reflect"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
)

type (
	//Column represents mapped table column
	Column struct {
		table  *Table
		column *mapping.Column
		field  *ir.Field
	}

	//ExprColumn represents computed projection member, translated on first use
	ExprColumn struct {
		source Source
		scope  *scope
		node   expr.Node
		exprs  []ir.Expr
	}

	//SubQueryColumn represents inner field exposed by a sub query
	SubQueryColumn struct {
		sub   *SubQuery
		inner Field
	}

	//GroupByColumn represents scalar grouping key
	GroupByColumn struct {
		group *GroupBy
		inner Field
	}
)

func (f *Column) CanBeNull() bool {
	return f.field.Nullable || f.table.CanBeNull()
}

//Member returns mapped member name
func (f *Column) Member() string { return f.column.Member }

func (f *ExprColumn) CanBeNull() bool {
	if len(f.exprs) == 1 {
		return f.exprs[0].CanBeNull()
	}
	return expr.IsNullable(f.node.Type())
}

func (f *SubQueryColumn) CanBeNull() bool { return f.inner.CanBeNull() }
func (f *GroupByColumn) CanBeNull() bool  { return f.inner.CanBeNull() }

//queryOf returns query the field expressions belong to
func queryOf(field Field) *ir.Query {
	return matchField(field, fieldCases[*ir.Query]{
		column:         func(f *Column) *ir.Query { return f.table.query },
		exprColumn:     func(f *ExprColumn) *ir.Query { return f.source.Query() },
		subQueryColumn: func(f *SubQueryColumn) *ir.Query { return f.sub.query },
		groupByColumn:  func(f *GroupByColumn) *ir.Query { return f.group.query },
		source:         func(s Source) *ir.Query { return s.Query() },
	})
}

//fieldType returns host type of the field value
func fieldType(field Field) reflect.Type {
	return matchField(field, fieldCases[reflect.Type]{
		column:         func(f *Column) reflect.Type { return f.column.Type },
		exprColumn:     func(f *ExprColumn) reflect.Type { return f.node.Type() },
		subQueryColumn: func(f *SubQueryColumn) reflect.Type { return fieldType(f.inner) },
		groupByColumn:  func(f *GroupByColumn) reflect.Type { return fieldType(f.inner) },
		source:         func(s Source) reflect.Type { return s.Type() },
	})
}

//expressions returns SQL expressions of the field in its own query
func (b *builder) expressions(field Field) ([]ir.Expr, error) {
	type result struct {
		exprs []ir.Expr
		err   error
	}
	ret := matchField(field, fieldCases[result]{
		column: func(f *Column) result {
			return result{exprs: []ir.Expr{f.field}}
		},
		exprColumn: func(f *ExprColumn) result {
			if f.exprs != nil {
				return result{exprs: f.exprs}
			}
			e, err := b.translate(f.scope, f.node)
			if err != nil {
				return result{err: err}
			}
			f.exprs = []ir.Expr{e}
			return result{exprs: f.exprs}
		},
		subQueryColumn: func(f *SubQueryColumn) result {
			indexes, err := b.indexes(f.inner)
			if err != nil {
				return result{err: err}
			}
			exprs := make([]ir.Expr, len(indexes))
			for i, index := range indexes {
				exprs[i] = f.sub.sub.Column(index)
			}
			return result{exprs: exprs}
		},
		groupByColumn: func(f *GroupByColumn) result {
			exprs, err := b.expressions(f.inner)
			return result{exprs: exprs, err: err}
		},
		source: func(s Source) result {
			exprs, err := b.sourceExpressions(s)
			return result{exprs: exprs, err: err}
		},
	})
	return ret.exprs, ret.err
}

func (b *builder) sourceExpressions(source Source) ([]ir.Expr, error) {
	var fields []Field
	switch actual := source.(type) {
	case *Table:
		for _, column := range actual.columns {
			fields = append(fields, column)
		}
	case *Expr:
		fields = actual.fields
	case *Scalar:
		fields = []Field{actual.field}
	case *SubQuery:
		inner, err := b.sourceFields(actual.source)
		if err != nil {
			return nil, err
		}
		for _, field := range inner {
			fields = append(fields, actual.fieldFor(field))
		}
	default:
		return nil, newError(ErrUnsupportedExpressionShape, "expressions", nil, "grouping %T can not be used as a value", source)
	}
	var result []ir.Expr
	for _, field := range fields {
		exprs, err := b.expressions(field)
		if err != nil {
			return nil, err
		}
		result = append(result, exprs...)
	}
	return result, nil
}

func (b *builder) sourceFields(source Source) ([]Field, error) {
	switch actual := source.(type) {
	case *Table:
		result := make([]Field, len(actual.columns))
		for i, column := range actual.columns {
			result[i] = column
		}
		return result, nil
	case *Expr:
		return actual.fields, nil
	case *Scalar:
		return []Field{actual.field}, nil
	case *SubQuery:
		inner, err := b.sourceFields(actual.source)
		if err != nil {
			return nil, err
		}
		result := make([]Field, len(inner))
		for i, field := range inner {
			result[i] = actual.fieldFor(field)
		}
		return result, nil
	}
	return nil, newError(ErrUnsupportedExpressionShape, "fields", nil, "%T has no fields", source)
}

//indexes selects field expressions into the field query, repeated calls return the same indexes
func (b *builder) indexes(field Field) ([]int, error) {
	exprs, err := b.expressions(field)
	if err != nil {
		return nil, err
	}
	query := queryOf(field)
	result := make([]int, len(exprs))
	for i, e := range exprs {
		result[i] = query.Select.Add(selectable(e), "")
	}
	return result, nil
}

//index selects single value field
func (b *builder) index(field Field) (int, error) {
	indexes, err := b.indexes(field)
	if err != nil {
		return 0, err
	}
	if len(indexes) != 1 {
		return 0, newError(ErrUnsupportedExpressionShape, "select", nil, "expected single column, but had %v", len(indexes))
	}
	return indexes[0], nil
}

//selectable converts search condition into CASE
func selectable(e ir.Expr) ir.Expr {
	if condition, ok := e.(*ir.SearchCondition); ok {
		return caseOf(condition)
	}
	return e
}

func caseOf(condition *ir.SearchCondition) ir.Expr {
	if !condition.CanBeNull() {
		return ir.NewFunction("CASE", boolType, condition, ir.NewValue(1), ir.NewValue(0))
	}
	negated := ir.NewSearchCondition(&ir.Condition{Not: true, Predicate: condition})
	return ir.NewFunction("CASE", boolType, condition, ir.NewValue(1), negated, ir.NewValue(0), &ir.Value{})
}

//member resolves member of a source
func (b *builder) member(source Source, name string) (Field, error) {
	type result struct {
		field Field
		err   error
	}
	ret := matchSource(source, sourceCases[result]{
		table: func(s *Table) result {
			if column, ok := s.byMember[name]; ok {
				return result{field: column}
			}
			if association := s.entity.Association(name); association != nil {
				if association.IsList {
					return result{err: newError(ErrUnsupportedExpressionShape, "member", nil, "association list %v.%v can not be used as a value", s.entity.Table, name)}
				}
				table, err := b.associatedTable(s, association)
				return result{field: table, err: err}
			}
			return result{err: newError(ErrUnsupportedExpressionShape, "member", nil, "unknown member %v.%v", s.entity.Table, name)}
		},
		expr: func(s *Expr) result {
			if field, ok := s.byName[name]; ok {
				return result{field: field}
			}
			return result{err: newError(ErrUnsupportedExpressionShape, "member", s.node, "unknown member %v", name)}
		},
		scalar: func(s *Scalar) result {
			if inner, ok := s.field.(Source); ok {
				field, err := b.member(inner, name)
				return result{field: field, err: err}
			}
			return result{err: newError(ErrUnsupportedExpressionShape, "member", s.node, "scalar has no member %v", name)}
		},
		subQuery: func(s *SubQuery) result {
			inner, err := b.member(s.source, name)
			if err != nil {
				return result{err: err}
			}
			return result{field: s.fieldFor(inner)}
		},
		groupBy: func(s *GroupBy) result {
			if name != "Key" {
				return result{err: newError(ErrUnsupportedExpressionShape, "member", nil, "grouping has no member %v", name)}
			}
			field, err := b.groupKey(s)
			return result{field: field, err: err}
		},
		groupJoin: func(s *GroupJoin) result {
			return result{err: newError(ErrUnsupportedExpressionShape, "member", nil, "group join member %v can not be translated", name)}
		},
	})
	return ret.field, ret.err
}

//tryField resolves parameter and member chains to a field, false if node is not a field reference
func (b *builder) tryField(sc *scope, node expr.Node) (Field, bool, error) {
	switch actual := node.(type) {
	case *expr.Parameter:
		source, ok := sc.lookup(actual)
		if !ok {
			return nil, false, nil
		}
		return source, true, nil
	case *expr.Member:
		owner, ok, err := b.tryField(sc, actual.X)
		if err != nil || !ok {
			return nil, false, err
		}
		source, ok := owner.(Source)
		if !ok {
			return nil, false, nil
		}
		field, err := b.member(source, actual.Name)
		if err != nil {
			return nil, false, err
		}
		return field, true, nil
	}
	return nil, false, nil
}

//keyFields returns fields identifying source element, table keys or all fields
func (b *builder) keyFields(source Source) ([]Field, []string, error) {
	switch actual := source.(type) {
	case *Table:
		columns := actual.keyColumns()
		fields := make([]Field, len(columns))
		names := make([]string, len(columns))
		for i, column := range columns {
			fields[i] = column
			names[i] = column.Member()
		}
		return fields, names, nil
	case *Expr:
		return actual.fields, actual.members, nil
	case *Scalar:
		if inner, ok := actual.field.(Source); ok {
			return b.keyFields(inner)
		}
		return []Field{actual.field}, []string{""}, nil
	case *SubQuery:
		inner, names, err := b.keyFields(actual.source)
		if err != nil {
			return nil, nil, err
		}
		fields := make([]Field, len(inner))
		for i, field := range inner {
			fields[i] = actual.fieldFor(field)
		}
		return fields, names, nil
	case *GroupBy:
		key, err := b.groupKey(actual)
		if err != nil {
			return nil, nil, err
		}
		if inner, ok := key.(Source); ok {
			return b.keyFields(inner)
		}
		return []Field{key}, []string{""}, nil
	}
	return nil, nil, newError(ErrUnsupportedExpressionShape, "keys", nil, "%T has no key fields", source)
}

//keyOperands returns key member names with expressions of an entity or composite shaped node
func (b *builder) keyOperands(sc *scope, node expr.Node) ([]string, []ir.Expr, error) {
	var members []string
	var args []expr.Node
	switch actual := node.(type) {
	case *expr.New:
		members, args = actual.Members, actual.Args
	case *expr.MemberInit:
		members, args = actual.Members, actual.Args
	}
	if args != nil {
		exprs := make([]ir.Expr, len(args))
		for i, arg := range args {
			e, err := b.translate(sc, arg)
			if err != nil {
				return nil, nil, err
			}
			exprs[i] = e
		}
		return members, exprs, nil
	}
	field, ok, err := b.tryField(sc, node)
	if err != nil {
		return nil, nil, err
	}
	source, isSource := field.(Source)
	if !ok || !isSource {
		return nil, nil, unsupported("keys", node)
	}
	if table, ok := source.(*Table); ok {
		if names, exprs, ok := table.parentKeys(); ok {
			return names, exprs, nil
		}
	}
	fields, names, err := b.keyFields(source)
	if err != nil {
		return nil, nil, err
	}
	var exprs []ir.Expr
	for _, field := range fields {
		items, err := b.expressions(field)
		if err != nil {
			return nil, nil, err
		}
		if len(items) != 1 {
			return nil, nil, newError(ErrUnsupportedExpressionShape, "keys", node, "nested key shape")
		}
		exprs = append(exprs, items[0])
	}
	return names, exprs, nil
}
