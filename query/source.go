package query

import (
	"reflect"

	"github.com/viant/sqlq/ir"
)

//Field represents translation time field, one of *Column, *ExprColumn, *SubQueryColumn, *GroupByColumn or a Source
type Field interface {
	CanBeNull() bool
	isField()
}

//Source represents logical row producing sequence, one of *Table, *Expr, *Scalar, *SubQuery, *GroupBy, *GroupJoin
type Source interface {
	Field
	//Query returns IR query the source contributes columns to
	Query() *ir.Query
	//Type returns sequence element type
	Type() reflect.Type
	isSource()
}

func (s *Table) isField()      {}
func (s *Table) isSource()     {}
func (s *Expr) isField()       {}
func (s *Expr) isSource()      {}
func (s *Scalar) isField()     {}
func (s *Scalar) isSource()    {}
func (s *SubQuery) isField()   {}
func (s *SubQuery) isSource()  {}
func (s *GroupBy) isField()    {}
func (s *GroupBy) isSource()   {}
func (s *GroupJoin) isField()  {}
func (s *GroupJoin) isSource() {}

func (f *Column) isField()         {}
func (f *ExprColumn) isField()     {}
func (f *SubQueryColumn) isField() {}
func (f *GroupByColumn) isField()  {}

//sourceCases represents exhaustive source match
type sourceCases[T any] struct {
	table     func(s *Table) T
	expr      func(s *Expr) T
	scalar    func(s *Scalar) T
	subQuery  func(s *SubQuery) T
	groupBy   func(s *GroupBy) T
	groupJoin func(s *GroupJoin) T
}

func matchSource[T any](source Source, cases sourceCases[T]) T {
	switch actual := source.(type) {
	case *Table:
		return cases.table(actual)
	case *Expr:
		return cases.expr(actual)
	case *Scalar:
		return cases.scalar(actual)
	case *SubQuery:
		return cases.subQuery(actual)
	case *GroupBy:
		return cases.groupBy(actual)
	case *GroupJoin:
		return cases.groupJoin(actual)
	}
	panic("unknown source type")
}

//fieldCases represents exhaustive field match, sources are matched by source case
type fieldCases[T any] struct {
	column         func(f *Column) T
	exprColumn     func(f *ExprColumn) T
	subQueryColumn func(f *SubQueryColumn) T
	groupByColumn  func(f *GroupByColumn) T
	source         func(s Source) T
}

func matchField[T any](field Field, cases fieldCases[T]) T {
	switch actual := field.(type) {
	case *Column:
		return cases.column(actual)
	case *ExprColumn:
		return cases.exprColumn(actual)
	case *SubQueryColumn:
		return cases.subQueryColumn(actual)
	case *GroupByColumn:
		return cases.groupByColumn(actual)
	case Source:
		return cases.source(actual)
	}
	panic("unknown field type")
}

//FieldIndex represents field position in a result row
type FieldIndex struct {
	Field Field
	Index int
}

//IndexConverter maps inner scope index into outer scope index
type IndexConverter func(index FieldIndex) FieldIndex

func identity(index FieldIndex) FieldIndex { return index }

//then composes converters, inner is applied first
func (c IndexConverter) then(outer IndexConverter) IndexConverter {
	return func(index FieldIndex) FieldIndex {
		return outer(c(index))
	}
}
