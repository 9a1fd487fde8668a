package ir

import (
	"reflect"
	"sync/atomic"
)

var queryID int32

//JoinType represents join type
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
)

//Source represents FROM item
type Source interface {
	sourceNode()
}

type (
	//Query represents relational query
	Query struct {
		ID                 int
		Select             *Select
		From               *From
		Where              *SearchCondition
		GroupBy            []Expr
		Having             *SearchCondition
		OrderBy            []*OrderItem
		Unions             []*Union
		ParentSQL          *Query
		ParameterDependent bool
	}

	//Select represents select clause
	Select struct {
		query    *Query
		Columns  []*Column
		Distinct bool
		Take     Expr
		Skip     Expr
	}

	//From represents from clause
	From struct {
		Tables []*TableSource
	}

	//TableSource represents FROM item with its joins
	TableSource struct {
		Source Source
		Alias  string
		Joins  []*Join
	}

	//Join represents joined table, weak join is rendered only when any of its columns is used
	Join struct {
		Type      JoinType
		Table     *TableSource
		Condition *SearchCondition
		IsWeak    bool
	}

	//Table represents physical table
	Table struct {
		Name   string
		Alias  string
		Type   reflect.Type
		Fields []*Field
		all    *Field
	}

	//OrderItem represents order by item
	OrderItem struct {
		Expr       Expr
		Descending bool
	}

	//Union represents set operation
	Union struct {
		Query *Query
		All   bool
	}
)

func (t *Table) sourceNode()         {}
func (q *Query) sourceNode()         {}
func (q *Query) CanBeNull() bool     { return true }
func (q *Query) Precedence() int     { return PrecedencePrimary }
func (q *Query) exprNode()           {}

//NewQuery creates query
func NewQuery() *Query {
	ret := &Query{
		ID:     int(atomic.AddInt32(&queryID, 1)),
		From:   &From{},
		Where:  &SearchCondition{},
		Having: &SearchCondition{},
	}
	ret.Select = &Select{query: ret}
	return ret
}

//NewTable creates table
func NewTable(name string, t reflect.Type) *Table {
	return &Table{Name: name, Type: t}
}

//AddField adds table field
func (t *Table) AddField(field *Field) *Field {
	field.Table = t
	t.Fields = append(t.Fields, field)
	return field
}

//FieldByMember returns field by mapped member
func (t *Table) FieldByMember(name string) *Field {
	for _, field := range t.Fields {
		if field.Member == name {
			return field
		}
	}
	return nil
}

//Query returns owner query
func (s *Select) Query() *Query {
	return s.query
}

//Add adds expression to select list, returns existing column index if expression was already added
func (s *Select) Add(expr Expr, alias string) int {
	if column, ok := expr.(*Column); ok && column.Parent == s.query {
		expr = column.Expr
	}
	for i, column := range s.Columns {
		if Equal(column.Expr, expr) {
			return i
		}
	}
	s.Columns = append(s.Columns, &Column{Parent: s.query, Expr: expr, Alias: alias})
	return len(s.Columns) - 1
}

//AddNew adds expression to select list without checking for duplicates
func (s *Select) AddNew(expr Expr, alias string) int {
	s.Columns = append(s.Columns, &Column{Parent: s.query, Expr: expr, Alias: alias})
	return len(s.Columns) - 1
}

//IsPaged returns true if take or skip was set
func (s *Select) IsPaged() bool {
	return s.Take != nil || s.Skip != nil
}

//Table adds FROM item
func (f *From) Table(source Source, alias string, joins ...*Join) *TableSource {
	ret := &TableSource{Source: source, Alias: alias, Joins: joins}
	f.Tables = append(f.Tables, ret)
	return ret
}

//Find returns table source for supplied source
func (f *From) Find(source Source) *TableSource {
	for _, table := range f.Tables {
		if ret := table.Find(source); ret != nil {
			return ret
		}
	}
	return nil
}

//Find returns table source for supplied source, including joins
func (t *TableSource) Find(source Source) *TableSource {
	if t.Source == source {
		return t
	}
	for _, join := range t.Joins {
		if ret := join.Table.Find(source); ret != nil {
			return ret
		}
	}
	return nil
}

//Join adds join
func (t *TableSource) Join(joinType JoinType, source Source, alias string, weak bool) *Join {
	ret := &Join{
		Type:      joinType,
		Table:     &TableSource{Source: source, Alias: alias},
		Condition: &SearchCondition{},
		IsWeak:    weak,
	}
	t.Joins = append(t.Joins, ret)
	return ret
}

//IsDistinct returns true if select is distinct
func (q *Query) IsDistinct() bool {
	return q.Select.Distinct
}

//IsSimple returns true if query has no where, group by, having and order by
func (q *Query) IsSimple() bool {
	return q.Where.IsEmpty() && len(q.GroupBy) == 0 && q.Having.IsEmpty() && len(q.OrderBy) == 0
}

//HasUnion returns true if query carries set operations
func (q *Query) HasUnion() bool {
	return len(q.Unions) > 0
}

//ClearOrderBy clears order by items
func (q *Query) ClearOrderBy() {
	q.OrderBy = nil
}

//AddOrderBy appends order by item
func (q *Query) AddOrderBy(expr Expr, descending bool) {
	for _, item := range q.OrderBy {
		if Equal(item.Expr, expr) {
			return
		}
	}
	q.OrderBy = append(q.OrderBy, &OrderItem{Expr: expr, Descending: descending})
}

//AddUnion adds set operation
func (q *Query) AddUnion(union *Query, all bool) {
	q.Unions = append(q.Unions, &Union{Query: union, All: all})
}

//Column returns select column with index
func (q *Query) Column(index int) *Column {
	return q.Select.Columns[index]
}
