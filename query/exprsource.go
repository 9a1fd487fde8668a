package query

import (
	"reflect"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

//Expr represents struct construction over child sources
type Expr struct {
	query   *ir.Query
	scope   *scope
	node    expr.Node
	members []string
	fields  []Field
	byName  map[string]Field
	rType   reflect.Type
}

func (s *Expr) Query() *ir.Query   { return s.query }
func (s *Expr) Type() reflect.Type { return s.rType }
func (s *Expr) CanBeNull() bool    { return false }

//Scalar represents single value projection
type Scalar struct {
	query *ir.Query
	scope *scope
	node  expr.Node
	field Field
	rType reflect.Type
}

func (s *Scalar) Query() *ir.Query   { return s.query }
func (s *Scalar) Type() reflect.Type { return s.rType }
func (s *Scalar) CanBeNull() bool    { return s.field.CanBeNull() }

//selectSource parses projection body into a source
func (b *builder) selectSource(sc *scope, body expr.Node) (Source, error) {
	switch actual := body.(type) {
	case *expr.Parameter:
		if source, ok := sc.lookup(actual); ok {
			return source, nil
		}
	case *expr.New:
		return b.newExpr(sc, actual, actual.RType, actual.Members, actual.Args)
	case *expr.MemberInit:
		return b.newExpr(sc, actual, actual.RType, actual.Members, actual.Args)
	}
	field, err := b.fieldOf(sc, body, nil)
	if err != nil {
		return nil, err
	}
	if source, ok := field.(Source); ok {
		return source, nil
	}
	ret := &Scalar{query: sc.current(), scope: sc, node: body, field: field, rType: body.Type()}
	if column, ok := field.(*ExprColumn); ok {
		column.source = ret
	}
	return ret, nil
}

func (b *builder) newExpr(sc *scope, node expr.Node, t reflect.Type, members []string, args []expr.Node) (*Expr, error) {
	ret := &Expr{
		query:   sc.current(),
		scope:   sc,
		node:    node,
		members: members,
		byName:  map[string]Field{},
		rType:   t,
	}
	for i, arg := range args {
		field, err := b.fieldOf(sc, arg, ret)
		if err != nil {
			return nil, err
		}
		ret.fields = append(ret.fields, field)
		ret.byName[members[i]] = field
	}
	return ret, nil
}

//fieldOf returns referenced field or a computed column
func (b *builder) fieldOf(sc *scope, node expr.Node, owner Source) (Field, error) {
	switch actual := node.(type) {
	case *expr.New:
		return b.newExpr(sc, actual, actual.RType, actual.Members, actual.Args)
	case *expr.MemberInit:
		return b.newExpr(sc, actual, actual.RType, actual.Members, actual.Args)
	}
	field, ok, err := b.tryField(sc, node)
	if err != nil {
		return nil, err
	}
	if ok {
		return field, nil
	}
	return &ExprColumn{source: owner, scope: sc, node: node}, nil
}
