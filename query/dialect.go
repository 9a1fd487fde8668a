package query

import (
	"reflect"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
)

//Dialect represents dialect capabilities consumed by the compiler
type Dialect interface {
	IsSkipSupported() bool
	IsTakeSupported() bool
	IsTakeParameterSupported() bool
	IsSubQueryTakeSupported() bool
	IsCountSubQuerySupported() bool
	IsSubQueryColumnSupported() bool
	//ConvertMember returns member substitution or nil
	ConvertMember(owner, method string, operands []expr.Node, t reflect.Type) (expr.Node, error)
	ConvertExpression(e ir.Expr) ir.Expr
	ConvertPredicate(p ir.Predicate) ir.Predicate
}

//DefaultDialect represents fully capable dialect used when none was supplied
var DefaultDialect = &info.Dialect{
	Product:              database.Product{Name: "ansi"},
	CanSkip:              true,
	CanTake:              true,
	TakeAcceptsParameter: true,
	CanSubQueryTake:      true,
	CanCountSubQuery:     true,
	CanSubQueryColumn:    true,
	Members:              info.AnsiMembers,
}
