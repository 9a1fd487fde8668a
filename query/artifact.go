package query

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

//ElementKind represents top level result cardinality
type ElementKind int

const (
	//ElementSequence streams all rows
	ElementSequence ElementKind = iota
	//ElementFirst returns the first row, fails if there is none
	ElementFirst
	//ElementFirstOrDefault returns the first row or zero value
	ElementFirstOrDefault
	//ElementSingle returns the only row, fails if there is none or more than one
	ElementSingle
	//ElementSingleOrDefault returns the only row or zero value, fails if there are more
	ElementSingleOrDefault
	//ElementScalar returns single aggregate or test value
	ElementScalar
)

var errDone = errors.New("done")

type (
	//Parameter represents deferred query parameter evaluated from host parameters on each execution
	Parameter struct {
		SQL     *ir.Parameter
		Expr    expr.Node
		convert func(value interface{}) (interface{}, error)
	}

	//QueryInfo pairs IR query with its ordered parameters
	QueryInfo struct {
		Query      *ir.Query
		Parameters []*Parameter
	}

	//Row represents physical result row
	Row interface {
		Value(index int) interface{}
	}

	//Values represents slice backed row
	Values []interface{}

	//Runner executes query and emits its rows
	Runner interface {
		Run(ctx context.Context, info *QueryInfo, args []interface{}, emit func(row Row) error) error
	}

	//Env represents materialization environment
	Env struct {
		Runner Runner
		Params []interface{}
	}

	//Materializer creates object from a row
	Materializer func(row Row, env *Env) (interface{}, error)

	//Artifact represents compiled query
	Artifact struct {
		ID           string
		Shape        uint64
		Queries      []*QueryInfo
		Materializer Materializer
		Element      ElementKind
		Type         reflect.Type
		//Dependencies lists independently compiled element queries of groupings
		Dependencies []*Artifact
		skip         func(params []interface{}) (int, error)
	}
)

//Value returns row value or nil if index is out of range
func (v Values) Value(index int) interface{} {
	if index < 0 || index >= len(v) {
		return nil
	}
	return v[index]
}

//Value evaluates parameter value
func (p *Parameter) Value(params []interface{}) (interface{}, error) {
	value, err := expr.Eval(p.Expr, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to evaluate parameter %v", p.SQL.Name)
	}
	if p.convert != nil {
		return p.convert(value)
	}
	return dereference(value), nil
}

//Values evaluates query parameters
func (q *QueryInfo) Values(params []interface{}) ([]interface{}, error) {
	result := make([]interface{}, len(q.Parameters))
	for i, param := range q.Parameters {
		value, err := param.Value(params)
		if err != nil {
			return nil, err
		}
		result[i] = value
	}
	return result, nil
}

//Query returns main query
func (a *Artifact) Query() *QueryInfo {
	return a.Queries[0]
}

//Parameters evaluates main query parameters
func (a *Artifact) Parameters(params []interface{}) ([]interface{}, error) {
	return a.Query().Values(params)
}

//Skip returns number of rows skipped on the client
func (a *Artifact) Skip(params []interface{}) (int, error) {
	if a.skip == nil {
		return 0, nil
	}
	return a.skip(params)
}

//Read runs main query and emits materialized values
func (a *Artifact) Read(ctx context.Context, runner Runner, params []interface{}, emit func(value interface{}) error) error {
	main := a.Query()
	args, err := main.Values(params)
	if err != nil {
		return err
	}
	skip, err := a.Skip(params)
	if err != nil {
		return err
	}
	env := &Env{Runner: runner, Params: params}
	count, offset := 0, 0
	var single interface{}
	err = runner.Run(ctx, main, args, func(row Row) error {
		if offset < skip {
			offset++
			return nil
		}
		value, err := a.Materializer(row, env)
		if err != nil {
			return err
		}
		count++
		switch a.Element {
		case ElementSequence:
			return emit(value)
		case ElementSingle, ElementSingleOrDefault:
			if count > 1 {
				return errors.Wrapf(ErrMoreThanOneElement, "query %v", a.ID)
			}
			single = value
			return nil
		}
		if err := emit(value); err != nil {
			return err
		}
		return errDone
	})
	if err != nil && !errors.Is(err, errDone) {
		return err
	}
	switch a.Element {
	case ElementSingle, ElementSingleOrDefault:
		if count == 1 {
			return emit(single)
		}
	}
	if count > 0 {
		return nil
	}
	switch a.Element {
	case ElementFirst, ElementSingle:
		return errors.Wrapf(ErrNoElements, "query %v", a.ID)
	case ElementFirstOrDefault, ElementSingleOrDefault, ElementScalar:
		return emit(zeroValue(a.Type))
	}
	return nil
}

func zeroValue(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	return reflect.Zero(t).Interface()
}
