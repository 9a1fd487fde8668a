package query

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
	"github.com/viant/xunsafe"
)

//buildSource compiles source materializer, conv maps source query indexes into result row indexes
func (b *builder) buildSource(source Source, conv IndexConverter) (Materializer, error) {
	type result struct {
		fn  Materializer
		err error
	}
	ret := matchSource(source, sourceCases[result]{
		table: func(s *Table) result {
			fn, err := b.buildTable(s, conv)
			return result{fn, err}
		},
		expr: func(s *Expr) result {
			fn, err := b.buildExpr(s, conv)
			return result{fn, err}
		},
		scalar: func(s *Scalar) result {
			fn, err := b.buildField(s.field, conv)
			return result{fn, err}
		},
		subQuery: func(s *SubQuery) result {
			fn, err := b.buildSource(s.source, s.converter(conv))
			return result{fn, err}
		},
		groupBy: func(s *GroupBy) result {
			fn, err := b.buildGrouping(s, conv)
			return result{fn, err}
		},
		groupJoin: func(s *GroupJoin) result {
			fn, err := b.buildGroupJoin(s, conv)
			return result{fn, err}
		},
	})
	return ret.fn, ret.err
}

//buildField compiles field materializer
func (b *builder) buildField(field Field, conv IndexConverter) (Materializer, error) {
	type result struct {
		fn  Materializer
		err error
	}
	ret := matchField(field, fieldCases[result]{
		column: func(f *Column) result {
			index, err := b.index(f)
			if err != nil {
				return result{err: err}
			}
			fn, err := b.reader(conv(FieldIndex{Field: f, Index: index}).Index, f.column.Type)
			return result{fn, err}
		},
		exprColumn: func(f *ExprColumn) result {
			if classify(f.node) != classServer || hasHostResidue(f.node) || !expr.IsScalar(f.node.Type()) {
				fn, err := b.buildNode(f.scope, f.node, conv)
				return result{fn, err}
			}
			index, err := b.index(f)
			if err != nil {
				return result{err: err}
			}
			fn, err := b.reader(conv(FieldIndex{Field: f, Index: index}).Index, f.node.Type())
			return result{fn, err}
		},
		subQueryColumn: func(f *SubQueryColumn) result {
			fn, err := b.buildField(f.inner, f.sub.converter(conv))
			return result{fn, err}
		},
		groupByColumn: func(f *GroupByColumn) result {
			fn, err := b.buildField(f.inner, conv)
			return result{fn, err}
		},
		source: func(s Source) result {
			fn, err := b.buildSource(s, conv)
			return result{fn, err}
		},
	})
	return ret.fn, ret.err
}

//reader returns converting reader of the row value at index
func (b *builder) reader(index int, t reflect.Type) (Materializer, error) {
	if t == nil {
		return nil, newError(ErrUnconvertibleType, "read", nil, "type was nil")
	}
	converter, ok := b.schema.Converter(t)
	if !ok {
		return nil, newError(ErrUnconvertibleType, "read", nil, "no converter for %v", t)
	}
	return func(row Row, env *Env) (interface{}, error) {
		value, err := converter(row.Value(index))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read column %v", index)
		}
		return value, nil
	}, nil
}

//buildNode compiles projection expression, host only parts are evaluated per row over read server values
func (b *builder) buildNode(sc *scope, node expr.Node, conv IndexConverter) (Materializer, error) {
	switch classify(node) {
	case classConstant:
		value, err := expr.Eval(node, nil)
		if err != nil {
			return nil, newError(ErrUnsupportedExpressionShape, "constant", node, "%v", err)
		}
		value = expr.ValueOf(value, node.Type())
		return func(row Row, env *Env) (interface{}, error) { return value, nil }, nil
	case classHost:
		return func(row Row, env *Env) (interface{}, error) { return expr.Eval(node, env.Params) }, nil
	}
	switch actual := node.(type) {
	case *expr.Parameter, *expr.Member:
		field, ok, err := b.tryField(sc, node)
		if err != nil {
			return nil, err
		}
		if ok {
			return b.buildField(field, conv)
		}
	case *expr.New:
		return b.buildConstruction(sc, actual.RType, actual.Members, actual.Args, conv)
	case *expr.MemberInit:
		return b.buildConstruction(sc, actual.RType, actual.Members, actual.Args, conv)
	}
	if !hasHostResidue(node) && expr.IsScalar(node.Type()) {
		e, err := b.translate(sc, node)
		if err != nil {
			return nil, err
		}
		index := sc.current().Select.Add(selectable(e), "")
		return b.reader(conv(FieldIndex{Index: index}).Index, node.Type())
	}
	switch actual := node.(type) {
	case *expr.Binary:
		x, err := b.buildNode(sc, actual.X, conv)
		if err != nil {
			return nil, err
		}
		y, err := b.buildNode(sc, actual.Y, conv)
		if err != nil {
			return nil, err
		}
		return func(row Row, env *Env) (interface{}, error) {
			xv, err := x(row, env)
			if err != nil {
				return nil, err
			}
			yv, err := y(row, env)
			if err != nil {
				return nil, err
			}
			return expr.ApplyBinary(actual.Op, xv, yv, actual.RType)
		}, nil
	case *expr.Unary:
		x, err := b.buildNode(sc, actual.X, conv)
		if err != nil {
			return nil, err
		}
		return func(row Row, env *Env) (interface{}, error) {
			xv, err := x(row, env)
			if err != nil {
				return nil, err
			}
			return expr.ApplyUnary(actual.Op, xv, actual.RType)
		}, nil
	case *expr.Conditional:
		test, err := b.buildNode(sc, actual.Test, conv)
		if err != nil {
			return nil, err
		}
		then, err := b.buildNode(sc, actual.Then, conv)
		if err != nil {
			return nil, err
		}
		els, err := b.buildNode(sc, actual.Else, conv)
		if err != nil {
			return nil, err
		}
		return func(row Row, env *Env) (interface{}, error) {
			value, err := test(row, env)
			if err != nil {
				return nil, err
			}
			if flag, _ := dereference(value).(bool); flag {
				return then(row, env)
			}
			return els(row, env)
		}, nil
	case *expr.Call:
		if actual.IsSequence() {
			break
		}
		operands := callOperands(actual)
		args := make([]Materializer, len(operands))
		for i, operand := range operands {
			fn, err := b.buildNode(sc, operand, conv)
			if err != nil {
				return nil, err
			}
			args[i] = fn
		}
		return func(row Row, env *Env) (interface{}, error) {
			values := make([]interface{}, len(args))
			for i, arg := range args {
				value, err := arg(row, env)
				if err != nil {
					return nil, err
				}
				values[i] = value
			}
			return expr.ApplyCall(actual, values)
		}, nil
	}
	return nil, unsupported("materialize", node)
}

func (b *builder) buildExpr(source *Expr, conv IndexConverter) (Materializer, error) {
	args := make([]Materializer, len(source.fields))
	for i, field := range source.fields {
		fn, err := b.buildField(field, conv)
		if err != nil {
			return nil, err
		}
		args[i] = fn
	}
	return constructor(source.rType, source.members, args)
}

func (b *builder) buildConstruction(sc *scope, t reflect.Type, members []string, nodes []expr.Node, conv IndexConverter) (Materializer, error) {
	args := make([]Materializer, len(nodes))
	for i, node := range nodes {
		fn, err := b.buildNode(sc, node, conv)
		if err != nil {
			return nil, err
		}
		args[i] = fn
	}
	return constructor(t, members, args)
}

//setter assigns struct member
type setter struct {
	field *xunsafe.Field
	index []int
	name  string
	rType reflect.Type
}

func (s *setter) set(ptr reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}
	value = expr.ValueOf(value, s.rType)
	valueType := reflect.TypeOf(value)
	if valueType == s.rType && s.field != nil {
		s.field.SetValue(xunsafe.AsPointer(ptr.Interface()), value)
		return nil
	}
	if !valueType.AssignableTo(s.rType) {
		return newError(ErrUnconvertibleType, "construct", nil, "unable to assign %v to %v of type %v", valueType, s.name, s.rType)
	}
	ptr.Elem().FieldByIndex(s.index).Set(reflect.ValueOf(value))
	return nil
}

//constructor returns materializer creating struct from member materializers
func constructor(t reflect.Type, members []string, args []Materializer) (Materializer, error) {
	structType := expr.StructType(t)
	if structType == nil {
		return nil, newError(ErrUnsupportedExpressionShape, "construct", nil, "%v is not a struct", t)
	}
	setters := make([]*setter, len(members))
	for i, member := range members {
		field, ok := structType.FieldByName(member)
		if !ok {
			return nil, newError(ErrUnsupportedExpressionShape, "construct", nil, "%v has no member %v", structType, member)
		}
		setters[i] = &setter{index: field.Index, name: member, rType: field.Type}
		if len(field.Index) == 1 {
			setters[i].field = xunsafe.NewField(field)
		}
	}
	isPtr := t.Kind() == reflect.Ptr
	return func(row Row, env *Env) (interface{}, error) {
		ptr := reflect.New(structType)
		for i, arg := range args {
			value, err := arg(row, env)
			if err != nil {
				return nil, err
			}
			if err = setters[i].set(ptr, value); err != nil {
				return nil, err
			}
		}
		if isPtr {
			return ptr.Interface(), nil
		}
		return ptr.Elem().Interface(), nil
	}, nil
}

//buildTable compiles entity materializer, inheritance mapped entities dispatch on the discriminator
func (b *builder) buildTable(table *Table, conv IndexConverter) (Materializer, error) {
	entity := table.entity
	var fn Materializer
	var err error
	if entity.HasInheritance() && expr.StructType(table.objectType) == entity.Type {
		fn, err = b.buildInheritance(table, conv)
	} else {
		fn, err = b.buildObject(table, table.objectType, conv)
	}
	if err != nil || !table.CanBeNull() {
		return fn, err
	}
	index := table.query.Select.Add(&ir.NullCheck{Join: table.join}, "")
	checkIndex := conv(FieldIndex{Index: index}).Index
	nullValue := b.schema.NullValue(table.objectType)
	return func(row Row, env *Env) (interface{}, error) {
		if row.Value(checkIndex) == nil {
			return nullValue, nil
		}
		return fn(row, env)
	}, nil
}

type columnReader struct {
	index   int
	convert mapping.Converter
	column  *mapping.Column
}

//buildObject compiles materializer of type t reading its mapped columns
func (b *builder) buildObject(table *Table, t reflect.Type, conv IndexConverter) (Materializer, error) {
	entity := table.entity
	columns := entity.ColumnsFor(t)
	readers := make([]*columnReader, 0, len(columns))
	for _, column := range columns {
		tableColumn, ok := table.byMember[column.Member]
		if !ok || column.Field == nil {
			continue
		}
		index, err := b.index(tableColumn)
		if err != nil {
			return nil, err
		}
		converter, ok := b.schema.Converter(column.Type)
		if !ok {
			return nil, newError(ErrUnconvertibleType, "read", nil, "no converter for %v.%v of type %v", entity.Table, column.Member, column.Type)
		}
		readers = append(readers, &columnReader{
			index:   conv(FieldIndex{Field: tableColumn, Index: index}).Index,
			convert: converter,
			column:  column,
		})
	}
	isPtr := t.Kind() == reflect.Ptr
	return func(row Row, env *Env) (interface{}, error) {
		ret, ptr := entity.New(t)
		for _, reader := range readers {
			value, err := reader.convert(row.Value(reader.index))
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read %v.%v", entity.Table, reader.column.Member)
			}
			reader.column.Field.Set(ptr, value)
		}
		if isPtr {
			return ret, nil
		}
		return reflect.ValueOf(ret).Elem().Interface(), nil
	}, nil
}

type inheritanceBranch struct {
	code interface{}
	fn   Materializer
}

//buildInheritance compiles discriminator cascade, mappings are tested in declaration order with the default last
func (b *builder) buildInheritance(table *Table, conv IndexConverter) (Materializer, error) {
	entity := table.entity
	var branches []*inheritanceBranch
	var fallback Materializer
	for _, candidate := range entity.Inheritance {
		t := reflect.PtrTo(candidate.Type)
		if table.objectType.Kind() != reflect.Ptr {
			t = candidate.Type
		}
		fn, err := b.buildObject(table, t, conv)
		if err != nil {
			return nil, err
		}
		if candidate.IsDefault {
			fallback = fn
			continue
		}
		branches = append(branches, &inheritanceBranch{code: candidate.Code, fn: fn})
	}
	discriminator, ok := table.byMember[entity.Discriminator.Member]
	if !ok {
		return nil, newError(ErrMissingInheritanceMapping, "read", nil, "discriminator %v was not mapped", entity.Discriminator.Member)
	}
	index, err := b.index(discriminator)
	if err != nil {
		return nil, err
	}
	index = conv(FieldIndex{Field: discriminator, Index: index}).Index
	converter, ok := b.schema.Converter(entity.Discriminator.Type)
	if !ok {
		return nil, newError(ErrUnconvertibleType, "read", nil, "no converter for discriminator %v", entity.Discriminator.Type)
	}
	return func(row Row, env *Env) (interface{}, error) {
		raw := row.Value(index)
		var code interface{}
		if raw != nil {
			var err error
			if code, err = converter(raw); err != nil {
				return nil, err
			}
		}
		for _, branch := range branches {
			if expr.Equal(branch.code, code) {
				return branch.fn(row, env)
			}
		}
		if fallback != nil {
			return fallback(row, env)
		}
		return nil, errors.Wrapf(ErrMissingInheritanceMapping, "%v discriminator: %v", entity.Table, code)
	}, nil
}
