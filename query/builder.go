package query

import (
	"log/slog"
	"reflect"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
	"github.com/viant/sqlq/metadata/registry"
	"github.com/viant/sqlq/option"
	"github.com/viant/toolbox"
	"github.com/viant/xreflect"
)

var (
	boolType   = xreflect.BoolType
	intType    = xreflect.IntType
	stringType = reflect.TypeOf("")
)

//Compiler compiles sequence expressions into IR queries and row materializers
type Compiler struct {
	dialect Dialect
	schema  *mapping.Schema
	logger  *slog.Logger
	prefix  string
}

//builder represents single compilation state
type builder struct {
	*Compiler
	id           string
	parameters   []*Parameter
	byKey        map[string]*Parameter
	aliases      int
	depth        int
	dependencies []*Artifact
}

//Compile compiles expression, node is either a sequence or a terminal operator call
func (c *Compiler) Compile(node expr.Node) (*Artifact, error) {
	if node == nil {
		return nil, errors.New("node was nil")
	}
	return c.newBuilder().compile(node)
}

//Dialect returns compiler dialect
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

//Schema returns mapping schema
func (c *Compiler) Schema() *mapping.Schema {
	return c.schema
}

func (c *Compiler) newBuilder() *builder {
	return &builder{Compiler: c, id: uuid.New().String(), byKey: map[string]*Parameter{}}
}

func (b *builder) compile(node expr.Node) (*Artifact, error) {
	shape, err := Shape(node)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("compile", "compilation", b.id, "shape", shape)
	var artifact *Artifact
	var query *ir.Query
	if call, ok := node.(*expr.Call); ok && isTerminal(call) {
		artifact, query, err = b.compileTerminal(call)
	} else {
		artifact, query, err = b.compileSequence(node)
	}
	if err != nil {
		b.logger.Debug("compile failed", "compilation", b.id, "error", err)
		return nil, err
	}
	artifact.ID = b.id
	artifact.Shape = shape
	artifact.Queries = []*QueryInfo{{Query: query, Parameters: b.parameters}}
	artifact.Dependencies = b.dependencies
	b.logger.Debug("compiled", "compilation", b.id, "query", query.ID, "parameters", len(b.parameters), "dependencies", len(b.dependencies))
	return artifact, nil
}

func isTerminal(call *expr.Call) bool {
	if !call.IsSequence() {
		return false
	}
	switch call.Method {
	case "First", "FirstOrDefault", "Single", "SingleOrDefault",
		"Count", "LongCount", "Sum", "Min", "Max", "Average",
		"Any", "All", "Contains":
		return true
	}
	return false
}

var elementKinds = map[string]ElementKind{
	"First":           ElementFirst,
	"FirstOrDefault":  ElementFirstOrDefault,
	"Single":          ElementSingle,
	"SingleOrDefault": ElementSingleOrDefault,
}

//compileSequence compiles top level sequence, skip moves to the client when the dialect lacks OFFSET
func (b *builder) compileSequence(node expr.Node) (*Artifact, *ir.Query, error) {
	source, err := b.parseSequence(nil, node)
	if err != nil {
		return nil, nil, err
	}
	artifact := &Artifact{Element: ElementSequence, Type: source.Type()}
	query := source.Query()
	if skip := query.Select.Skip; skip != nil && !b.dialect.IsSkipSupported() {
		query.Select.Skip = nil
		if artifact.skip, err = b.evaluator(skip); err != nil {
			return nil, nil, err
		}
	}
	if artifact.Materializer, err = b.buildSource(source, identity); err != nil {
		return nil, nil, err
	}
	return artifact, query, nil
}

func (b *builder) compileTerminal(call *expr.Call) (*Artifact, *ir.Query, error) {
	if kind, ok := elementKinds[call.Method]; ok {
		return b.compileElement(call, kind)
	}
	switch call.Method {
	case "Any", "All", "Contains":
		return b.compileTest(call)
	}
	return b.compileAggregate(call)
}

//compileElement compiles First and Single operators, Single takes two rows to detect cardinality violation
func (b *builder) compileElement(call *expr.Call, kind ElementKind) (*Artifact, *ir.Query, error) {
	source, err := b.parseSequence(nil, call.Args[0])
	if err != nil {
		return nil, nil, err
	}
	if lambda := call.Lambda(1); lambda != nil {
		if source, err = b.where(nil, source, lambda); err != nil {
			return nil, nil, err
		}
	}
	if source.Query().Select.Take != nil {
		source = b.wrap(source)
	}
	count := 1
	if kind == ElementSingle || kind == ElementSingleOrDefault {
		count = 2
	}
	if b.dialect.IsTakeSupported() {
		if source, err = b.take(nil, source, expr.Const(count)); err != nil {
			return nil, nil, err
		}
	}
	artifact := &Artifact{Element: kind, Type: source.Type()}
	query := source.Query()
	if skip := query.Select.Skip; skip != nil && !b.dialect.IsSkipSupported() {
		query.Select.Skip = nil
		if artifact.skip, err = b.evaluator(skip); err != nil {
			return nil, nil, err
		}
	}
	if artifact.Materializer, err = b.buildSource(source, identity); err != nil {
		return nil, nil, err
	}
	return artifact, query, nil
}

//compileAggregate compiles top level Count, Sum, Min, Max and Average
func (b *builder) compileAggregate(call *expr.Call) (*Artifact, *ir.Query, error) {
	if !isAggregate(call.Method) {
		return nil, nil, unsupported(call.Method, call)
	}
	source, err := b.parseSequence(nil, call.Args[0])
	if err != nil {
		return nil, nil, err
	}
	lambda := call.Lambda(1)
	if isCount(call.Method) && lambda != nil {
		if source, err = b.where(nil, source, lambda); err != nil {
			return nil, nil, err
		}
	}
	if isSliced(source) || hasColumns(source) {
		source = b.wrap(source)
	}
	var column ir.Expr
	if isCount(call.Method) {
		column = countStar()
	} else {
		var arg ir.Expr
		if lambda != nil {
			if arg, err = b.translate((*scope)(nil).bind(lambda.Params, source), lambda.Body); err != nil {
				return nil, nil, err
			}
		} else {
			exprs, err := b.sourceExpressions(source)
			if err != nil {
				return nil, nil, err
			}
			if len(exprs) != 1 {
				return nil, nil, newError(ErrUnsupportedExpressionShape, call.Method, call, "expected scalar elements, but had %v columns", len(exprs))
			}
			arg = exprs[0]
		}
		column = ir.NewFunction(aggregateFunctions[call.Method], call.RType, arg)
	}
	query := source.Query()
	query.ClearOrderBy()
	index := query.Select.Add(column, "")
	reader, err := b.reader(index, call.RType)
	if err != nil {
		return nil, nil, err
	}
	return &Artifact{Element: ElementScalar, Type: call.RType, Materializer: reader}, query, nil
}

//compileTest compiles Any, All and Contains into a single row CASE query
func (b *builder) compileTest(call *expr.Call) (*Artifact, *ir.Query, error) {
	query := ir.NewQuery()
	predicate, err := b.predicate(&scope{query: query}, call)
	if err != nil {
		return nil, nil, err
	}
	index := query.Select.Add(selectable(asExpr(predicate)), "")
	reader, err := b.reader(index, boolType)
	if err != nil {
		return nil, nil, err
	}
	return &Artifact{Element: ElementScalar, Type: boolType, Materializer: reader}, query, nil
}

//evaluator compiles client side evaluation of integer IR expression
func (b *builder) evaluator(e ir.Expr) (func(params []interface{}) (int, error), error) {
	switch actual := e.(type) {
	case *ir.Value:
		value, err := toolbox.ToInt(actual.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid count %v", actual.Value)
		}
		return func(params []interface{}) (int, error) { return value, nil }, nil
	case *ir.Parameter:
		for _, param := range b.parameters {
			if param.SQL != actual {
				continue
			}
			return func(params []interface{}) (int, error) {
				value, err := param.Value(params)
				if err != nil {
					return 0, err
				}
				return toolbox.ToInt(value)
			}, nil
		}
	case *ir.Binary:
		x, err := b.evaluator(actual.X)
		if err != nil {
			return nil, err
		}
		y, err := b.evaluator(actual.Y)
		if err != nil {
			return nil, err
		}
		return func(params []interface{}) (int, error) {
			xv, err := x(params)
			if err != nil {
				return 0, err
			}
			yv, err := y(params)
			if err != nil {
				return 0, err
			}
			value, err := expr.ApplyBinary(expr.Op(actual.Op), xv, yv, intType)
			if err != nil {
				return 0, err
			}
			return toolbox.ToInt(value)
		}, nil
	}
	return nil, newError(ErrUnsupportedExpressionShape, "Skip", nil, "unable to evaluate %v on the client", e)
}

//newQuery creates query, nested scopes correlate it with the current query
func (b *builder) newQuery(sc *scope) *ir.Query {
	query := ir.NewQuery()
	if sc.isNested() {
		query.ParentSQL = sc.current()
	}
	return query
}

func (b *builder) alias(prefix string) string {
	b.aliases++
	return prefix + strconv.Itoa(b.aliases)
}

//New creates compiler, dialect is taken from options, then product registry, then DefaultDialect
func New(options ...option.Option) *Compiler {
	opts := option.Options(options)
	ret := &Compiler{
		schema: opts.Schema(),
		logger: opts.Logger(),
		prefix: opts.ParameterPrefix(),
	}
	if dialect := opts.Dialect(); dialect != nil {
		ret.dialect = dialect
	} else if dialect := registry.LookupDialect(opts.Product()); dialect != nil {
		ret.dialect = dialect
	} else {
		ret.dialect = DefaultDialect
	}
	return ret
}
