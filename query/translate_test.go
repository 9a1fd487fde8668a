package query

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
	"github.com/viant/sqlq/metadata/info"
)

type Invoice struct {
	ID         int       `sqlx:"name=id,primaryKey=true"`
	CustomerID int       `sqlx:"name=customer_id"`
	Customer   *Customer `sqlx:"thisKey=CustomerID,otherKey=ID,canBeNull=true"`
}

type Status int

const (
	Open Status = iota
	Closed
)

type Ticket struct {
	ID     int    `sqlx:"name=id,primaryKey=true"`
	Status Status `sqlx:"name=status"`
}

type nameCount struct {
	Key   string
	Count int
}

func byAmount() *expr.Seq {
	return expr.From(orderType).GroupBy(func(o expr.Node) expr.Node {
		return expr.Field(o, "Amount")
	})
}

func TestCompiler_Compile_Having(t *testing.T) {
	artifact, err := New(newSchema()).Compile(byAmount().Where(func(g expr.Node) expr.Node {
		return expr.Gt(expr.SeqOf(g).Count(), expr.Const(1))
	}).Node())
	if !assert.Nil(t, err) {
		return
	}
	query := artifact.Query().Query
	assert.EqualValues(t, "SELECT t1.amount FROM orders t1 GROUP BY t1.amount HAVING Count(*) > 1", query.String())
	assert.EqualValues(t, 0, len(query.Where.Conditions))
	assert.EqualValues(t, 1, len(query.Having.Conditions))
}

func TestCompiler_Compile_MixedPredicate(t *testing.T) {
	artifact, err := New(newSchema()).Compile(byAmount().Where(func(g expr.Node) expr.Node {
		return expr.And(
			expr.Gt(expr.SeqOf(g).Count(), expr.Const(1)),
			expr.Gt(expr.Key(g), expr.Const(2.0)),
		)
	}).Node())
	if !assert.Nil(t, err) {
		return
	}
	query := artifact.Query().Query
	assert.EqualValues(t, 2, len(query.Where.Conditions))
	assert.EqualValues(t, 0, len(query.Having.Conditions))
	assert.EqualValues(t, 0, len(query.GroupBy))
	if !assert.EqualValues(t, 1, len(query.From.Tables)) {
		return
	}
	grouped, ok := query.From.Tables[0].Source.(*ir.Query)
	if !assert.True(t, ok) {
		return
	}
	assert.EqualValues(t, 1, len(grouped.GroupBy))
	assert.EqualValues(t, 0, len(grouped.Where.Conditions))
	assert.EqualValues(t, 0, len(grouped.Having.Conditions))
}

func TestCompiler_Compile_ChainedSkip(t *testing.T) {
	dialect := &info.Dialect{CanTake: true, TakeAcceptsParameter: true}
	var testCases = []struct {
		description string
		node        expr.Node
		expect      string
		expectSkip  int
	}{
		{
			description: "skips are summed",
			node:        expr.From(customerType).Skip(expr.Const(5)).Skip(expr.Const(10)).Node(),
			expect:      "SELECT t1.id, t1.name, t1.city FROM customer t1",
			expectSkip:  15,
		},
		{
			description: "summed skip folded into take",
			node:        expr.From(customerType).Skip(expr.Const(5)).Skip(expr.Const(10)).Take(expr.Const(3)).Node(),
			expect:      "SELECT TOP 18 t1.id, t1.name, t1.city FROM customer t1",
			expectSkip:  15,
		},
	}

	for _, testCase := range testCases {
		artifact, err := New(newSchema(), dialect).Compile(testCase.node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, artifact.Query().Query.String(), testCase.description)
		skip, err := artifact.Skip(nil)
		assert.Nil(t, err, testCase.description)
		assert.EqualValues(t, testCase.expectSkip, skip, testCase.description)
	}
}

func TestCompiler_Compile_OptionalAssociationNull(t *testing.T) {
	invoiceType := reflect.TypeOf(Invoice{})
	customerPtr := reflect.TypeOf(&Customer{})
	schema := newSchema().Register(invoiceType, mapping.WithTable("invoice"))
	var testCases = []struct {
		description string
		op          func(x, y expr.Node) *expr.Binary
		suffix      string
	}{
		{description: "equal nil", op: expr.Eq, suffix: "WHERE NULLCHECK(t2) IS NULL"},
		{description: "not equal nil", op: expr.Ne, suffix: "WHERE NULLCHECK(t2) IS NOT NULL"},
	}

	for _, testCase := range testCases {
		node := expr.From(invoiceType).Where(func(i expr.Node) expr.Node {
			return testCase.op(expr.Field(i, "Customer"), expr.Null(customerPtr))
		}).Node()
		artifact, err := New(schema).Compile(node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		query := artifact.Query().Query
		actual := query.String()
		assert.True(t, strings.HasSuffix(actual, testCase.suffix), actual)
		assert.False(t, strings.Contains(actual, "t1.customer_id IS NULL"), actual)
		if assert.EqualValues(t, 1, len(query.From.Tables[0].Joins), testCase.description) {
			assert.EqualValues(t, ir.LeftJoin, query.From.Tables[0].Joins[0].Type, testCase.description)
		}
	}
}

func hasCountJoin(query *ir.Query) bool {
	if len(query.From.Tables) == 0 {
		return false
	}
	coalesced := false
	for _, column := range query.Select.Columns {
		if function, ok := column.Expr.(*ir.Function); ok && function.Name == "Coalesce" {
			coalesced = true
		}
	}
	for _, join := range query.From.Tables[0].Joins {
		if counts, ok := join.Table.Source.(*ir.Query); ok && join.Type == ir.LeftJoin && len(counts.GroupBy) == 1 {
			return coalesced
		}
	}
	return false
}

func TestCompiler_Compile_FilteredGroupCount(t *testing.T) {
	node := expr.From(orderType).GroupBy(func(o expr.Node) expr.Node {
		return expr.Field(o, "CustomerID")
	}).Select(func(g expr.Node) expr.Node {
		return expr.NewOf(reflect.TypeOf(customerTotal{}),
			"CustomerID", expr.Key(g),
			"Count", expr.SeqOf(g).Count(func(o expr.Node) expr.Node {
				return expr.Gt(expr.Field(o, "Amount"), expr.Const(10.0))
			}),
		)
	}).Node()
	var testCases = []struct {
		description string
		dialect     *info.Dialect
		expectJoin  bool
	}{
		{description: "count sub query", dialect: DefaultDialect, expectJoin: false},
		{description: "grouped sibling join", dialect: &info.Dialect{CanTake: true}, expectJoin: true},
	}

	for _, testCase := range testCases {
		artifact, err := New(newSchema(), testCase.dialect).Compile(node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expectJoin, anyQuery(artifact.Query().Query, hasCountJoin), testCase.description)
	}
}

func TestArtifact_Read_GroupCount(t *testing.T) {
	node := expr.From(customerType).GroupBy(func(c expr.Node) expr.Node {
		return expr.Field(c, "Name")
	}).Select(func(g expr.Node) expr.Node {
		return expr.NewOf(reflect.TypeOf(nameCount{}), "Key", expr.Key(g), "Count", expr.SeqOf(g).Count())
	}).Node()
	artifact, err := New(newSchema()).Compile(node)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, "SELECT t1.name, Count(*) FROM customer t1 GROUP BY t1.name", artifact.Query().Query.String())
	runner := &fakeRunner{rows: rowsOf(Values{"Bob", int64(2)}, Values{"Alice", int64(1)})}
	actual, err := readAll(t, artifact, runner, nil)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, []interface{}{nameCount{Key: "Bob", Count: 2}, nameCount{Key: "Alice", Count: 1}}, actual)
}

func TestArtifact_Read_MissingInheritance(t *testing.T) {
	vehicleType := reflect.TypeOf(Vehicle{})
	schema := mapping.NewSchema("sqlx").Register(vehicleType, mapping.WithTable("vehicle"),
		mapping.WithInheritance("car", reflect.TypeOf(Car{}), false),
		mapping.WithInheritance("truck", reflect.TypeOf(Truck{}), false))
	artifact, err := New(schema).Compile(expr.From(vehicleType).Node())
	if !assert.Nil(t, err) {
		return
	}
	runner := &fakeRunner{rows: rowsOf(Values{int64(1), "bus", nil, nil})}
	_, err = readAll(t, artifact, runner, nil)
	assert.ErrorIs(t, err, ErrMissingInheritanceMapping)
}

//innermost returns expression behind sub query columns
func innermost(e ir.Expr) string {
	for {
		column, ok := e.(*ir.Column)
		if !ok {
			return e.String()
		}
		e = column.Expr
	}
}

func TestCompiler_Compile_CompositeJoinKey(t *testing.T) {
	node := expr.From(customerType).Join(expr.From(orderType), func(c expr.Node) expr.Node {
		return expr.Struct("A", expr.Field(c, "ID"), "B", expr.Field(c, "Name"))
	}, func(o expr.Node) expr.Node {
		return expr.Struct("A", expr.Field(o, "CustomerID"), "B", expr.Field(o, "ID"))
	}, func(c, o expr.Node) expr.Node {
		return expr.Struct("Name", expr.Field(c, "Name"), "Amount", expr.Field(o, "Amount"))
	}).Node()
	artifact, err := New(newSchema()).Compile(node)
	if !assert.Nil(t, err) {
		return
	}
	query := artifact.Query().Query
	if !assert.EqualValues(t, 1, len(query.From.Tables)) || !assert.EqualValues(t, 1, len(query.From.Tables[0].Joins)) {
		return
	}
	var actual [][]string
	for _, condition := range query.From.Tables[0].Joins[0].Condition.Conditions {
		compare, ok := condition.Predicate.(*ir.Compare)
		if !assert.True(t, ok) {
			continue
		}
		actual = append(actual, []string{innermost(compare.X), innermost(compare.Y)})
	}
	assert.EqualValues(t, [][]string{{"t1.id", "t2.customer_id"}, {"t1.name", "t2.id"}}, actual)
}

func TestCompiler_Compile_KeyCardinalityMismatch(t *testing.T) {
	pairs := expr.From(orderType).Select(func(o expr.Node) expr.Node {
		return expr.Struct("A", expr.Field(o, "ID"), "B", expr.Field(o, "CustomerID"))
	})
	var testCases = []struct {
		description string
		node        expr.Node
	}{
		{description: "except", node: expr.From(customerType).Except(pairs).Node()},
		{description: "intersect", node: expr.From(customerType).Intersect(pairs).Node()},
		{
			description: "join key arity",
			node: expr.From(customerType).Join(expr.From(orderType), func(c expr.Node) expr.Node {
				return expr.Struct("A", expr.Field(c, "ID"))
			}, func(o expr.Node) expr.Node {
				return expr.Struct("A", expr.Field(o, "CustomerID"), "B", expr.Field(o, "ID"))
			}, func(c, o expr.Node) expr.Node {
				return expr.Field(o, "Amount")
			}).Node(),
		},
	}

	for _, testCase := range testCases {
		_, err := New(newSchema()).Compile(testCase.node)
		assert.ErrorIs(t, err, ErrKeyCardinalityMismatch, testCase.description)
	}
}

func TestCompiler_Compile_Enum(t *testing.T) {
	ticketType, statusType := reflect.TypeOf(Ticket{}), reflect.TypeOf(Status(0))
	schema := mapping.NewSchema("sqlx").Register(ticketType, mapping.WithTable("ticket"))
	schema.RegisterEnum(statusType, map[interface{}]interface{}{Open: "O", Closed: "C"})
	compiler := New(schema)

	artifact, err := compiler.Compile(expr.From(ticketType).Where(func(x expr.Node) expr.Node {
		return expr.Eq(expr.Field(x, "Status"), expr.Const(Closed))
	}).Node())
	if assert.Nil(t, err) {
		assert.EqualValues(t, "SELECT t1.id, t1.status FROM ticket t1 WHERE t1.status = 'C'", artifact.Query().Query.String())
	}

	artifact, err = compiler.Compile(expr.From(ticketType).Where(func(x expr.Node) expr.Node {
		return expr.Eq(expr.Field(x, "Status"), expr.Param("status", 0, statusType))
	}).Node())
	if !assert.Nil(t, err) {
		return
	}
	params, err := artifact.Parameters([]interface{}{Open})
	assert.Nil(t, err)
	assert.EqualValues(t, []interface{}{"O"}, params)
}

func TestBuilder_Index(t *testing.T) {
	b := New(newSchema()).newBuilder()
	table, err := b.rootTable(nil, customerType)
	if !assert.Nil(t, err) {
		return
	}
	name, err := b.member(table, "Name")
	if !assert.Nil(t, err) {
		return
	}
	id, err := b.member(table, "ID")
	if !assert.Nil(t, err) {
		return
	}
	first, err := b.index(name)
	assert.Nil(t, err)
	second, err := b.index(name)
	assert.Nil(t, err)
	assert.EqualValues(t, first, second)
	assert.EqualValues(t, 1, len(table.query.Select.Columns))

	idIndex, err := b.index(id)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, idIndex)
	again, err := b.index(name)
	assert.Nil(t, err)
	assert.EqualValues(t, first, again)
	assert.EqualValues(t, 2, len(table.query.Select.Columns))
}
