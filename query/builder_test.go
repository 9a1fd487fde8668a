package query

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/assertly"
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/option"
)

type Customer struct {
	ID     int      `sqlx:"name=id,primaryKey=true"`
	Name   string   `sqlx:"name=name"`
	City   *string  `sqlx:"name=city"`
	Orders []*Order `sqlx:"thisKey=ID,otherKey=CustomerID"`
}

type Order struct {
	ID         int       `sqlx:"name=id,primaryKey=true"`
	CustomerID int       `sqlx:"name=customer_id"`
	Amount     float64   `sqlx:"name=amount"`
	Customer   *Customer `sqlx:"thisKey=CustomerID,otherKey=ID"`
}

type customerTotal struct {
	CustomerID int
	Total      float64
	Count      int
}

var (
	customerType = reflect.TypeOf(Customer{})
	orderType    = reflect.TypeOf(Order{})
)

func newSchema() *mapping.Schema {
	return mapping.NewSchema("sqlx").
		Register(customerType, mapping.WithTable("customer")).
		Register(orderType, mapping.WithTable("orders"))
}

//fakeRunner emits predefined rows per query
type fakeRunner struct {
	rows  func(query *ir.Query) []Values
	args  [][]interface{}
	calls int
}

func (r *fakeRunner) Run(ctx context.Context, info *QueryInfo, args []interface{}, emit func(row Row) error) error {
	r.calls++
	r.args = append(r.args, args)
	for _, row := range r.rows(info.Query) {
		if err := emit(row); err != nil {
			return err
		}
	}
	return nil
}

func rowsOf(rows ...Values) func(query *ir.Query) []Values {
	return func(query *ir.Query) []Values { return rows }
}

func readAll(t *testing.T, artifact *Artifact, runner Runner, params []interface{}) ([]interface{}, error) {
	var result []interface{}
	err := artifact.Read(context.Background(), runner, params, func(value interface{}) error {
		result = append(result, value)
		return nil
	})
	return result, err
}

func TestCompiler_Compile(t *testing.T) {
	stringPtr := reflect.TypeOf((*string)(nil))
	var testCases = []struct {
		description string
		dialect     *info.Dialect
		node        expr.Node
		expect      string
	}{
		{
			description: "where constant",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.Eq(expr.Field(c, "Name"), expr.Const("Bob"))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.name = 'Bob'",
		},
		{
			description: "where host parameter",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.Eq(expr.Field(c, "Name"), expr.Param("name", 0, stringType))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.name = @p1",
		},
		{
			description: "null check",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.Eq(expr.Field(c, "City"), expr.Null(stringPtr))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.city IS NULL",
		},
		{
			description: "not null check",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.Ne(expr.Null(stringPtr), expr.Field(c, "City"))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.city IS NOT NULL",
		},
		{
			description: "like with escaped wildcards",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.Contains(expr.Field(c, "Name"), expr.Const("50%_off"))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.name LIKE '%50~%~_off%' ESCAPE '~'",
		},
		{
			description: "starts with",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.StartsWith(expr.Field(c, "Name"), expr.Const("Bo"))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.name LIKE 'Bo%' ESCAPE '~'",
		},
		{
			description: "in constant list",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.In(expr.Const([]int{1, 2, 3}), expr.Field(c, "ID"))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.id IN (1, 2, 3)",
		},
		{
			description: "in host list",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.In(expr.Param("ids", 0, reflect.TypeOf([]int{})), expr.Field(c, "ID"))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE t1.id IN (@p1)",
		},
		{
			description: "empty list is false",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.In(expr.Const([]int{}), expr.Field(c, "ID"))
			}).Node(),
			expect: "SELECT t1.id, t1.name, t1.city FROM customer t1 WHERE 0",
		},
		{
			description: "order, skip and take",
			node: expr.From(customerType).OrderByDescending(func(c expr.Node) expr.Node {
				return expr.Field(c, "Name")
			}).Skip(expr.Const(5)).Take(expr.Const(10)).Node(),
			expect: "SELECT TOP 10 t1.id, t1.name, t1.city FROM customer t1 ORDER BY t1.name DESC OFFSET 5",
		},
		{
			description: "take then skip",
			node: expr.From(customerType).OrderBy(func(c expr.Node) expr.Node {
				return expr.Field(c, "ID")
			}).Take(expr.Const(10)).Skip(expr.Const(4)).Node(),
			expect: "SELECT TOP 6 t1.id, t1.name, t1.city FROM customer t1 ORDER BY t1.id OFFSET 4",
		},
		{
			description: "skip folded into take without offset",
			dialect:     &info.Dialect{CanTake: true, TakeAcceptsParameter: true},
			node:        expr.From(customerType).Skip(expr.Const(2)).Take(expr.Const(3)).Node(),
			expect:      "SELECT TOP 5 t1.id, t1.name, t1.city FROM customer t1",
		},
		{
			description: "to one association join",
			node: expr.From(orderType).Where(func(o expr.Node) expr.Node {
				return expr.Eq(expr.Path(o, "Customer", "Name"), expr.Const("Bob"))
			}).Node(),
			expect: "SELECT t1.id, t1.customer_id, t1.amount FROM orders t1 JOIN customer t2 ON t1.customer_id = t2.id WHERE t2.name = 'Bob'",
		},
		{
			description: "count with predicate",
			node: expr.From(customerType).Count(func(c expr.Node) expr.Node {
				return expr.Eq(expr.Field(c, "City"), expr.Null(stringPtr))
			}),
			expect: "SELECT Count(*) FROM customer t1 WHERE t1.city IS NULL",
		},
		{
			description: "any",
			node: expr.From(customerType).Any(func(c expr.Node) expr.Node {
				return expr.Eq(expr.Field(c, "Name"), expr.Const("x"))
			}),
			expect: "SELECT CASE WHEN EXISTS(SELECT * FROM customer t1 WHERE t1.name = 'x') THEN 1 ELSE 0 END",
		},
		{
			description: "first",
			node: expr.From(customerType).First(func(c expr.Node) expr.Node {
				return expr.Eq(expr.Field(c, "ID"), expr.Const(3))
			}),
			expect: "SELECT TOP 1 t1.id, t1.name, t1.city FROM customer t1 WHERE t1.id = 3",
		},
		{
			description: "single takes two rows",
			node:        expr.From(customerType).Single(),
			expect:      "SELECT TOP 2 t1.id, t1.name, t1.city FROM customer t1",
		},
		{
			description: "select many association",
			node: expr.From(customerType).SelectMany(func(c expr.Node) expr.Node {
				return expr.Field(c, "Orders")
			}, nil).Node(),
			expect: "SELECT t2.id, t2.customer_id, t2.amount FROM customer t1 JOIN orders t2 ON t1.id = t2.customer_id",
		},
		{
			description: "select many default if empty",
			node: expr.From(customerType).SelectMany(func(c expr.Node) expr.Node {
				return expr.SeqOf(expr.Field(c, "Orders")).DefaultIfEmpty().Node()
			}, nil).Node(),
			expect: "SELECT t2.id, t2.customer_id, t2.amount, NULLCHECK(t2) FROM customer t1 LEFT JOIN orders t2 ON t1.id = t2.customer_id",
		},
		{
			description: "group by key",
			node: expr.From(orderType).GroupBy(func(o expr.Node) expr.Node {
				return expr.Field(o, "CustomerID")
			}).Node(),
			expect: "SELECT t1.customer_id FROM orders t1 GROUP BY t1.customer_id",
		},
		{
			description: "group by with aggregates",
			node: expr.From(orderType).GroupBy(func(o expr.Node) expr.Node {
				return expr.Field(o, "CustomerID")
			}).Select(func(g expr.Node) expr.Node {
				return expr.NewOf(reflect.TypeOf(customerTotal{}),
					"CustomerID", expr.Key(g),
					"Total", expr.SeqOf(g).Sum(func(o expr.Node) expr.Node { return expr.Field(o, "Amount") }),
					"Count", expr.SeqOf(g).Count(),
				)
			}).Node(),
			expect: "SELECT t1.customer_id, Sum(t1.amount), Count(*) FROM orders t1 GROUP BY t1.customer_id",
		},
	}

	for _, testCase := range testCases {
		options := []option.Option{newSchema()}
		if testCase.dialect != nil {
			options = append(options, testCase.dialect)
		}
		compiler := New(options...)
		artifact, err := compiler.Compile(testCase.node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, artifact.Query().Query.String(), testCase.description)
	}
}

func TestCompiler_Compile_Error(t *testing.T) {
	var testCases = []struct {
		description string
		node        expr.Node
		expect      error
	}{
		{
			description: "nil node",
		},
		{
			description: "unregistered entity",
			node:        expr.From(reflect.TypeOf(customerTotal{})).Node(),
			expect:      ErrUnsupportedExpressionShape,
		},
		{
			description: "unknown member",
			node: expr.From(customerType).Where(func(c expr.Node) expr.Node {
				return expr.Eq(&expr.Member{X: c, Name: "Unknown", RType: stringType}, expr.Const("x"))
			}).Node(),
			expect: ErrUnsupportedExpressionShape,
		},
		{
			description: "association list used as a value",
			node: expr.From(customerType).Select(func(c expr.Node) expr.Node {
				return expr.Field(c, "Orders")
			}).Node(),
			expect: ErrUnsupportedExpressionShape,
		},
		{
			description: "explicit entity construction in order by",
			node: expr.From(customerType).OrderBy(func(c expr.Node) expr.Node {
				return expr.Init(customerType, "ID", expr.Field(c, "ID"))
			}).Node(),
			expect: ErrExplicitConstructionNotAllowed,
		},
		{
			description: "ordering comparison of entities",
			node: expr.From(orderType).Where(func(o expr.Node) expr.Node {
				return expr.Lt(expr.Field(o, "Customer"), expr.Field(o, "Customer"))
			}).Node(),
			expect: ErrUnsupportedExpressionShape,
		},
	}

	for _, testCase := range testCases {
		compiler := New(newSchema())
		_, err := compiler.Compile(testCase.node)
		if !assert.NotNil(t, err, testCase.description) {
			continue
		}
		if testCase.expect != nil {
			assert.ErrorIs(t, err, testCase.expect, testCase.description)
		}
	}
}

func TestArtifact_Read(t *testing.T) {
	austin := "Austin"
	bob := &Customer{ID: 1, Name: "Bob", City: &austin}
	bobRow := Values{int64(1), []byte("Bob"), "Austin"}
	aliceRow := Values{int64(2), "Alice", "Austin"}
	seq := expr.From(customerType)

	var testCases = []struct {
		description string
		node        expr.Node
		rows        []Values
		expect      []interface{}
		expectErr   error
	}{
		{
			description: "sequence",
			node:        seq.Node(),
			rows:        []Values{bobRow, aliceRow},
			expect:      []interface{}{bob, &Customer{ID: 2, Name: "Alice", City: &austin}},
		},
		{
			description: "first",
			node:        seq.First(),
			rows:        []Values{bobRow, aliceRow},
			expect:      []interface{}{bob},
		},
		{
			description: "first over empty result",
			node:        seq.First(),
			expectErr:   ErrNoElements,
		},
		{
			description: "first or default over empty result",
			node:        seq.FirstOrDefault(),
			expect:      []interface{}{(*Customer)(nil)},
		},
		{
			description: "single",
			node:        seq.Single(),
			rows:        []Values{bobRow},
			expect:      []interface{}{bob},
		},
		{
			description: "single over two rows",
			node:        seq.Single(),
			rows:        []Values{bobRow, aliceRow},
			expectErr:   ErrMoreThanOneElement,
		},
		{
			description: "single or default over empty result",
			node:        seq.SingleOrDefault(),
			expect:      []interface{}{(*Customer)(nil)},
		},
		{
			description: "count",
			node:        seq.Count(),
			rows:        []Values{{int64(3)}},
			expect:      []interface{}{3},
		},
		{
			description: "any",
			node:        seq.Any(),
			rows:        []Values{{true}},
			expect:      []interface{}{true},
		},
		{
			description: "projection",
			node: seq.Select(func(c expr.Node) expr.Node {
				return expr.Field(c, "Name")
			}).Node(),
			rows:   []Values{{"Bob"}, {[]byte("Alice")}},
			expect: []interface{}{"Bob", "Alice"},
		},
	}

	for _, testCase := range testCases {
		artifact, err := New(newSchema()).Compile(testCase.node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		runner := &fakeRunner{rows: rowsOf(testCase.rows...)}
		actual, err := readAll(t, artifact, runner, nil)
		if testCase.expectErr != nil {
			assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
		assert.EqualValues(t, 1, runner.calls, testCase.description)
	}
}

func TestArtifact_Read_ClientSkip(t *testing.T) {
	dialect := &info.Dialect{CanTake: true, TakeAcceptsParameter: true}
	node := expr.From(customerType).Skip(expr.Param("skip", 0, intType)).Node()
	artifact, err := New(newSchema(), dialect).Compile(node)
	if !assert.Nil(t, err) {
		return
	}
	assert.Nil(t, artifact.Query().Query.Select.Skip)
	runner := &fakeRunner{rows: rowsOf(
		Values{int64(1), "a", nil},
		Values{int64(2), "b", nil},
		Values{int64(3), "c", nil},
	)}
	actual, err := readAll(t, artifact, runner, []interface{}{2})
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, []interface{}{&Customer{ID: 3, Name: "c"}}, actual)
	assert.EqualValues(t, [][]interface{}{{2}}, runner.args)
}

func TestArtifact_Read_Grouping(t *testing.T) {
	node := expr.From(orderType).GroupBy(func(o expr.Node) expr.Node {
		return expr.Field(o, "CustomerID")
	}).Select(func(g expr.Node) expr.Node {
		return expr.NewOf(reflect.TypeOf(customerTotal{}),
			"CustomerID", expr.Key(g),
			"Total", expr.SeqOf(g).Sum(func(o expr.Node) expr.Node { return expr.Field(o, "Amount") }),
			"Count", expr.SeqOf(g).Count(),
		)
	}).Node()
	artifact, err := New(newSchema()).Compile(node)
	if !assert.Nil(t, err) {
		return
	}
	runner := &fakeRunner{rows: rowsOf(Values{int64(7), 12.5, int64(2)}, Values{int64(9), float64(3), int64(1)})}
	actual, err := readAll(t, artifact, runner, nil)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, []interface{}{
		customerTotal{CustomerID: 7, Total: 12.5, Count: 2},
		customerTotal{CustomerID: 9, Total: 3, Count: 1},
	}, actual)
	assertly.AssertValues(t, `[{"CustomerID":7,"Total":12.5,"Count":2},{"CustomerID":9,"Total":3,"Count":1}]`, actual)
}

func TestArtifact_Read_GroupElements(t *testing.T) {
	node := expr.From(orderType).GroupBy(func(o expr.Node) expr.Node {
		return expr.Field(o, "CustomerID")
	}).Node()
	artifact, err := New(newSchema()).Compile(node)
	if !assert.Nil(t, err) {
		return
	}
	if !assert.EqualValues(t, 1, len(artifact.Dependencies)) {
		return
	}
	elements := artifact.Dependencies[0].Query().Query
	assert.EqualValues(t, "SELECT t1.id, t1.customer_id, t1.amount FROM orders t1 WHERE t1.customer_id = @p1", elements.String())
	runner := &fakeRunner{rows: func(query *ir.Query) []Values {
		if query == elements {
			return []Values{{int64(10), int64(1), 2.5}}
		}
		return []Values{{int64(1)}}
	}}
	actual, err := readAll(t, artifact, runner, nil)
	if !assert.Nil(t, err) || !assert.EqualValues(t, 1, len(actual)) {
		return
	}
	group, ok := actual[0].(expr.Grouping)
	if !assert.True(t, ok) {
		return
	}
	assert.EqualValues(t, 1, group.Key())
	_, counted := group.Len()
	assert.False(t, counted)
	items, err := group.Load(context.Background())
	assert.Nil(t, err)
	assert.EqualValues(t, []interface{}{&Order{ID: 10, CustomerID: 1, Amount: 2.5}}, items)
	assert.EqualValues(t, []interface{}{1}, runner.args[1])
}

func TestCompiler_Compile_Join(t *testing.T) {
	customers := expr.From(customerType)
	orders := expr.From(orderType)
	var testCases = []struct {
		description string
		node        expr.Node
		joinTypes   []ir.JoinType
	}{
		{
			description: "join",
			node: customers.Join(orders, func(c expr.Node) expr.Node {
				return expr.Field(c, "ID")
			}, func(o expr.Node) expr.Node {
				return expr.Field(o, "CustomerID")
			}, func(c, o expr.Node) expr.Node {
				return expr.Struct("Name", expr.Field(c, "Name"), "Amount", expr.Field(o, "Amount"))
			}).Node(),
			joinTypes: []ir.JoinType{ir.InnerJoin},
		},
		{
			description: "group join",
			node: customers.GroupJoin(orders, func(c expr.Node) expr.Node {
				return expr.Field(c, "ID")
			}, func(o expr.Node) expr.Node {
				return expr.Field(o, "CustomerID")
			}, func(c, g expr.Node) expr.Node {
				return expr.Struct("Name", expr.Field(c, "Name"), "Count", expr.SeqOf(g).Count())
			}).Node(),
			joinTypes: []ir.JoinType{ir.LeftJoin, ir.LeftJoin},
		},
	}

	for _, testCase := range testCases {
		artifact, err := New(newSchema()).Compile(testCase.node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		query := artifact.Query().Query
		if !assert.EqualValues(t, 1, len(query.From.Tables), testCase.description) {
			continue
		}
		var actual []ir.JoinType
		for _, join := range query.From.Tables[0].Joins {
			actual = append(actual, join.Type)
			assert.EqualValues(t, 1, len(join.Condition.Conditions), testCase.description)
		}
		assert.EqualValues(t, testCase.joinTypes, actual, testCase.description)
	}
}

func TestCompiler_Compile_SelectManyCorrelated(t *testing.T) {
	node := expr.From(customerType).Take(expr.Const(1)).SelectMany(func(c expr.Node) expr.Node {
		return expr.Field(c, "Orders")
	}, nil).Node()
	artifact, err := New(newSchema()).Compile(node)
	if !assert.Nil(t, err) {
		return
	}
	query := artifact.Query().Query
	assert.EqualValues(t, 2, len(query.From.Tables))
	for _, table := range query.From.Tables {
		assert.EqualValues(t, 0, len(table.Joins))
	}
}

//anyQuery reports whether query or any of its FROM sub queries matches
func anyQuery(query *ir.Query, match func(query *ir.Query) bool) bool {
	if match(query) {
		return true
	}
	for _, table := range query.From.Tables {
		if sub, ok := table.Source.(*ir.Query); ok && anyQuery(sub, match) {
			return true
		}
	}
	return false
}

func hasExists(not bool) func(query *ir.Query) bool {
	return func(query *ir.Query) bool {
		if query.Where == nil {
			return false
		}
		for _, condition := range query.Where.Conditions {
			if exists, ok := condition.Predicate.(*ir.Exists); ok && exists.Not == not {
				return true
			}
		}
		return false
	}
}

func TestCompiler_Compile_SetOperations(t *testing.T) {
	bobs := func() *expr.Seq {
		return expr.From(customerType).Where(func(c expr.Node) expr.Node {
			return expr.Eq(expr.Field(c, "Name"), expr.Const("Bob"))
		})
	}
	var testCases = []struct {
		description string
		node        expr.Node
		match       func(query *ir.Query) bool
	}{
		{
			description: "distinct",
			node:        expr.From(customerType).Distinct().Node(),
			match:       func(query *ir.Query) bool { return query.IsDistinct() },
		},
		{
			description: "union",
			node:        expr.From(customerType).Union(bobs()).Node(),
			match:       func(query *ir.Query) bool { return query.HasUnion() },
		},
		{
			description: "concat",
			node:        expr.From(customerType).Concat(bobs()).Node(),
			match:       func(query *ir.Query) bool { return query.HasUnion() },
		},
		{
			description: "except",
			node:        expr.From(customerType).Except(bobs()).Node(),
			match:       hasExists(true),
		},
		{
			description: "intersect",
			node:        expr.From(customerType).Intersect(bobs()).Node(),
			match:       hasExists(false),
		},
	}

	for _, testCase := range testCases {
		artifact, err := New(newSchema()).Compile(testCase.node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.True(t, anyQuery(artifact.Query().Query, testCase.match), testCase.description)
	}
}
