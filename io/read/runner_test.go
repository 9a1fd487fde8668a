package read_test

import (
	"context"
	"database/sql"
	"os"
	"reflect"
	"regexp"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/io/read"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
	"github.com/viant/sqlq/metadata/product/sqlite"
	"github.com/viant/sqlq/metadata/registry"
	"github.com/viant/sqlq/query"
)

type Foo struct {
	ID   int    `sqlx:"name=id,primaryKey=true"`
	Name string `sqlx:"name=name"`
}

var paramExpr = regexp.MustCompile(`@(\w+)`)

func render(q *ir.Query) (string, []string, error) {
	var names []string
	SQL := paramExpr.ReplaceAllStringFunc(q.String(), func(match string) string {
		names = append(names, match[1:])
		return "?"
	})
	return SQL, names, nil
}

func TestRunner_Run(t *testing.T) {
	dbLocation := "/tmp/sqlq_read.db"
	_ = os.Remove(dbLocation)
	defer os.Remove(dbLocation)
	db, err := sql.Open("sqlite3", dbLocation)
	if !assert.Nil(t, err) {
		return
	}
	defer db.Close()
	for _, SQL := range []string{
		"CREATE TABLE foo (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO foo(id, name) VALUES(1, 'John'), (2, 'Bruce'), (3, 'Bruce')",
	} {
		_, err = db.Exec(SQL)
		if !assert.Nil(t, err, SQL) {
			return
		}
	}
	dialect := registry.LookupDialect(sqlite.SQLite3())
	if !assert.NotNil(t, dialect) {
		return
	}
	schema := mapping.NewSchema("sqlx").Register(reflect.TypeOf(Foo{}), mapping.WithTable("foo"))
	compiler := query.New(schema, dialect)
	stringType := reflect.TypeOf("")

	var testCases = []struct {
		description string
		node        expr.Node
		params      []interface{}
		expect      interface{}
	}{
		{
			description: "filter by host parameter",
			node: expr.From(reflect.TypeOf(Foo{})).Where(func(x expr.Node) expr.Node {
				return expr.Eq(expr.Field(x, "Name"), expr.Param("name", 0, stringType))
			}).OrderBy(func(x expr.Node) expr.Node {
				return expr.Field(x, "ID")
			}).Node(),
			params: []interface{}{"Bruce"},
			expect: []*Foo{{ID: 2, Name: "Bruce"}, {ID: 3, Name: "Bruce"}},
		},
		{
			description: "no match",
			node: expr.From(reflect.TypeOf(Foo{})).Where(func(x expr.Node) expr.Node {
				return expr.Eq(expr.Field(x, "Name"), expr.Param("name", 0, stringType))
			}).Node(),
			params: []interface{}{"Alice"},
			expect: []*Foo{},
		},
	}

	runner := read.New(db, render, dialect)
	defer runner.Close()
	for _, testCase := range testCases {
		artifact, err := compiler.Compile(testCase.node)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		var actual = []*Foo{}
		err = artifact.Read(context.Background(), runner, testCase.params, func(value interface{}) error {
			actual = append(actual, value.(*Foo))
			return nil
		})
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestRunner_Run_ArgumentCount(t *testing.T) {
	runner := read.New(nil, render, query.DefaultDialect)
	info := &query.QueryInfo{Query: ir.NewQuery(), Parameters: []*query.Parameter{}}
	err := runner.Run(context.Background(), info, []interface{}{1}, func(row query.Row) error { return nil })
	assert.NotNil(t, err)
}
