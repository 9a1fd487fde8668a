package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sqlq/expr"
)

func TestShape(t *testing.T) {
	byName := func(value expr.Node) expr.Node {
		return expr.From(customerType).Where(func(c expr.Node) expr.Node {
			return expr.Eq(expr.Field(c, "Name"), value)
		}).Node()
	}
	var testCases = []struct {
		description string
		x           expr.Node
		y           expr.Node
		equal       bool
	}{
		{
			description: "same structure built twice",
			x:           byName(expr.Param("name", 0, stringType)),
			y:           byName(expr.Param("name", 0, stringType)),
			equal:       true,
		},
		{
			description: "host parameter name does not contribute",
			x:           byName(expr.Param("name", 0, stringType)),
			y:           byName(expr.Param("other", 0, stringType)),
			equal:       true,
		},
		{
			description: "host parameter position contributes",
			x:           byName(expr.Param("name", 0, stringType)),
			y:           byName(expr.Param("name", 1, stringType)),
		},
		{
			description: "constants contribute",
			x:           byName(expr.Const("Bob")),
			y:           byName(expr.Const("Alice")),
		},
		{
			description: "operators contribute",
			x:           expr.From(customerType).Take(expr.Const(1)).Node(),
			y:           expr.From(customerType).Skip(expr.Const(1)).Node(),
		},
		{
			description: "entity contributes",
			x:           expr.From(customerType).Node(),
			y:           expr.From(orderType).Node(),
		},
	}

	for _, testCase := range testCases {
		x, err := Shape(testCase.x)
		assert.Nil(t, err, testCase.description)
		y, err := Shape(testCase.y)
		assert.Nil(t, err, testCase.description)
		assert.EqualValues(t, testCase.equal, x == y, testCase.description)
	}
}

func TestCompiler_Compile_Shape(t *testing.T) {
	compiler := New(newSchema())
	node := expr.From(customerType).Where(func(c expr.Node) expr.Node {
		return expr.Eq(expr.Field(c, "ID"), expr.Param("id", 0, intType))
	}).Node()
	first, err := compiler.Compile(node)
	assert.Nil(t, err)
	second, err := compiler.Compile(node)
	assert.Nil(t, err)
	assert.EqualValues(t, first.Shape, second.Shape)
	assert.NotEqual(t, first.ID, second.ID)
}
