package info

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/metadata/info/placeholder"
)

func TestDialect_EnsurePlaceholders(t *testing.T) {
	var testCases = []struct {
		dialect     *Dialect
		description string
		sQL         string
		expect      string
	}{
		{
			description: "original placeholders",
			dialect: &Dialect{
				Placeholder: "?",
			},
			sQL:    "SELECT COUNT(1) FROM foo WHERE Kind=? AND Active=? AND year > ? ",
			expect: "SELECT COUNT(1) FROM foo WHERE Kind=? AND Active=? AND year > ? ",
		},
		{
			description: "postgres placeholders",
			dialect: &Dialect{
				Placeholder:         "$",
				PlaceholderResolver: &placeholder.Sequence{Prefix: "$"},
			},
			sQL:    "SELECT COUNT(1) FROM foo WHERE Kind=? AND Active=? AND year > ?",
			expect: "SELECT COUNT(1) FROM foo WHERE Kind=$1 AND Active=$2 AND year > $3",
		},
		{
			description: "quoted question mark",
			dialect: &Dialect{
				Placeholder: ":v",
			},
			sQL:    "SELECT 1 FROM foo WHERE Name LIKE '?%' AND ID = ?",
			expect: "SELECT 1 FROM foo WHERE Name LIKE '?%' AND ID = :v",
		},
	}

	for _, testCase := range testCases {
		actual := testCase.dialect.EnsurePlaceholders(testCase.sQL)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestDialect_ConvertMember(t *testing.T) {
	stringType := reflect.TypeOf("")
	intType := reflect.TypeOf(0)
	name := expr.Param("name", 0, stringType)
	start := expr.Const(2)
	length := expr.Const(3)
	dialect := &Dialect{Members: MergeMembers(AnsiMembers, map[string]string{"strings.Len": "Len($0)"})}

	var testCases = []struct {
		description string
		owner       string
		method      string
		operands    []expr.Node
		rType       reflect.Type
		expect      expr.Node
	}{
		{
			description: "override",
			owner:       expr.OwnerStrings,
			method:      "Len",
			operands:    []expr.Node{name},
			rType:       intType,
			expect:      expr.SQL("Len", intType, name),
		},
		{
			description: "substring with one based start",
			owner:       expr.OwnerStrings,
			method:      "Substring",
			operands:    []expr.Node{name, start, length},
			rType:       stringType,
			expect: expr.SQL("Substring", stringType, name,
				&expr.Binary{Op: expr.OpAdd, X: start, Y: expr.Const(1), RType: stringType}, length),
		},
		{
			description: "reordered operands",
			owner:       expr.OwnerStrings,
			method:      "IndexOf",
			operands:    []expr.Node{name, expr.Const("x")},
			rType:       intType,
			expect: &expr.Binary{Op: expr.OpSub,
				X:     expr.SQL("CharIndex", intType, expr.Const("x"), name),
				Y:     expr.Const(1),
				RType: intType,
			},
		},
		{
			description: "unknown member",
			owner:       expr.OwnerStrings,
			method:      "Reverse",
			operands:    []expr.Node{name},
			rType:       stringType,
		},
	}

	for _, testCase := range testCases {
		actual, err := dialect.ConvertMember(testCase.owner, testCase.method, testCase.operands, testCase.rType)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		if testCase.expect == nil {
			assert.Nil(t, actual, testCase.description)
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestParseTemplate(t *testing.T) {
	var testCases = []struct {
		description string
		text        string
		hasError    bool
	}{
		{description: "function", text: "Upper($0)"},
		{description: "nested function", text: "Coalesce(Length($0), 0)"},
		{description: "string literal", text: "DatePart('year', $0)"},
		{description: "arithmetic", text: "($0 + 1) * 2"},
		{description: "trailing input", text: "Upper($0) )", hasError: true},
		{description: "missing arguments", text: "Upper", hasError: true},
	}

	for _, testCase := range testCases {
		_, err := ParseTemplate(testCase.text, reflect.TypeOf(""))
		assert.EqualValues(t, testCase.hasError, err != nil, testCase.description)
	}
}

func TestBind(t *testing.T) {
	template, err := ParseTemplate("Upper($1)", reflect.TypeOf(""))
	assert.Nil(t, err)
	_, err = Bind(template, []expr.Node{expr.Const("a")})
	assert.NotNil(t, err)
}
