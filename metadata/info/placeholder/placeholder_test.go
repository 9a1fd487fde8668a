package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Resolver(t *testing.T) {
	var testCases = []struct {
		description string
		generator   Generator
		expect      []string
	}{
		{
			description: "default",
			generator:   &DefaultGenerator{},
			expect:      []string{"?", "?", "?"},
		},
		{
			description: "constant",
			generator:   &Constant{Placeholder: ":v"},
			expect:      []string{":v", ":v", ":v"},
		},
		{
			description: "postgres sequence",
			generator:   &Sequence{Prefix: "$"},
			expect:      []string{"$1", "$2", "$3"},
		},
	}

	for _, testCase := range testCases {
		resolver := testCase.generator.Resolver()
		var actual []string
		for range testCase.expect {
			actual = append(actual, resolver())
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}
