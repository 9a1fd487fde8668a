package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	var testCases = []struct {
		description string
		banner      string
		expect      *Product
		hasError    bool
	}{
		{
			description: "bare version",
			banner:      "5.6.14-log",
			expect:      &Product{Major: 5, Minor: 6, Release: 14},
		},
		{
			description: "name and version",
			banner:      "PostgreSQL 9.3.10 on x86_64-unknown-linux-gnu, compiled by gcc (Ubuntu 4.8.2-19ubuntu1) 4.8.2, 64-bit",
			expect:      &Product{Name: "PostgreSQL", Major: 9, Minor: 3, Release: 10},
		},
		{
			description: "number inside name",
			banner:      "Oracle Database 11g Express Edition Release 11.2.0.2.0 - 64bit Production",
			expect:      &Product{Name: "Oracle Database 11g Express Edition Release", Major: 11, Minor: 2},
		},
		{
			description: "version prefix",
			banner:      "Vertica Analytic Database v11.1.1-0",
			expect:      &Product{Name: "Vertica Analytic Database", Major: 11, Minor: 1, Release: 1},
		},
		{
			description: "year inside name",
			banner:      "Microsoft SQL Server 2000 - 8.00.760 (Intel X86)",
			expect:      &Product{Name: "Microsoft SQL Server 2000", Major: 8, Release: 760},
		},
		{
			description: "dash separated name",
			banner:      "SQLite - 3.34.0",
			expect:      &Product{Name: "SQLite", Major: 3, Minor: 34},
		},
		{
			description: "major only",
			banner:      "MySQL 8",
			expect:      &Product{Name: "MySQL", Major: 8},
		},
		{
			description: "no version",
			banner:      "unknown",
			hasError:    true,
		},
	}

	for _, testCase := range testCases {
		actual, err := Parse([]byte(testCase.banner))
		if testCase.hasError {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestProduct_Equal(t *testing.T) {
	base := &Product{Name: "SQLite", Major: 3, Minor: 33}
	assert.True(t, base.Equal(base.New(3, 33, 1)))
	assert.False(t, base.Equal(base.New(3, 34, 0)))
	assert.False(t, base.Equal(&Product{Name: "MySQL", Major: 3, Minor: 33}))
}

func TestProduct_Compare(t *testing.T) {
	base := &Product{Name: "PostgreSQL", Major: 9, Minor: 6}
	var testCases = []struct {
		description string
		other       *Product
		expect      int
		text        string
	}{
		{description: "same", other: base.New(9, 6, 3), expect: 0, text: "PostgreSQL 9.6"},
		{description: "older minor", other: base.New(9, 4, 0), expect: 1, text: "PostgreSQL 9.4"},
		{description: "newer major", other: base.New(12, 0, 0), expect: -1, text: "PostgreSQL 12.0"},
		{description: "versionless", other: base.New(0, 0, 0), expect: 1, text: "PostgreSQL"},
	}
	for _, testCase := range testCases {
		assert.EqualValues(t, testCase.expect, base.Compare(testCase.other), testCase.description)
		assert.EqualValues(t, testCase.text, testCase.other.String(), testCase.description)
	}
}
