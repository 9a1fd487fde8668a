package option

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sqlq/mapping"
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
)

func TestOptions(t *testing.T) {
	dialect := &info.Dialect{Product: database.Product{Name: "SQLite", Major: 3}}
	schema := mapping.NewSchema("db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var testCases = []struct {
		description string
		options     Options
		tag         string
		prefix      string
		dialect     *info.Dialect
		schema      *mapping.Schema
		logger      *slog.Logger
	}{
		{
			description: "defaults",
			tag:         TagSqlx,
			prefix:      DefaultParameterPrefix,
		},
		{
			description: "supplied options",
			options:     Options{Tag("db"), ParameterPrefix("arg"), dialect, schema, WithLogger(logger)},
			tag:         "db",
			prefix:      "arg",
			dialect:     dialect,
			schema:      schema,
			logger:      logger,
		},
	}

	for _, testCase := range testCases {
		assert.EqualValues(t, testCase.tag, testCase.options.Tag(), testCase.description)
		assert.EqualValues(t, testCase.prefix, testCase.options.ParameterPrefix(), testCase.description)
		assert.Equal(t, testCase.dialect, testCase.options.Dialect(), testCase.description)
		assert.NotNil(t, testCase.options.Schema(), testCase.description)
		assert.NotNil(t, testCase.options.Logger(), testCase.description)
		if testCase.schema != nil {
			assert.Same(t, testCase.schema, testCase.options.Schema(), testCase.description)
		}
		if testCase.logger != nil {
			assert.Same(t, testCase.logger, testCase.options.Logger(), testCase.description)
		}
		if testCase.dialect != nil {
			assert.EqualValues(t, "SQLite", testCase.options.Product().Name, testCase.description)
		}
	}
}
