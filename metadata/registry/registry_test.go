package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/product/aerospike"
	"github.com/viant/sqlq/metadata/product/mysql"
	"github.com/viant/sqlq/metadata/product/sqlite"
	"github.com/viant/sqlq/metadata/registry"
)

func TestLookupDialect(t *testing.T) {
	var testCases = []struct {
		description string
		product     *database.Product
		expectMajor int
		expectMinor int
		expectNil   bool
	}{
		{description: "exact version", product: sqlite.SQLite3(), expectMajor: 3},
		{description: "closest lower version", product: &database.Product{Name: "SQLite", Major: 3, Minor: 40}, expectMajor: 3, expectMinor: 33},
		{description: "older than registered", product: &database.Product{Name: "SQLite", Major: 2}, expectMajor: 3},
		{description: "mysql", product: mysql.MySQL57(), expectMajor: 5, expectMinor: 7},
		{description: "versionless product", product: aerospike.Aerospike()},
		{description: "unknown product", product: &database.Product{Name: "Unknown"}, expectNil: true},
		{description: "nil product", expectNil: true},
	}

	for _, testCase := range testCases {
		actual := registry.LookupDialect(testCase.product)
		if testCase.expectNil {
			assert.Nil(t, actual, testCase.description)
			continue
		}
		if !assert.NotNil(t, actual, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expectMajor, actual.Major, testCase.description)
		assert.EqualValues(t, testCase.expectMinor, actual.Minor, testCase.description)
		assert.EqualValues(t, testCase.product.Name, actual.Name, testCase.description)
	}
}

func TestDialectForVersion(t *testing.T) {
	dialect, err := registry.DialectForVersion("SQLite - 3.34.0")
	if !assert.Nil(t, err) || !assert.NotNil(t, dialect) {
		return
	}
	assert.EqualValues(t, "SQLite", dialect.Name)
	assert.EqualValues(t, 33, dialect.Minor)
	assert.True(t, dialect.IsSkipSupported())
}

func TestLookupDialect_Capabilities(t *testing.T) {
	dialect := registry.LookupDialect(aerospike.Aerospike())
	if !assert.NotNil(t, dialect) {
		return
	}
	assert.False(t, dialect.IsSkipSupported())
	assert.True(t, dialect.IsTakeSupported())
	assert.False(t, dialect.IsSubQueryTakeSupported())
	assert.False(t, dialect.IsCountSubQuerySupported())
}

func TestProducts(t *testing.T) {
	products := registry.Products()
	assert.NotNil(t, products["sqlite"])
	assert.NotNil(t, products["mysql"])
}
