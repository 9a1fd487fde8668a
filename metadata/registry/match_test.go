package registry_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	vertigo "github.com/vertica/vertica-sql-go"
	_ "github.com/viant/sqlq/metadata/product/ansi"
	_ "github.com/viant/sqlq/metadata/product/pg"
	_ "github.com/viant/sqlq/metadata/product/sqlserver"
	_ "github.com/viant/sqlq/metadata/product/vertica"
	"github.com/viant/sqlq/metadata/registry"
)

//connector exposes a driver without dialing a database
type connector struct {
	driver driver.Driver
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	return nil, errors.New("not connected")
}

func (c *connector) Driver() driver.Driver { return c.driver }

func TestMatchProduct(t *testing.T) {
	var testCases = []struct {
		description string
		driver      driver.Driver
		expect      string
	}{
		{description: "mysql", driver: &mysql.MySQLDriver{}, expect: "MySQL"},
		{description: "postgres", driver: &pq.Driver{}, expect: "PostgreSQL"},
		{description: "sql server", driver: &mssql.Driver{}, expect: "Microsoft SQL Server"},
		{description: "vertica", driver: &vertigo.Driver{}, expect: "Vertica Analytic Database"},
		{description: "sqlite", driver: &sqlite3.SQLiteDriver{}, expect: "SQLite"},
	}

	for _, testCase := range testCases {
		db := sql.OpenDB(&connector{driver: testCase.driver})
		product := registry.MatchProduct(db)
		_ = db.Close()
		if !assert.NotNil(t, product, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, product.Name, testCase.description)
		assert.NotNil(t, registry.LookupDialect(product), testCase.description)
	}
}

func TestMatchProduct_Copy(t *testing.T) {
	registered := registry.Products()["postgresql"]
	if !assert.NotNil(t, registered) {
		return
	}
	driverPkg, driverName := registered.DriverPkg, registered.Driver
	db := sql.OpenDB(&connector{driver: &pq.Driver{}})
	defer db.Close()
	first := registry.MatchProduct(db)
	second := registry.MatchProduct(db)
	if !assert.NotNil(t, first) || !assert.NotNil(t, second) {
		return
	}
	assert.True(t, first != second)
	assert.True(t, first != registered)
	first.Driver = "changed"
	assert.EqualValues(t, "pq", second.DriverPkg)
	assert.EqualValues(t, "Driver", second.Driver)
	assert.EqualValues(t, driverPkg, registered.DriverPkg)
	assert.EqualValues(t, driverName, registered.Driver)
}
