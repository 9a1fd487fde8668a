package sqlite

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "SQLite"

var sqLite3 = database.Product{
	Name:      product,
	Major:     3,
	DriverPkg: "sqlite3",
	Driver:    "SQLiteDriver",
}

var sqLite333 = database.Product{
	Name:      product,
	Major:     3,
	Minor:     33,
	DriverPkg: "sqlite3",
	Driver:    "SQLiteDriver",
}

//SQLite3 return SQLite3 product
func SQLite3() *database.Product {
	return &sqLite3
}

func SQLiteMaj3Min33() *database.Product {
	return &sqLite333
}

//members strftime returns text, adding zero coerces it to integer
var members = info.MergeMembers(info.AnsiMembers, map[string]string{
	"strings.Substring": "Substr($0, $1 + 1, $2)",
	"strings.IndexOf":   "Instr($0, $1) - 1",
	"time.Year":         "Strftime('%Y', $0) + 0",
	"time.Month":        "Strftime('%m', $0) + 0",
	"time.Day":          "Strftime('%d', $0) + 0",
	"math.Ceiling":      "Ceil($0)",
})

func init() {
	registerProduct(sqLite333)
	registerProduct(sqLite3)
}

func registerProduct(product database.Product) {
	registry.RegisterDialect(&info.Dialect{
		Product:              product,
		Placeholder:          "?",
		QuoteCharacter:       '\'',
		CanSkip:              true,
		CanTake:              true,
		TakeAcceptsParameter: true,
		CanSubQueryTake:      true,
		CanCountSubQuery:     true,
		CanSubQueryColumn:    true,
		Members:              members,
	})
}
