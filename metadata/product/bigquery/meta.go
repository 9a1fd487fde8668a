package bigquery

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "BigQuery"
const driver = "Driver"
const driverPkg = "bigquery"

var bigQuery = database.Product{
	Name:      product,
	DriverPkg: driverPkg,
	Driver:    driver,
}

// BigQuery return BigQuery product
func BigQuery() *database.Product {
	return &bigQuery
}

func init() {
	registry.RegisterDialect(&info.Dialect{
		Product:              bigQuery,
		Placeholder:          "?",
		QuoteCharacter:       '\'',
		CanSkip:              true,
		CanTake:              true,
		TakeAcceptsParameter: false,
		CanSubQueryTake:      true,
		CanCountSubQuery:     true,
		CanSubQueryColumn:    true,
		Members: map[string]string{
			"strings.ToUpper":   "Upper($0)",
			"strings.ToLower":   "Lower($0)",
			"strings.TrimSpace": "Trim($0)",
			"strings.Len":       "Length($0)",
			"strings.Substring": "Substr($0, $1 + 1, $2)",
			"strings.IndexOf":   "Strpos($0, $1) - 1",
			"math.Abs":          "Abs($0)",
			"math.Round":        "Round($0)",
			"math.Floor":        "Floor($0)",
			"math.Ceiling":      "Ceil($0)",
		},
	})
}
