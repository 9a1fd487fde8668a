package vertica

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "Vertica Analytic Database"
const driver = "Driver"
const driverPkg = "vertigo"

var vertica = database.Product{
	Name:      product,
	DriverPkg: driverPkg,
	Driver:    driver,
}

//Vertica return Vertica product
func Vertica() *database.Product {
	return &vertica
}

func init() {
	registry.RegisterDialect(&info.Dialect{
		Product:              vertica,
		Placeholder:          "?",
		QuoteCharacter:       '\'',
		CanSkip:              true,
		CanTake:              true,
		TakeAcceptsParameter: true,
		CanSubQueryTake:      true,
		CanCountSubQuery:     true,
		CanSubQueryColumn:    true,
		Members: info.MergeMembers(info.AnsiMembers, map[string]string{
			"strings.Substring": "Substr($0, $1 + 1, $2)",
			"strings.IndexOf":   "Instr($0, $1) - 1",
			"math.Ceiling":      "Ceil($0)",
		}),
	})
}
