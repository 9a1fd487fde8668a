package aerospike

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "Aerospike"
const driver = "Driver"
const driverPkg = "aerospike"

var aerospike = database.Product{
	Name:      product,
	DriverPkg: driverPkg,
	Driver:    driver,
}

// Aerospike return Aerospike product
func Aerospike() *database.Product {
	return &aerospike
}

func init() {
	//LIMIT only, no sub queries and no server side functions
	registry.RegisterDialect(&info.Dialect{
		Product:              aerospike,
		Placeholder:          "?",
		QuoteCharacter:       '\'',
		CanSkip:              false,
		CanTake:              true,
		TakeAcceptsParameter: false,
		CanSubQueryTake:      false,
		CanCountSubQuery:     false,
		CanSubQueryColumn:    false,
		Members:              map[string]string{},
	})
}
