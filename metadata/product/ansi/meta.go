package ansi

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/info/placeholder"
	"github.com/viant/sqlq/metadata/registry"
)

//Product represents product
const product = "ANSI"

//ANSI defines default product
var ANSI = database.Product{
	Name:   product,
	Major:  1,
	Driver: "ansi",
}

func init() {
	registry.RegisterDialect(&info.Dialect{
		Product:              ANSI,
		Placeholder:          "?",
		PlaceholderResolver:  &placeholder.DefaultGenerator{},
		QuoteCharacter:       '\'',
		CanSkip:              true,
		CanTake:              true,
		TakeAcceptsParameter: true,
		CanSubQueryTake:      true,
		CanCountSubQuery:     true,
		CanSubQueryColumn:    true,
		Members:              info.AnsiMembers,
	})
}
