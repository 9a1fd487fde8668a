package pg

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/info/placeholder"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "PostgreSQL"

var pgSQL9 = database.Product{
	Name:      product,
	DriverPkg: "pq",
	Major:     9,
}

//PqSQL9 return PostgreSQL 9.x product
func PqSQL9() *database.Product {
	return &pgSQL9
}

func init() {
	registry.RegisterDialect(&info.Dialect{
		Product:              pgSQL9,
		Placeholder:          "$",
		PlaceholderResolver:  &placeholder.Sequence{Prefix: "$"},
		QuoteCharacter:       '\'', // 39 is single quote '
		CanSkip:              true,
		CanTake:              true,
		TakeAcceptsParameter: true,
		CanSubQueryTake:      true,
		CanCountSubQuery:     true,
		CanSubQueryColumn:    true,
		Members: info.MergeMembers(info.AnsiMembers, map[string]string{
			"strings.Substring": "Substr($0, $1 + 1, $2)",
			"strings.IndexOf":   "Strpos($0, $1) - 1",
			"time.Year":         "Date_Part('year', $0)",
			"time.Month":        "Date_Part('month', $0)",
			"time.Day":          "Date_Part('day', $0)",
			"math.Ceiling":      "Ceil($0)",
		}),
	})
}
