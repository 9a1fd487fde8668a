package oracle

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/info/placeholder"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "Oracle"

var oracleProduct = database.Product{
	Name: product,
}

// Oracle returns Oracle product
func Oracle() *database.Product { return &oracleProduct }

func init() {
	//paging is emulated with ROWNUM by the renderer, sub queries can not be limited
	registry.RegisterDialect(&info.Dialect{
		Product:              oracleProduct,
		Placeholder:          ":",
		PlaceholderResolver:  &placeholder.Sequence{Prefix: ":"},
		QuoteCharacter:       '\'',
		CanSkip:              false,
		CanTake:              true,
		TakeAcceptsParameter: false,
		CanSubQueryTake:      false,
		CanCountSubQuery:     true,
		CanSubQueryColumn:    true,
		Members: info.MergeMembers(info.AnsiMembers, map[string]string{
			"strings.Substring": "Substr($0, $1 + 1, $2)",
			"strings.IndexOf":   "Instr($0, $1) - 1",
			"time.Year":         "To_Number(To_Char($0, 'YYYY'))",
			"time.Month":        "To_Number(To_Char($0, 'MM'))",
			"time.Day":          "To_Number(To_Char($0, 'DD'))",
			"math.Ceiling":      "Ceil($0)",
		}),
	})
}
