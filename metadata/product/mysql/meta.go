package mysql

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "MySQL"

var mySQL5 = database.Product{
	Name:  product,
	Major: 5,
}

var mySQL57 = database.Product{
	Name:  product,
	Major: 5,
	Minor: 7,
}

//MySQL5 return MySQL 5.x product
func MySQL5() *database.Product {
	return &mySQL5
}

//MySQL57 return MySQL 5.7 product
func MySQL57() *database.Product {
	return &mySQL57
}

var members = info.MergeMembers(info.AnsiMembers, map[string]string{
	"strings.Len":     "Char_Length($0)",
	"strings.IndexOf": "Locate($1, $0) - 1",
})

func init() {
	for _, product := range []database.Product{mySQL5, mySQL57} {
		registry.RegisterDialect(&info.Dialect{
			Product:              product,
			Placeholder:          "?",
			QuoteCharacter:       '\'',
			CanSkip:              true,
			CanTake:              true,
			TakeAcceptsParameter: true,
			//LIMIT is not supported in IN/ALL/ANY/SOME sub queries
			CanSubQueryTake:   false,
			CanCountSubQuery:  true,
			CanSubQueryColumn: true,
			Members:           members,
		})
	}
}
