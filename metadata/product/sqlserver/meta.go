package sqlserver

import (
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/info/placeholder"
	"github.com/viant/sqlq/metadata/registry"
)

const product = "Microsoft SQL Server"

var sqlServer2000 = database.Product{
	Name:      product,
	DriverPkg: "mssql",
	Major:     8,
}

var sqlServer2012 = database.Product{
	Name:      product,
	DriverPkg: "mssql",
	Major:     11,
}

//SQLServer2000 returns SQL Server 2000 product
func SQLServer2000() *database.Product {
	return &sqlServer2000
}

//SQLServer2012 returns SQL Server 2012 product
func SQLServer2012() *database.Product {
	return &sqlServer2012
}

var members = info.MergeMembers(info.AnsiMembers, map[string]string{
	"strings.Len":       "Len($0)",
	"strings.TrimSpace": "LTrim(RTrim($0))",
})

func init() {
	//SQL Server 2000 has TOP n with literal n only and no OFFSET
	registry.RegisterDialect(&info.Dialect{
		Product:              sqlServer2000,
		Placeholder:          "@p",
		PlaceholderResolver:  &placeholder.Sequence{Prefix: "@p"},
		QuoteCharacter:       '\'',
		CanSkip:              false,
		CanTake:              true,
		TakeAcceptsParameter: false,
		CanSubQueryTake:      true,
		CanCountSubQuery:     true,
		CanSubQueryColumn:    true,
		Members:              members,
	})
	registry.RegisterDialect(&info.Dialect{
		Product:              sqlServer2012,
		Placeholder:          "@p",
		PlaceholderResolver:  &placeholder.Sequence{Prefix: "@p"},
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
