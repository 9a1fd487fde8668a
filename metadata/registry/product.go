package registry

import (
	"database/sql"
	"reflect"
	"sort"
	"strings"

	"github.com/viant/sqlq/metadata/database"
)

const defaultProductName = "ansi"

//genericDriverName is too common to identify a product
const genericDriverName = "Driver"

//MatchProduct matches registered product with db driver package or type name, ansi product is returned when nothing matches
func MatchProduct(db *sql.DB) *database.Product {
	pkg, name := driverIdentity(db)
	products := Products()
	names := make([]string, 0, len(products))
	for key := range products {
		names = append(names, key)
	}
	sort.Strings(names)
	for _, key := range names {
		if candidate := products[key]; matchesDriver(key, candidate, pkg, name) {
			matched := *candidate
			matched.DriverPkg = pkg
			matched.Driver = name
			return &matched
		}
	}
	if fallback, ok := products[defaultProductName]; ok {
		matched := *fallback
		return &matched
	}
	return nil
}

func matchesDriver(key string, candidate *database.Product, pkg, name string) bool {
	if strings.Contains(pkg, key) {
		return true
	}
	if candidate.DriverPkg != "" && strings.Contains(pkg, candidate.DriverPkg) {
		return true
	}
	return name != genericDriverName && candidate.Driver != "" && strings.Contains(candidate.Driver, name)
}

//driverIdentity returns driver package and type name, i.e. sqlite3, SQLiteDriver
func driverIdentity(db *sql.DB) (string, string) {
	typeName := strings.TrimPrefix(reflect.TypeOf(db.Driver()).String(), "*")
	pkg, name, ok := strings.Cut(typeName, ".")
	if !ok {
		return typeName, typeName
	}
	return pkg, name
}
