package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
)

var _registry = &registry{
	products: make(map[string]*database.Product),
	dialects: make(map[string]info.Dialects),
}

//RegisterDialect register dialect
func RegisterDialect(dialect *info.Dialect) {
	_registry.RegisterDialect(dialect)
}

//Products access products registry
func Products() map[string]*database.Product {
	_registry.mux.Lock()
	defer _registry.mux.Unlock()
	var result = make(map[string]*database.Product, len(_registry.products))
	for k, v := range _registry.products {
		result[k] = v
	}
	return result
}

//LookupDialect lookups dialect
func LookupDialect(product *database.Product) *info.Dialect {
	return _registry.LookupDialect(product)
}

//DialectForVersion lookups dialect for version string returned by a database, i.e. SQLite - 3.34.0
func DialectForVersion(version string) (*info.Dialect, error) {
	product, err := database.Parse([]byte(version))
	if err != nil {
		return nil, err
	}
	for name, candidate := range Products() {
		if strings.Contains(strings.ToLower(product.Name), name) {
			product.Name = candidate.Name
			break
		}
	}
	return LookupDialect(product), nil
}

type registry struct {
	mux      sync.Mutex
	products map[string]*database.Product
	dialects map[string]info.Dialects
}

func (r *registry) LookupDialect(product *database.Product) *info.Dialect {
	if product == nil {
		return nil
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	dialects, ok := r.dialects[product.Name]
	if !ok || len(dialects) == 0 {
		return nil
	}
	var result *info.Dialect
	for _, candidate := range dialects {
		if product.Equal(&candidate.Product) {
			return candidate
		}
		if candidate.Product.Compare(product) <= 0 {
			result = candidate
		}
	}
	if result == nil {
		return dialects[0]
	}
	return result
}

func (r *registry) RegisterDialect(dialect *info.Dialect) {
	r.mux.Lock()
	defer r.mux.Unlock()
	name := strings.ToLower(dialect.Name)
	if _, ok := r.products[name]; !ok {
		product := dialect.Product
		r.products[name] = &product
	}
	dialects, ok := r.dialects[dialect.Name]
	if !ok {
		r.dialects[dialect.Name] = []*info.Dialect{dialect}
		return
	}
	for _, item := range dialects {
		if item.Product.Equal(&dialect.Product) {
			return
		}
	}
	r.dialects[dialect.Name] = append(r.dialects[dialect.Name], dialect)
	sort.Sort(r.dialects[dialect.Name])
}
