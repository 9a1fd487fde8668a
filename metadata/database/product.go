package database

import "strconv"

//Product represents database product
type Product struct {
	Name      string
	Driver    string
	DriverPkg string
	Major     int
	Minor     int
	Release   int
}

//Equal checks if product name and version are equal
func (p *Product) Equal(product *Product) bool {
	return p.Name == product.Name && p.Compare(product) == 0
}

//Compare compares major and minor version, release is ignored
func (p *Product) Compare(product *Product) int {
	switch {
	case p.Major != product.Major:
		return sign(p.Major - product.Major)
	case p.Minor != product.Minor:
		return sign(p.Minor - product.Minor)
	}
	return 0
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

//String returns product name with version
func (p *Product) String() string {
	if p.Major == 0 && p.Minor == 0 {
		return p.Name
	}
	return p.Name + " " + strconv.Itoa(p.Major) + "." + strconv.Itoa(p.Minor)
}

//New crates new product with supplied version
func (p *Product) New(major, minor, release int) *Product {
	return &Product{
		Name:      p.Name,
		Driver:    p.Driver,
		DriverPkg: p.DriverPkg,
		Major:     major,
		Minor:     minor,
		Release:   release,
	}
}
