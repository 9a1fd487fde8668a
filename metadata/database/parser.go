package database

import (
	"strings"

	"github.com/viant/parsly"
)

const nameCutset = " -\t\nv"

//Parse parses product name and version from a version banner, i.e. PostgreSQL 9.3.10 on x86_64.
//The version is the first number followed by a separator, text before it is the product name.
func Parse(banner []byte) (*Product, error) {
	cursor := parsly.NewCursor("", banner, 0)
	var fallback *Product
	for {
		number := cursor.FindMatch(numberToken)
		if number.Code != numberCode {
			if fallback != nil {
				return fallback, nil
			}
			return nil, cursor.NewError(numberToken)
		}
		product := &Product{Name: productName(cursor, number.Offset)}
		major, _ := number.Int(cursor)
		product.Major = int(major)
		if cursor.MatchOne(versionSeparatorToken).Code != versionSeparatorCode {
			if fallback == nil {
				fallback = product
			}
			continue
		}
		product.Minor, product.Release = versionComponents(cursor)
		return product, nil
	}
}

func productName(cursor *parsly.Cursor, offset int) string {
	return strings.Trim(string(cursor.Input[:offset]), nameCutset)
}

//versionComponents reads minor and release that follow the major version
func versionComponents(cursor *parsly.Cursor) (minor int, release int) {
	components := make([]int, 0, 2)
	for len(components) < 2 {
		number := cursor.MatchOne(numberToken)
		if number.Code != numberCode {
			break
		}
		value, _ := number.Int(cursor)
		components = append(components, int(value))
		if cursor.MatchOne(versionSeparatorToken).Code != versionSeparatorCode {
			break
		}
	}
	for len(components) < 2 {
		components = append(components, 0)
	}
	return components[0], components[1]
}
