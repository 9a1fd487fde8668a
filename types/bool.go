package types

import (
	"database/sql/driver"
	"fmt"
)

//Bool represents boolean stored as BIT, see https://stackoverflow.com/questions/47535543/mysqls-bit-type-maps-to-which-go-type
type Bool bool

//Scan scans bit, bool or integer source
func (b *Bool) Scan(src interface{}) error {
	switch actual := src.(type) {
	case nil:
		*b = false
	case bool:
		*b = Bool(actual)
	case int64:
		*b = actual != 0
	case []byte:
		return b.Scan(string(actual))
	case string:
		switch actual {
		case "\x00", "0", "false":
			*b = false
		case "\x01", "1", "true":
			*b = true
		default:
			return fmt.Errorf("unexpected value for Bool: %q", actual)
		}
	default:
		return fmt.Errorf("unexpected type for Bool: %T", src)
	}
	return nil
}

//Value returns driver value
func (b Bool) Value() (driver.Value, error) {
	return bool(b), nil
}
