package mapping

import (
	"fmt"
	"reflect"
)

//Enum represents enum value to stored code mapping
type Enum struct {
	Type      reflect.Type
	codes     map[interface{}]interface{}
	values    map[interface{}]interface{}
	nullValue interface{}
	hasNull   bool
}

func newEnum(t reflect.Type, codes map[interface{}]interface{}) *Enum {
	ret := &Enum{
		Type:   t,
		codes:  map[interface{}]interface{}{},
		values: map[interface{}]interface{}{},
	}
	for value, code := range codes {
		ret.codes[value] = code
		if code == nil {
			ret.nullValue = value
			ret.hasNull = true
			continue
		}
		ret.values[codeKey(code)] = value
	}
	return ret
}

//Code returns stored code for enum value
func (e *Enum) Code(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	code, ok := e.codes[value]
	if !ok {
		return nil, fmt.Errorf("unknown %v enum value: %v", e.Type.Name(), value)
	}
	return code, nil
}

//Value returns enum value for stored code
func (e *Enum) Value(code interface{}) (interface{}, error) {
	if code == nil {
		if e.hasNull {
			return e.nullValue, nil
		}
		return reflect.Zero(e.Type).Interface(), nil
	}
	value, ok := e.values[codeKey(code)]
	if !ok {
		return nil, fmt.Errorf("unknown %v enum code: %v", e.Type.Name(), code)
	}
	return value, nil
}

//NullValue returns enum value mapped to NULL
func (e *Enum) NullValue() (interface{}, bool) {
	return e.nullValue, e.hasNull
}

func codeKey(code interface{}) interface{} {
	switch actual := code.(type) {
	case []byte:
		return string(actual)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", actual)
	case float32, float64:
		return fmt.Sprintf("%v", actual)
	}
	return code
}
