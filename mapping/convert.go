package mapping

import (
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/types"
	"github.com/viant/toolbox"
	"github.com/viant/xreflect"
)

//Converter converts raw column value into member value
type Converter func(value interface{}) (interface{}, error)

var (
	bytesType     = reflect.TypeOf([]byte{})
	typesBoolType = reflect.TypeOf(types.Bool(false))
	timeLayout    = "2006-01-02 15:04:05"
)

//Converter returns converter for type, false if type is not convertible
func (s *Schema) Converter(t reflect.Type) (Converter, bool) {
	s.mux.RLock()
	registered, ok := s.converters[t]
	s.mux.RUnlock()
	if ok {
		return s.nullable(t, registered), true
	}
	if enum := s.Enum(t); enum != nil && t.Kind() != reflect.Ptr {
		return enum.Value, true
	}
	if t.Kind() == reflect.Ptr {
		elem, ok := s.Converter(t.Elem())
		if !ok {
			return nil, false
		}
		return pointerConverter(t, elem), true
	}
	converter := scalarConverter(t)
	if converter == nil {
		return nil, false
	}
	return s.nullable(t, converter), true
}

func (s *Schema) nullable(t reflect.Type, converter Converter) Converter {
	return func(value interface{}) (interface{}, error) {
		if value == nil {
			return s.NullValue(t), nil
		}
		return converter(value)
	}
}

func pointerConverter(t reflect.Type, elem Converter) Converter {
	return func(value interface{}) (interface{}, error) {
		if value == nil {
			return reflect.Zero(t).Interface(), nil
		}
		converted, err := elem(value)
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(t.Elem())
		if converted != nil {
			ptr.Elem().Set(reflect.ValueOf(converted))
		}
		return ptr.Interface(), nil
	}
}

func scalarConverter(t reflect.Type) Converter {
	switch t {
	case xreflect.TimeType:
		return toTime
	case xreflect.InterfaceType:
		return func(value interface{}) (interface{}, error) { return value, nil }
	case bytesType:
		return func(value interface{}) (interface{}, error) {
			switch actual := value.(type) {
			case []byte:
				return append([]byte{}, actual...), nil
			case string:
				return []byte(actual), nil
			}
			return nil, errors.Errorf("unable to convert %T to []byte", value)
		}
	case typesBoolType:
		return func(value interface{}) (interface{}, error) {
			var ret types.Bool
			if text, ok := normalize(value).(string); ok && len(text) == 1 && text[0] <= 1 {
				err := ret.Scan(text)
				return ret, err
			}
			b, err := toolbox.ToBoolean(normalize(value))
			return types.Bool(b), err
		}
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(value interface{}) (interface{}, error) {
			if rv := reflect.ValueOf(value); rv.Kind() == reflect.Int64 {
				return rv.Convert(t).Interface(), nil
			}
			i, err := toolbox.ToInt(normalize(value))
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(i).Convert(t).Interface(), nil
		}
	case reflect.Float32, reflect.Float64:
		return func(value interface{}) (interface{}, error) {
			f, err := toolbox.ToFloat(normalize(value))
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(f).Convert(t).Interface(), nil
		}
	case reflect.Bool:
		return func(value interface{}) (interface{}, error) {
			b, err := toolbox.ToBoolean(normalize(value))
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(b).Convert(t).Interface(), nil
		}
	case reflect.String:
		return func(value interface{}) (interface{}, error) {
			return reflect.ValueOf(toolbox.AsString(normalize(value))).Convert(t).Interface(), nil
		}
	}
	return nil
}

func toTime(value interface{}) (interface{}, error) {
	switch actual := value.(type) {
	case time.Time:
		return actual, nil
	case *time.Time:
		return *actual, nil
	}
	ts, err := toolbox.ToTime(normalize(value), timeLayout)
	if err != nil {
		return nil, err
	}
	return *ts, nil
}

func normalize(value interface{}) interface{} {
	if data, ok := value.([]byte); ok {
		return string(data)
	}
	return value
}
