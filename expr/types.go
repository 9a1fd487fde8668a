package expr

import (
	"context"
	"reflect"
	"strings"
	"time"
	"unicode"
)

//Grouping represents a grouped sequence element, elements are loaded on demand
type Grouping interface {
	//Key returns grouping key
	Key() interface{}
	//Len returns number of elements if known without loading
	Len() (int, bool)
	//Load loads group elements
	Load(ctx context.Context) ([]interface{}, error)
}

//GroupType describes grouping key and element types
type GroupType struct {
	Key     reflect.Type
	Element reflect.Type
}

var (
	//GroupingType represents grouping value type
	GroupingType  = reflect.TypeOf((*Grouping)(nil)).Elem()
	boolType      = reflect.TypeOf(true)
	intType       = reflect.TypeOf(0)
	float64Type   = reflect.TypeOf(0.0)
	stringType    = reflect.TypeOf("")
	timeType      = reflect.TypeOf(time.Time{})
	interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
)

//ElementType returns sequence element type
func ElementType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem()
	}
	return nil
}

//StructType returns struct type for pointer or struct
func StructType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		return t
	}
	return nil
}

//IsNullable returns true if type can hold nil
func IsNullable(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

//IsScalar returns true for types mapped to a single column
func IsScalar(t reflect.Type) bool {
	if t == nil {
		return true
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Func, reflect.Chan:
		return false
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Interface:
		return t != GroupingType
	}
	return true
}

//Deref returns non pointer type
func Deref(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

func paramName(t reflect.Type) string {
	if t == nil {
		return "x"
	}
	if t == GroupingType {
		return "g"
	}
	t = Deref(t)
	name := t.Name()
	if name == "" {
		return "x"
	}
	return strings.ToLower(string([]rune(name)[:1]))
}

func memberType(owner reflect.Type, name string) reflect.Type {
	structType := StructType(owner)
	if structType == nil {
		return nil
	}
	field, ok := structType.FieldByName(name)
	if !ok {
		return nil
	}
	return field.Type
}

func exported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
