package io

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/viant/xunsafe"
)

// Field represents column mapped field
type (
	Field struct {
		Tag
		*xunsafe.Field
		Column  string
		owner   *Field
		pointer func(pointer unsafe.Pointer) unsafe.Pointer
	}

	// Fields represents slice of Field
	Fields []*Field
)

// ColumnNames returns slice of column names for given Fields
func (f Fields) ColumnNames() []string {
	var result = make([]string, len(f))
	for i, field := range f {
		result[i] = field.Column
	}
	return result
}

//Set sets field value on struct pointer, nil value leaves zero value
func (f *Field) Set(pointer unsafe.Pointer, value interface{}) {
	if value == nil {
		return
	}
	f.Field.SetValue(f.base(pointer), value)
}

//Value returns field value from struct pointer
func (f *Field) Value(pointer unsafe.Pointer) interface{} {
	base := f.base(pointer)
	if base == nil {
		return nil
	}
	return f.Field.Value(base)
}

func (f *Field) base(pointer unsafe.Pointer) unsafe.Pointer {
	if f.pointer == nil {
		return pointer
	}
	return f.pointer(pointer)
}

func (f *Field) buildPointer(owner *Field) {
	if owner == nil {
		return
	}
	f.owner = owner
	ownerType := owner.Type
	if ownerType.Kind() == reflect.Ptr {
		ownerType = ownerType.Elem()
	}
	ownerBase := owner.base
	switch owner.Type.Kind() {
	case reflect.Struct:
		f.pointer = func(pointer unsafe.Pointer) unsafe.Pointer {
			return owner.Field.Pointer(ownerBase(pointer))
		}
	case reflect.Ptr:
		f.pointer = func(pointer unsafe.Pointer) unsafe.Pointer {
			ptr := (*unsafe.Pointer)(owner.Field.Pointer(ownerBase(pointer)))
			if *ptr == nil {
				newInstance := reflect.New(ownerType)
				*ptr = xunsafe.AsPointer(newInstance.Interface())
			}
			return *ptr
		}
	}
}

//StructFields returns struct fields with parsed tags, embedded structs are expanded
func StructFields(t reflect.Type, tagName string) (Fields, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, but had: %v", t.String())
	}
	var result Fields
	return result, indexFields(nil, xunsafe.NewStruct(t), tagName, &result)
}

func indexFields(owner *Field, xStruct *xunsafe.Struct, tagName string, fields *Fields) error {
	ns := ""
	if owner != nil {
		ns = owner.Tag.Ns
	}
	for i := range xStruct.Fields {
		structField := &xStruct.Fields[i]
		if structField.Name == "_" || !isExported(structField.Name) {
			continue
		}
		field := &Field{Field: structField}
		field.buildPointer(owner)
		parsed := ParseTag(structField.Tag.Get(tagName))
		field.Tag = *parsed
		if field.Transient {
			continue
		}
		if err := field.Tag.validate(reflect.StructField{Name: structField.Name}); err != nil {
			return err
		}
		if field.CanExpand() {
			structType := field.Type
			if structType.Kind() == reflect.Ptr {
				structType = structType.Elem()
			}
			if err := indexFields(field, xunsafe.NewStruct(structType), tagName, fields); err != nil {
				return err
			}
			continue
		}
		field.Column = ns + field.Tag.getColumnName(reflect.StructField{Name: structField.Name})
		*fields = append(*fields, field)
	}
	return nil
}

func isExported(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
