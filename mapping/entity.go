package mapping

import (
	"reflect"
	"unsafe"

	"github.com/viant/sqlq/io"
	"github.com/viant/xunsafe"
)

type (
	//Entity represents mapped struct type
	Entity struct {
		Type          reflect.Type
		Table         string
		Columns       []*Column
		Keys          []*Column
		Associations  []*Association
		Discriminator *Column
		Inheritance   []*Inheritance
		byMember      map[string]*Column
		byAssociation map[string]*Association
	}

	//Column represents mapped scalar member
	Column struct {
		Name          string
		Member        string
		Type          reflect.Type
		PrimaryKey    bool
		Discriminator bool
		Nullable      bool
		Owner         reflect.Type
		Field         *io.Field
	}

	//Association represents foreign key navigation member
	Association struct {
		Member    string
		Type      reflect.Type
		OtherType reflect.Type
		ThisKey   []string
		OtherKey  []string
		CanBeNull bool
		IsList    bool
		Field     *io.Field
	}

	//Inheritance represents discriminator code to type mapping
	Inheritance struct {
		Code      interface{}
		Type      reflect.Type
		IsDefault bool
		Columns   []*Column
	}
)

//Column returns column by member name
func (e *Entity) Column(member string) *Column {
	return e.byMember[member]
}

//Association returns association by member name
func (e *Entity) Association(member string) *Association {
	return e.byAssociation[member]
}

//HasInheritance returns true if entity has inheritance mapping
func (e *Entity) HasInheritance() bool {
	return len(e.Inheritance) > 0
}

//InheritanceFor returns inheritance mapping for supplied type
func (e *Entity) InheritanceFor(t reflect.Type) *Inheritance {
	t = structType(t)
	for _, candidate := range e.Inheritance {
		if candidate.Type == t {
			return candidate
		}
	}
	return nil
}

//Default returns default inheritance mapping
func (e *Entity) Default() *Inheritance {
	for _, candidate := range e.Inheritance {
		if candidate.IsDefault {
			return candidate
		}
	}
	return nil
}

//ColumnsFor returns columns materialized for type t
func (e *Entity) ColumnsFor(t reflect.Type) []*Column {
	if mapping := e.InheritanceFor(t); mapping != nil {
		return mapping.Columns
	}
	var result []*Column
	for _, column := range e.Columns {
		if column.Field != nil {
			result = append(result, column)
		}
	}
	return result
}

//New allocates a new instance, returns pointer value and its address
func (e *Entity) New(t reflect.Type) (interface{}, unsafe.Pointer) {
	value := reflect.New(structType(t))
	ret := value.Interface()
	return ret, xunsafe.AsPointer(ret)
}

//Value returns member value of a host object
func (c *Column) Value(owner interface{}) interface{} {
	if owner == nil {
		return nil
	}
	v := reflect.ValueOf(owner)
	if v.Kind() == reflect.Ptr && c.Field != nil && v.Type().Elem() == c.Owner {
		if v.IsNil() {
			return nil
		}
		return c.Field.Value(xunsafe.AsPointer(owner))
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	field := v.FieldByName(c.Member)
	if !field.IsValid() {
		return nil
	}
	return field.Interface()
}

func structType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
