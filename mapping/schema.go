package mapping

import (
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/io"
)

//TagSqlx defines default annotation
const TagSqlx = "sqlx"

type (
	//Schema represents object to column mapping metadata provider
	Schema struct {
		tagName    string
		mux        sync.RWMutex
		configs    map[reflect.Type]*config
		entities   map[reflect.Type]*Entity
		bases      map[reflect.Type]reflect.Type
		enums      map[reflect.Type]*Enum
		converters map[reflect.Type]Converter
		nullValues map[reflect.Type]interface{}
	}

	config struct {
		table       string
		inheritance []*Inheritance
	}

	//Option represents entity registration option
	Option func(c *config)
)

//WithTable sets table name
func WithTable(name string) Option {
	return func(c *config) {
		c.table = name
	}
}

//WithInheritance adds inheritance mapping, mappings are tested in declaration order
func WithInheritance(code interface{}, t reflect.Type, isDefault bool) Option {
	return func(c *config) {
		c.inheritance = append(c.inheritance, &Inheritance{Code: code, Type: structType(t), IsDefault: isDefault})
	}
}

//NewSchema creates a schema
func NewSchema(tagName string) *Schema {
	if tagName == "" {
		tagName = TagSqlx
	}
	return &Schema{
		tagName:    tagName,
		configs:    map[reflect.Type]*config{},
		entities:   map[reflect.Type]*Entity{},
		bases:      map[reflect.Type]reflect.Type{},
		enums:      map[reflect.Type]*Enum{},
		converters: map[reflect.Type]Converter{},
		nullValues: map[reflect.Type]interface{}{},
	}
}

//Register registers entity type
func (s *Schema) Register(t reflect.Type, options ...Option) *Schema {
	t = structType(t)
	cfg := &config{table: t.Name()}
	for _, opt := range options {
		opt(cfg)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.configs[t] = cfg
	delete(s.entities, t)
	for _, mapping := range cfg.inheritance {
		if mapping.Type != t {
			s.bases[mapping.Type] = t
		}
	}
	return s
}

//IsEntity returns true if type or its inheritance base was registered
func (s *Schema) IsEntity(t reflect.Type) bool {
	if t == nil {
		return false
	}
	t = structType(t)
	s.mux.RLock()
	defer s.mux.RUnlock()
	if _, ok := s.configs[t]; ok {
		return true
	}
	_, ok := s.bases[t]
	return ok
}

//Entity returns entity for type, inheritance subtypes resolve to base entity
func (s *Schema) Entity(t reflect.Type) (*Entity, error) {
	t = structType(t)
	s.mux.RLock()
	if base, ok := s.bases[t]; ok {
		t = base
	}
	entity, ok := s.entities[t]
	cfg := s.configs[t]
	s.mux.RUnlock()
	if ok {
		return entity, nil
	}
	if cfg == nil {
		return nil, errors.Errorf("type %v was not registered", t.String())
	}
	entity, err := s.buildEntity(t, cfg)
	if err != nil {
		return nil, err
	}
	s.mux.Lock()
	s.entities[t] = entity
	s.mux.Unlock()
	return entity, nil
}

func (s *Schema) buildEntity(t reflect.Type, cfg *config) (*Entity, error) {
	entity := &Entity{
		Type:          t,
		Table:         cfg.table,
		byMember:      map[string]*Column{},
		byAssociation: map[string]*Association{},
	}
	columns, associations, err := s.columns(t)
	if err != nil {
		return nil, err
	}
	for _, column := range columns {
		s.addColumn(entity, column)
	}
	entity.Associations = associations
	for _, association := range associations {
		entity.byAssociation[association.Member] = association
	}
	for _, mapping := range cfg.inheritance {
		inheritance := *mapping
		typeColumns, _, err := s.columns(inheritance.Type)
		if err != nil {
			return nil, err
		}
		inheritance.Columns = typeColumns
		for _, column := range typeColumns {
			if _, ok := entity.byMember[column.Member]; ok {
				continue
			}
			shared := *column
			shared.Field = nil
			s.addColumn(entity, &shared)
		}
		entity.Inheritance = append(entity.Inheritance, &inheritance)
	}
	if entity.HasInheritance() && entity.Discriminator == nil {
		return nil, errors.Errorf("entity %v defines inheritance without discriminator", t.Name())
	}
	return entity, nil
}

func (s *Schema) addColumn(entity *Entity, column *Column) {
	entity.Columns = append(entity.Columns, column)
	entity.byMember[column.Member] = column
	if column.PrimaryKey {
		entity.Keys = append(entity.Keys, column)
	}
	if column.Discriminator && entity.Discriminator == nil {
		entity.Discriminator = column
	}
}

func (s *Schema) columns(t reflect.Type) ([]*Column, []*Association, error) {
	fields, err := io.StructFields(t, s.tagName)
	if err != nil {
		return nil, nil, err
	}
	var columns []*Column
	var associations []*Association
	for _, field := range fields {
		if field.IsAssociation() {
			association := &Association{
				Member:    field.Name,
				Type:      field.Type,
				ThisKey:   field.ThisKey,
				OtherKey:  field.OtherKey,
				CanBeNull: field.CanBeNull,
				Field:     field,
			}
			otherType := field.Type
			if otherType.Kind() == reflect.Slice {
				association.IsList = true
				otherType = otherType.Elem()
			}
			association.OtherType = structType(otherType)
			associations = append(associations, association)
			continue
		}
		if !isScalar(field.Type) {
			continue
		}
		columns = append(columns, &Column{
			Name:          field.Column,
			Member:        field.Name,
			Type:          field.Type,
			PrimaryKey:    field.PrimaryKey,
			Discriminator: field.Discriminator,
			Nullable:      field.Nullable || field.Type.Kind() == reflect.Ptr,
			Owner:         t,
			Field:         field,
		})
	}
	return columns, associations, nil
}

var timeType = reflect.TypeOf(time.Time{})

func isScalar(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface:
		return false
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	}
	return true
}

//RegisterEnum registers enum type with value to code map, nil code maps value to NULL
func (s *Schema) RegisterEnum(t reflect.Type, codes map[interface{}]interface{}) *Enum {
	enum := newEnum(t, codes)
	s.mux.Lock()
	defer s.mux.Unlock()
	s.enums[t] = enum
	return enum
}

//Enum returns enum for type
func (s *Schema) Enum(t reflect.Type) *Enum {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.enums[t]
}

//RegisterConverter registers custom converter
func (s *Schema) RegisterConverter(t reflect.Type, converter Converter) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.converters[t] = converter
}

//SetNullValue sets value used when column is NULL
func (s *Schema) SetNullValue(t reflect.Type, value interface{}) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.nullValues[t] = value
}

//NullValue returns value used for NULL, zero value by default
func (s *Schema) NullValue(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	s.mux.RLock()
	value, ok := s.nullValues[t]
	s.mux.RUnlock()
	if ok {
		return value
	}
	if enum := s.Enum(t); enum != nil {
		if value, ok := enum.NullValue(); ok {
			return value
		}
	}
	return reflect.Zero(t).Interface()
}
