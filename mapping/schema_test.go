package mapping

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sqlq/types"
)

type Vehicle struct {
	ID   int    `sqlx:"name=id,primaryKey=true"`
	Kind string `sqlx:"name=kind,discriminator=true"`
}

type Car struct {
	ID    int    `sqlx:"name=id,primaryKey=true"`
	Kind  string `sqlx:"name=kind,discriminator=true"`
	Doors int    `sqlx:"name=doors"`
}

type Truck struct {
	ID   int     `sqlx:"name=id,primaryKey=true"`
	Kind string  `sqlx:"name=kind,discriminator=true"`
	Load float64 `sqlx:"name=load"`
}

type Customer struct {
	ID     int      `sqlx:"name=id,primaryKey=true"`
	Name   string   `sqlx:"name=name"`
	City   *string  `sqlx:"name=city"`
	Orders []*Order `sqlx:"thisKey=ID,otherKey=CustomerID"`
}

type Order struct {
	ID         int       `sqlx:"name=id,primaryKey=true"`
	CustomerID int       `sqlx:"name=customer_id"`
	Customer   *Customer `sqlx:"thisKey=CustomerID,otherKey=ID,canBeNull=true"`
}

type Color int

const (
	Unknown Color = iota
	Red
	Green
)

func columnNames(columns []*Column) []string {
	var result []string
	for _, column := range columns {
		result = append(result, column.Name)
	}
	return result
}

func TestSchema_Entity(t *testing.T) {
	schema := NewSchema("").
		Register(reflect.TypeOf(Customer{}), WithTable("customer")).
		Register(reflect.TypeOf(&Order{}))

	customer, err := schema.Entity(reflect.TypeOf(&Customer{}))
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, "customer", customer.Table)
	assert.EqualValues(t, []string{"id", "name", "city"}, columnNames(customer.Columns))
	assert.EqualValues(t, []string{"id"}, columnNames(customer.Keys))
	assert.True(t, customer.Column("City").Nullable)
	assert.Nil(t, customer.Column("Orders"))

	orders := customer.Association("Orders")
	if assert.NotNil(t, orders) {
		assert.True(t, orders.IsList)
		assert.EqualValues(t, reflect.TypeOf(Order{}), orders.OtherType)
		assert.EqualValues(t, []string{"ID"}, orders.ThisKey)
		assert.EqualValues(t, []string{"CustomerID"}, orders.OtherKey)
	}

	order, err := schema.Entity(reflect.TypeOf(Order{}))
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, "Order", order.Table)
	owner := order.Association("Customer")
	if assert.NotNil(t, owner) {
		assert.False(t, owner.IsList)
		assert.True(t, owner.CanBeNull)
	}

	again, _ := schema.Entity(reflect.TypeOf(Customer{}))
	assert.True(t, again == customer)

	_, err = schema.Entity(reflect.TypeOf(Vehicle{}))
	assert.NotNil(t, err)
	assert.False(t, schema.IsEntity(reflect.TypeOf(Vehicle{})))
}

func TestSchema_Entity_Inheritance(t *testing.T) {
	carType, truckType := reflect.TypeOf(Car{}), reflect.TypeOf(&Truck{})
	schema := NewSchema("sqlx").Register(reflect.TypeOf(Vehicle{}), WithTable("vehicle"),
		WithInheritance("car", carType, true),
		WithInheritance("truck", truckType, false))

	assert.True(t, schema.IsEntity(carType))
	entity, err := schema.Entity(reflect.TypeOf(Vehicle{}))
	if !assert.Nil(t, err) {
		return
	}
	car, err := schema.Entity(carType)
	assert.Nil(t, err)
	assert.True(t, car == entity)

	assert.EqualValues(t, []string{"id", "kind", "doors", "load"}, columnNames(entity.Columns))
	assert.EqualValues(t, "kind", entity.Discriminator.Name)
	assert.EqualValues(t, "car", entity.InheritanceFor(carType).Code)
	assert.EqualValues(t, carType, entity.Default().Type)
	assert.EqualValues(t, []string{"id", "kind", "load"}, columnNames(entity.ColumnsFor(truckType)))
	assert.EqualValues(t, []string{"id", "kind"}, columnNames(entity.ColumnsFor(reflect.TypeOf(Vehicle{}))))

	invalid := NewSchema("sqlx").Register(reflect.TypeOf(Customer{}), WithInheritance(1, reflect.TypeOf(Order{}), true))
	_, err = invalid.Entity(reflect.TypeOf(Customer{}))
	assert.NotNil(t, err)
}

func TestColumn_Value(t *testing.T) {
	schema := NewSchema("sqlx").Register(reflect.TypeOf(Customer{}))
	entity, err := schema.Entity(reflect.TypeOf(Customer{}))
	if !assert.Nil(t, err) {
		return
	}
	name := entity.Column("Name")
	assert.EqualValues(t, "Bob", name.Value(&Customer{Name: "Bob"}))
	assert.EqualValues(t, "Ann", name.Value(Customer{Name: "Ann"}))
	assert.Nil(t, name.Value((*Customer)(nil)))
	assert.Nil(t, name.Value(nil))

	value, ptr := entity.New(reflect.TypeOf(Customer{}))
	entity.Column("ID").Field.Set(ptr, 5)
	assert.EqualValues(t, &Customer{ID: 5}, value)
}

func TestSchema_Converter(t *testing.T) {
	schema := NewSchema("sqlx")
	schema.RegisterEnum(reflect.TypeOf(Color(0)), map[interface{}]interface{}{Red: "R", Green: "G", Unknown: nil})
	schema.SetNullValue(reflect.TypeOf(""), "n/a")
	schema.RegisterConverter(reflect.TypeOf(float32(0)), func(value interface{}) (interface{}, error) {
		return float32(42), nil
	})
	three := 3
	var testCases = []struct {
		description string
		t           reflect.Type
		value       interface{}
		expect      interface{}
	}{
		{description: "int from int64", t: reflect.TypeOf(0), value: int64(7), expect: 7},
		{description: "int from text", t: reflect.TypeOf(int32(0)), value: []byte("12"), expect: int32(12)},
		{description: "null int", t: reflect.TypeOf(0), value: nil, expect: 0},
		{description: "null string uses null value", t: reflect.TypeOf(""), value: nil, expect: "n/a"},
		{description: "string from bytes", t: reflect.TypeOf(""), value: []byte("abc"), expect: "abc"},
		{description: "float", t: reflect.TypeOf(0.0), value: 2.5, expect: 2.5},
		{description: "pointer", t: reflect.TypeOf(&three), value: int64(3), expect: &three},
		{description: "nil pointer", t: reflect.TypeOf(&three), value: nil, expect: (*int)(nil)},
		{description: "bit bool", t: reflect.TypeOf(types.Bool(false)), value: []byte{1}, expect: types.Bool(true)},
		{description: "enum code", t: reflect.TypeOf(Color(0)), value: "G", expect: Green},
		{description: "enum byte code", t: reflect.TypeOf(Color(0)), value: []byte("R"), expect: Red},
		{description: "enum null", t: reflect.TypeOf(Color(0)), value: nil, expect: Unknown},
		{description: "custom converter", t: reflect.TypeOf(float32(0)), value: 1.0, expect: float32(42)},
		{description: "time from text", t: reflect.TypeOf(time.Time{}), value: []byte("2024-01-02 03:04:05"), expect: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	for _, testCase := range testCases {
		converter, ok := schema.Converter(testCase.t)
		if !assert.True(t, ok, testCase.description) {
			continue
		}
		actual, err := converter(testCase.value)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}

	_, ok := schema.Converter(reflect.TypeOf(Customer{}))
	assert.False(t, ok)
}

func TestEnum(t *testing.T) {
	enum := newEnum(reflect.TypeOf(Color(0)), map[interface{}]interface{}{Red: 1, Green: 2})
	code, err := enum.Code(Green)
	assert.Nil(t, err)
	assert.EqualValues(t, 2, code)

	value, err := enum.Value(int64(1))
	assert.Nil(t, err)
	assert.EqualValues(t, Red, value)

	value, err = enum.Value(nil)
	assert.Nil(t, err)
	assert.EqualValues(t, Unknown, value)

	_, err = enum.Value(int64(9))
	assert.NotNil(t, err)
	_, err = enum.Code(Color(9))
	assert.NotNil(t, err)
}
