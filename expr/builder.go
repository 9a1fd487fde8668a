package expr

import (
	"fmt"
	"reflect"
)

//Const creates constant
func Const(value interface{}) *Constant {
	return &Constant{Value: value, RType: reflect.TypeOf(value)}
}

//ConstOf creates typed constant
func ConstOf(value interface{}, t reflect.Type) *Constant {
	return &Constant{Value: value, RType: t}
}

//Null creates typed nil constant
func Null(t reflect.Type) *Constant {
	return &Constant{RType: t}
}

//Param creates host parameter
func Param(name string, index int, t reflect.Type) *HostParam {
	return &HostParam{Name: name, Index: index, RType: t}
}

//Field creates member access
func Field(x Node, name string) *Member {
	if p, ok := x.(*Parameter); ok && p.Group != nil && name == "Key" {
		return &Member{X: x, Name: name, RType: p.Group.Key}
	}
	return &Member{X: x, Name: name, RType: memberType(x.Type(), name)}
}

//Key creates grouping key access
func Key(g Node) *Member {
	return Field(g, "Key")
}

//Path creates chained member access
func Path(x Node, names ...string) Node {
	for _, name := range names {
		x = Field(x, name)
	}
	return x
}

func binary(op Op, x, y Node, t reflect.Type) *Binary {
	return &Binary{Op: op, X: x, Y: y, RType: t}
}

func Eq(x, y Node) *Binary  { return binary(OpEqual, x, y, boolType) }
func Ne(x, y Node) *Binary  { return binary(OpNotEqual, x, y, boolType) }
func Lt(x, y Node) *Binary  { return binary(OpLess, x, y, boolType) }
func Le(x, y Node) *Binary  { return binary(OpLessOrEqual, x, y, boolType) }
func Gt(x, y Node) *Binary  { return binary(OpGreater, x, y, boolType) }
func Ge(x, y Node) *Binary  { return binary(OpGreaterOrEqual, x, y, boolType) }
func Add(x, y Node) *Binary { return binary(OpAdd, x, y, x.Type()) }
func Sub(x, y Node) *Binary { return binary(OpSub, x, y, x.Type()) }
func Mul(x, y Node) *Binary { return binary(OpMul, x, y, x.Type()) }
func Div(x, y Node) *Binary { return binary(OpDiv, x, y, x.Type()) }
func Mod(x, y Node) *Binary { return binary(OpMod, x, y, x.Type()) }

//Coalesce creates x ?? y
func Coalesce(x, y Node) *Binary {
	return binary(OpCoalesce, x, y, y.Type())
}

//And creates conjunction of supplied nodes
func And(x Node, ys ...Node) Node {
	for _, y := range ys {
		x = binary(OpAnd, x, y, boolType)
	}
	return x
}

//Or creates disjunction of supplied nodes
func Or(x Node, ys ...Node) Node {
	for _, y := range ys {
		x = binary(OpOr, x, y, boolType)
	}
	return x
}

//Not creates negation
func Not(x Node) *Unary {
	return &Unary{Op: OpNot, X: x, RType: boolType}
}

//Neg creates arithmetic negation
func Neg(x Node) *Unary {
	return &Unary{Op: OpNegate, X: x, RType: x.Type()}
}

//Convert creates type conversion
func Convert(x Node, t reflect.Type) *Unary {
	return &Unary{Op: OpConvert, X: x, RType: t}
}

//Cond creates conditional
func Cond(test, then, els Node) *Conditional {
	return &Conditional{Test: test, Then: then, Else: els}
}

//IsType creates dynamic type test
func IsType(x Node, t reflect.Type) *TypeIs {
	return &TypeIs{X: x, Target: t}
}

//Array creates slice literal
func Array(elem reflect.Type, items ...Node) *NewArray {
	return &NewArray{RType: reflect.SliceOf(elem), Items: items}
}

//Struct creates anonymous struct construction from name, node pairs
func Struct(pairs ...interface{}) *New {
	members, args := splitPairs(pairs)
	fields := make([]reflect.StructField, len(members))
	for i, name := range members {
		fields[i] = reflect.StructField{Name: name, Type: args[i].Type()}
	}
	return &New{RType: reflect.StructOf(fields), Members: members, Args: args}
}

//NewOf creates named struct construction from name, node pairs
func NewOf(t reflect.Type, pairs ...interface{}) *New {
	members, args := splitPairs(pairs)
	return &New{RType: t, Members: members, Args: args}
}

//Init creates explicit member initializer
func Init(t reflect.Type, pairs ...interface{}) *MemberInit {
	members, args := splitPairs(pairs)
	return &MemberInit{RType: t, Members: members, Args: args}
}

func splitPairs(pairs []interface{}) ([]string, []Node) {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("expected name, node pairs, but had %v items", len(pairs)))
	}
	members := make([]string, 0, len(pairs)/2)
	args := make([]Node, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		members = append(members, pairs[i].(string))
		args = append(args, pairs[i+1].(Node))
	}
	return members, args
}

func call(owner, method string, t reflect.Type, object Node, args ...Node) *Call {
	return &Call{Owner: owner, Method: method, Object: object, Args: args, RType: t}
}

//Contains creates string contains test
func Contains(x, pattern Node) *Call {
	return call(OwnerStrings, "Contains", boolType, x, pattern)
}

//StartsWith creates string prefix test
func StartsWith(x, pattern Node) *Call {
	return call(OwnerStrings, "StartsWith", boolType, x, pattern)
}

//EndsWith creates string suffix test
func EndsWith(x, pattern Node) *Call {
	return call(OwnerStrings, "EndsWith", boolType, x, pattern)
}

func Upper(x Node) *Call { return call(OwnerStrings, "ToUpper", stringType, x) }
func Lower(x Node) *Call { return call(OwnerStrings, "ToLower", stringType, x) }
func Trim(x Node) *Call  { return call(OwnerStrings, "TrimSpace", stringType, x) }
func Len(x Node) *Call   { return call(OwnerStrings, "Len", intType, x) }

//Substring creates substring with zero based start
func Substring(x, start, length Node) *Call {
	return call(OwnerStrings, "Substring", stringType, x, start, length)
}

//IndexOf creates zero based substring position, -1 if not found
func IndexOf(x, sub Node) *Call {
	return call(OwnerStrings, "IndexOf", intType, x, sub)
}

func Year(x Node) *Call  { return call(OwnerTime, "Year", intType, x) }
func Month(x Node) *Call { return call(OwnerTime, "Month", intType, x) }
func Day(x Node) *Call   { return call(OwnerTime, "Day", intType, x) }

func Abs(x Node) *Call     { return call(OwnerMath, "Abs", x.Type(), nil, x) }
func Round(x Node) *Call   { return call(OwnerMath, "Round", x.Type(), nil, x) }
func Floor(x Node) *Call   { return call(OwnerMath, "Floor", x.Type(), nil, x) }
func Ceiling(x Node) *Call { return call(OwnerMath, "Ceiling", x.Type(), nil, x) }

//SQL creates server side only function call
func SQL(name string, t reflect.Type, args ...Node) *Call {
	return call(OwnerSQL, name, t, nil, args...)
}

//HostCall creates host side function call
func HostCall(name string, t reflect.Type, fn func(args []interface{}) (interface{}, error), args ...Node) *Call {
	ret := call(OwnerHost, name, t, nil, args...)
	ret.Fn = fn
	return ret
}

//In creates sequence contains test
func In(seq Node, item Node) *Call {
	return call(OwnerEnumerable, "Contains", boolType, nil, seq, item)
}
