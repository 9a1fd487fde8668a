package expr

import (
	"reflect"
)

//Kind represents node kind
type Kind int

const (
	KindConstant Kind = iota
	KindParameter
	KindHostParam
	KindMember
	KindCall
	KindBinary
	KindUnary
	KindConditional
	KindNew
	KindMemberInit
	KindNewArray
	KindLambda
	KindTypeIs
	KindTable
)

//Call owners
const (
	OwnerQueryable  = "queryable"
	OwnerEnumerable = "enumerable"
	OwnerStrings    = "strings"
	OwnerTime       = "time"
	OwnerMath       = "math"
	OwnerSQL        = "sql"
	OwnerHost       = "host"
)

//Op represents binary or unary operator
type Op string

const (
	OpAdd            = Op("+")
	OpSub            = Op("-")
	OpMul            = Op("*")
	OpDiv            = Op("/")
	OpMod            = Op("%")
	OpBitAnd         = Op("&")
	OpBitOr          = Op("|")
	OpBitXor         = Op("^")
	OpCoalesce       = Op("??")
	OpAnd            = Op("&&")
	OpOr             = Op("||")
	OpEqual          = Op("==")
	OpNotEqual       = Op("!=")
	OpLess           = Op("<")
	OpLessOrEqual    = Op("<=")
	OpGreater        = Op(">")
	OpGreaterOrEqual = Op(">=")
	OpNot            = Op("!")
	OpNegate         = Op("neg")
	OpConvert        = Op("convert")
)

//IsComparison returns true for comparison operators
func (o Op) IsComparison() bool {
	switch o {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		return true
	}
	return false
}

//Node represents host expression node
type Node interface {
	Kind() Kind
	Type() reflect.Type
	String() string
}

type (
	//Constant represents literal value
	Constant struct {
		Value interface{}
		RType reflect.Type
	}

	//Parameter represents lambda parameter
	Parameter struct {
		Name  string
		RType reflect.Type
		Group *GroupType
	}

	//HostParam represents external named parameter, bound by position in the parameter array
	HostParam struct {
		Name  string
		Index int
		RType reflect.Type
	}

	//Member represents field access
	Member struct {
		X     Node
		Name  string
		RType reflect.Type
	}

	//Call represents method or function call
	Call struct {
		Object Node
		Owner  string
		Method string
		Args   []Node
		RType  reflect.Type
		Fn     func(args []interface{}) (interface{}, error)
	}

	//Binary represents binary expression
	Binary struct {
		Op    Op
		X     Node
		Y     Node
		RType reflect.Type
	}

	//Unary represents unary expression
	Unary struct {
		Op    Op
		X     Node
		RType reflect.Type
	}

	//Conditional represents ternary expression
	Conditional struct {
		Test Node
		Then Node
		Else Node
	}

	//New represents anonymous struct construction with positional members
	New struct {
		RType   reflect.Type
		Members []string
		Args    []Node
	}

	//MemberInit represents explicit initializer of a named struct
	MemberInit struct {
		RType   reflect.Type
		Members []string
		Args    []Node
	}

	//NewArray represents slice literal
	NewArray struct {
		RType reflect.Type
		Items []Node
	}

	//Lambda represents lambda
	Lambda struct {
		Params []*Parameter
		Body   Node
	}

	//TypeIs represents dynamic type test
	TypeIs struct {
		X      Node
		Target reflect.Type
	}

	//Table represents table sequence root
	Table struct {
		Entity reflect.Type
	}
)

func (n *Constant) Kind() Kind            { return KindConstant }
func (n *Constant) Type() reflect.Type    { return n.RType }
func (n *Parameter) Kind() Kind           { return KindParameter }
func (n *Parameter) Type() reflect.Type   { return n.RType }
func (n *HostParam) Kind() Kind           { return KindHostParam }
func (n *HostParam) Type() reflect.Type   { return n.RType }
func (n *Member) Kind() Kind              { return KindMember }
func (n *Member) Type() reflect.Type      { return n.RType }
func (n *Call) Kind() Kind                { return KindCall }
func (n *Call) Type() reflect.Type        { return n.RType }
func (n *Binary) Kind() Kind              { return KindBinary }
func (n *Binary) Type() reflect.Type      { return n.RType }
func (n *Unary) Kind() Kind               { return KindUnary }
func (n *Unary) Type() reflect.Type       { return n.RType }
func (n *Conditional) Kind() Kind         { return KindConditional }
func (n *Conditional) Type() reflect.Type { return n.Then.Type() }
func (n *New) Kind() Kind                 { return KindNew }
func (n *New) Type() reflect.Type         { return n.RType }
func (n *MemberInit) Kind() Kind          { return KindMemberInit }
func (n *MemberInit) Type() reflect.Type  { return n.RType }
func (n *NewArray) Kind() Kind            { return KindNewArray }
func (n *NewArray) Type() reflect.Type    { return n.RType }
func (n *Lambda) Kind() Kind              { return KindLambda }
func (n *Lambda) Type() reflect.Type      { return n.Body.Type() }
func (n *TypeIs) Kind() Kind              { return KindTypeIs }
func (n *TypeIs) Type() reflect.Type      { return boolType }
func (n *Table) Kind() Kind               { return KindTable }
func (n *Table) Type() reflect.Type       { return reflect.SliceOf(n.Entity) }

//IsNull returns true if constant is nil
func (n *Constant) IsNull() bool {
	if n.Value == nil {
		return true
	}
	v := reflect.ValueOf(n.Value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

//Param returns lambda parameter by position
func (n *Lambda) Param(i int) *Parameter {
	if i < len(n.Params) {
		return n.Params[i]
	}
	return nil
}

//IsSequence returns true if node is a sequence operator call
func (n *Call) IsSequence() bool {
	return n.Owner == OwnerQueryable || n.Owner == OwnerEnumerable
}

//Source returns sequence call source
func (n *Call) Source() Node {
	if len(n.Args) == 0 {
		return nil
	}
	return n.Args[0]
}

//Lambda returns argument as lambda
func (n *Call) Lambda(i int) *Lambda {
	if i >= len(n.Args) {
		return nil
	}
	ret, _ := n.Args[i].(*Lambda)
	return ret
}

//Is returns true if node is a sequence call with one of supplied names
func Is(n Node, methods ...string) bool {
	call, ok := n.(*Call)
	if !ok || !call.IsSequence() {
		return false
	}
	for _, method := range methods {
		if call.Method == method {
			return true
		}
	}
	return false
}
