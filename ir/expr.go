package ir

import (
	"reflect"
)

//Precedence levels used by renderers
const (
	PrecedenceUnknown            = 0
	PrecedenceLogicalDisjunction = 10
	PrecedenceLogicalConjunction = 20
	PrecedenceLogicalNegation    = 30
	PrecedenceBitwise            = 40
	PrecedenceComparison         = 50
	PrecedenceAdditive           = 60
	PrecedenceSubtraction        = 70
	PrecedenceMultiplicative     = 80
	PrecedencePrimary            = 100
)

//Expr represents scalar expression
type Expr interface {
	CanBeNull() bool
	Precedence() int
	String() string
	exprNode()
}

type (
	//Field represents physical table column
	Field struct {
		Table      *Table
		Name       string
		Member     string
		Type       reflect.Type
		Nullable   bool
		PrimaryKey bool
	}

	//Column represents select list column
	Column struct {
		Parent *Query
		Expr   Expr
		Alias  string
	}

	//Value represents literal
	Value struct {
		Value interface{}
		Type  reflect.Type
	}

	//Parameter represents query parameter
	Parameter struct {
		Name string
		Type reflect.Type
		//Inline is set when value has to be rendered as literal
		Inline bool
	}

	//Binary represents binary expression
	Binary struct {
		X    Expr
		Op   string
		Y    Expr
		Type reflect.Type
		Prec int
	}

	//Function represents function call, CASE is represented as a function
	Function struct {
		Name string
		Args []Expr
		Type reflect.Type
		Prec int
	}

	//DataType represents conversion target
	DataType struct {
		Type reflect.Type
	}

	//NullCheck represents dedicated LEFT JOIN null check column
	NullCheck struct {
		Join *Join
	}
)

func (e *Field) CanBeNull() bool     { return e.Nullable }
func (e *Field) Precedence() int     { return PrecedencePrimary }
func (e *Field) exprNode()           {}
func (e *Column) CanBeNull() bool    { return e.Expr.CanBeNull() }
func (e *Column) Precedence() int    { return PrecedencePrimary }
func (e *Column) exprNode()          {}
func (e *Value) CanBeNull() bool     { return e.Value == nil }
func (e *Value) Precedence() int     { return PrecedencePrimary }
func (e *Value) exprNode()           {}
func (e *Parameter) CanBeNull() bool { return true }
func (e *Parameter) Precedence() int { return PrecedencePrimary }
func (e *Parameter) exprNode()       {}
func (e *Binary) CanBeNull() bool    { return e.X.CanBeNull() || e.Y.CanBeNull() }
func (e *Binary) Precedence() int    { return e.Prec }
func (e *Binary) exprNode()          {}
func (e *DataType) CanBeNull() bool  { return false }
func (e *DataType) Precedence() int  { return PrecedencePrimary }
func (e *DataType) exprNode()        {}
func (e *NullCheck) CanBeNull() bool { return true }
func (e *NullCheck) Precedence() int { return PrecedencePrimary }
func (e *NullCheck) exprNode()       {}

func (e *Function) CanBeNull() bool {
	switch e.Name {
	case "Count", "EXISTS":
		return false
	}
	return true
}
func (e *Function) Precedence() int { return e.Prec }
func (e *Function) exprNode()       {}

//NewBinary creates binary expression
func NewBinary(x Expr, op string, y Expr, t reflect.Type, precedence int) *Binary {
	return &Binary{X: x, Op: op, Y: y, Type: t, Prec: precedence}
}

//NewFunction creates function
func NewFunction(name string, t reflect.Type, args ...Expr) *Function {
	return &Function{Name: name, Args: args, Type: t, Prec: PrecedencePrimary}
}

//NewValue creates value
func NewValue(value interface{}) *Value {
	return &Value{Value: value, Type: reflect.TypeOf(value)}
}

//Star returns all columns marker of a table
func (t *Table) Star() *Field {
	if t.all == nil {
		t.all = &Field{Table: t, Name: "*"}
	}
	return t.all
}

//Equal returns true if expressions are structurally equal
func Equal(x, y Expr) bool {
	if x == y {
		return true
	}
	switch a := x.(type) {
	case *Column:
		b, ok := y.(*Column)
		return ok && a.Parent == b.Parent && Equal(a.Expr, b.Expr)
	case *Value:
		b, ok := y.(*Value)
		return ok && a.Type == b.Type && reflect.DeepEqual(a.Value, b.Value)
	case *Binary:
		b, ok := y.(*Binary)
		return ok && a.Op == b.Op && Equal(a.X, b.X) && Equal(a.Y, b.Y)
	case *Function:
		b, ok := y.(*Function)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *NullCheck:
		b, ok := y.(*NullCheck)
		return ok && a.Join == b.Join
	}
	return false
}
