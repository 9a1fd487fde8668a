package expr

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
)

//Eval evaluates host computable node with supplied parameters
func Eval(n Node, params []interface{}) (interface{}, error) {
	switch actual := n.(type) {
	case *Constant:
		return actual.Value, nil
	case *HostParam:
		if actual.Index < 0 || actual.Index >= len(params) {
			return nil, errors.Errorf("parameter %v index %v out of range: %v", actual.Name, actual.Index, len(params))
		}
		return params[actual.Index], nil
	case *Member:
		x, err := Eval(actual.X, params)
		if err != nil {
			return nil, err
		}
		return MemberValue(x, actual.Name)
	case *Binary:
		if actual.Op == OpAnd || actual.Op == OpOr {
			x, err := Eval(actual.X, params)
			if err != nil {
				return nil, err
			}
			xb, _ := x.(bool)
			if actual.Op == OpAnd && !xb {
				return false, nil
			}
			if actual.Op == OpOr && xb {
				return true, nil
			}
			return Eval(actual.Y, params)
		}
		x, err := Eval(actual.X, params)
		if err != nil {
			return nil, err
		}
		y, err := Eval(actual.Y, params)
		if err != nil {
			return nil, err
		}
		return ApplyBinary(actual.Op, x, y, actual.RType)
	case *Unary:
		x, err := Eval(actual.X, params)
		if err != nil {
			return nil, err
		}
		return ApplyUnary(actual.Op, x, actual.RType)
	case *Conditional:
		test, err := Eval(actual.Test, params)
		if err != nil {
			return nil, err
		}
		if b, _ := test.(bool); b {
			return Eval(actual.Then, params)
		}
		return Eval(actual.Else, params)
	case *Call:
		return evalCall(actual, params)
	case *NewArray:
		slice := reflect.MakeSlice(actual.RType, 0, len(actual.Items))
		for _, item := range actual.Items {
			value, err := Eval(item, params)
			if err != nil {
				return nil, err
			}
			slice = reflect.Append(slice, valueOf(value, actual.RType.Elem()))
		}
		return slice.Interface(), nil
	case *New:
		return evalStruct(actual.RType, actual.Members, actual.Args, params)
	case *MemberInit:
		return evalStruct(actual.RType, actual.Members, actual.Args, params)
	case *TypeIs:
		x, err := Eval(actual.X, params)
		if err != nil {
			return nil, err
		}
		return x != nil && reflect.TypeOf(x) == actual.Target, nil
	}
	return nil, errors.Errorf("unable to evaluate %v on host", n)
}

//Construct creates struct or pointer to struct value of t from member values
func Construct(t reflect.Type, members []string, values []interface{}) (interface{}, error) {
	structType := StructType(t)
	if structType == nil {
		return nil, errors.Errorf("unable to construct non struct type: %v", t)
	}
	ptr := reflect.New(structType)
	for i, name := range members {
		field := ptr.Elem().FieldByName(name)
		if !field.IsValid() {
			return nil, errors.Errorf("unknown member %v.%v", structType.Name(), name)
		}
		if values[i] == nil {
			continue
		}
		field.Set(valueOf(values[i], field.Type()))
	}
	if t.Kind() == reflect.Ptr {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}

func evalStruct(t reflect.Type, members []string, args []Node, params []interface{}) (interface{}, error) {
	values := make([]interface{}, len(args))
	for i, arg := range args {
		value, err := Eval(arg, params)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return Construct(t, members, values)
}

//MemberValue returns struct member value, nil for nil owner
func MemberValue(owner interface{}, name string) (interface{}, error) {
	if owner == nil {
		return nil, nil
	}
	if g, ok := owner.(Grouping); ok && name == "Key" {
		return g.Key(), nil
	}
	v := reflect.ValueOf(owner)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.Errorf("unable to access %v on %T", name, owner)
	}
	field := v.FieldByName(name)
	if !field.IsValid() {
		return nil, errors.Errorf("unknown member %v on %T", name, owner)
	}
	return field.Interface(), nil
}

func valueOf(value interface{}, t reflect.Type) reflect.Value {
	if value == nil {
		return reflect.Zero(t)
	}
	v := reflect.ValueOf(value)
	if v.Type() == t {
		return v
	}
	if v.Type().AssignableTo(t) {
		return v
	}
	if t.Kind() == reflect.Ptr && v.Type().ConvertibleTo(t.Elem()) {
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(v.Convert(t.Elem()))
		return ptr
	}
	if v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Type().ConvertibleTo(t) {
		return v.Elem().Convert(t)
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t)
	}
	return v
}

//ValueOf converts value to supplied type when possible
func ValueOf(value interface{}, t reflect.Type) interface{} {
	if t == nil || value == nil {
		return value
	}
	return valueOf(value, t).Interface()
}

func evalCall(call *Call, params []interface{}) (interface{}, error) {
	var args []interface{}
	if call.Object != nil {
		value, err := Eval(call.Object, params)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	for _, arg := range call.Args {
		value, err := Eval(arg, params)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	return ApplyCall(call, args)
}

//ApplyCall applies host computable call to evaluated arguments, object if any goes first
func ApplyCall(call *Call, args []interface{}) (interface{}, error) {
	switch call.Owner {
	case OwnerHost:
		if call.Fn == nil {
			return nil, errors.Errorf("host function %v was nil", call.Method)
		}
		return call.Fn(args)
	case OwnerStrings:
		return applyStrings(call.Method, args)
	case OwnerTime:
		t, ok := deref(args[0]).(time.Time)
		if !ok {
			return nil, errors.Errorf("expected time.Time, but had %T", args[0])
		}
		switch call.Method {
		case "Year":
			return t.Year(), nil
		case "Month":
			return int(t.Month()), nil
		case "Day":
			return t.Day(), nil
		}
	case OwnerMath:
		f, ok := asFloat(args[0])
		if !ok {
			return nil, errors.Errorf("expected number, but had %T", args[0])
		}
		var ret float64
		switch call.Method {
		case "Abs":
			ret = math.Abs(f)
		case "Round":
			ret = math.Round(f)
		case "Floor":
			ret = math.Floor(f)
		case "Ceiling":
			ret = math.Ceil(f)
		default:
			return nil, errors.Errorf("unsupported math function %v", call.Method)
		}
		return ValueOf(ret, call.RType), nil
	case OwnerEnumerable:
		if call.Method == "Contains" && len(args) == 2 {
			items := reflect.ValueOf(args[0])
			if items.Kind() != reflect.Slice && items.Kind() != reflect.Array {
				break
			}
			for i := 0; i < items.Len(); i++ {
				if Equal(items.Index(i).Interface(), args[1]) {
					return true, nil
				}
			}
			return false, nil
		}
	}
	return nil, errors.Errorf("unable to evaluate %v on host", call)
}

func applyStrings(method string, args []interface{}) (interface{}, error) {
	s, ok := deref(args[0]).(string)
	if !ok {
		return nil, errors.Errorf("expected string, but had %T", args[0])
	}
	arg := func(i int) string {
		ret, _ := deref(args[i]).(string)
		return ret
	}
	switch method {
	case "Contains":
		return strings.Contains(s, arg(1)), nil
	case "StartsWith":
		return strings.HasPrefix(s, arg(1)), nil
	case "EndsWith":
		return strings.HasSuffix(s, arg(1)), nil
	case "ToUpper":
		return strings.ToUpper(s), nil
	case "ToLower":
		return strings.ToLower(s), nil
	case "TrimSpace":
		return strings.TrimSpace(s), nil
	case "Len":
		return len(s), nil
	case "IndexOf":
		return strings.Index(s, arg(1)), nil
	case "Substring":
		return substring(s, deref(args[1]), deref(args[2]))
	}
	return nil, errors.Errorf("unsupported string function %v", method)
}

//substring returns s[start:start+length] clamped to s, negative bounds are rejected
func substring(s string, startValue, lengthValue interface{}) (interface{}, error) {
	start, ok := asInt(startValue)
	if !ok {
		return nil, errors.Errorf("invalid substring start: %v", startValue)
	}
	length, ok := asInt(lengthValue)
	if !ok {
		return nil, errors.Errorf("invalid substring length: %v", lengthValue)
	}
	if start < 0 || length < 0 {
		return nil, errors.Errorf("substring bounds out of range: start %v, length %v", start, length)
	}
	size := int64(len(s))
	if start >= size {
		return "", nil
	}
	end := size
	if length < size-start {
		end = start + length
	}
	return s[int(start):int(end)], nil
}

func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

//ApplyUnary applies unary operator
func ApplyUnary(op Op, x interface{}, t reflect.Type) (interface{}, error) {
	switch op {
	case OpNot:
		if x == nil {
			return nil, nil
		}
		b, ok := x.(bool)
		if !ok {
			if i, ok := asInt(x); ok {
				return ValueOf(^i, t), nil
			}
			return nil, errors.Errorf("unable to negate %T", x)
		}
		return !b, nil
	case OpNegate:
		if x == nil {
			return nil, nil
		}
		if isInt(x) {
			i, _ := asInt(x)
			return ValueOf(-i, t), nil
		}
		f, ok := asFloat(x)
		if !ok {
			return nil, errors.Errorf("unable to negate %T", x)
		}
		return ValueOf(-f, t), nil
	case OpConvert:
		return ValueOf(x, t), nil
	}
	return nil, errors.Errorf("unsupported unary operator: %v", op)
}

//ApplyBinary applies binary operator
func ApplyBinary(op Op, x, y interface{}, t reflect.Type) (interface{}, error) {
	x, y = deref(x), deref(y)
	switch op {
	case OpCoalesce:
		if x == nil {
			return y, nil
		}
		return x, nil
	case OpAnd, OpOr:
		xb, _ := x.(bool)
		yb, _ := y.(bool)
		if op == OpAnd {
			return xb && yb, nil
		}
		return xb || yb, nil
	case OpEqual:
		return Equal(x, y), nil
	case OpNotEqual:
		return !Equal(x, y), nil
	case OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		if x == nil || y == nil {
			return false, nil
		}
		cmp, err := compare(x, y)
		if err != nil {
			return nil, err
		}
		switch op {
		case OpLess:
			return cmp < 0, nil
		case OpLessOrEqual:
			return cmp <= 0, nil
		case OpGreater:
			return cmp > 0, nil
		}
		return cmp >= 0, nil
	}
	if x == nil || y == nil {
		return nil, nil
	}
	if xs, ok := x.(string); ok && op == OpAdd {
		return xs + fmt.Sprint(y), nil
	}
	if isInt(x) && isInt(y) {
		xi, _ := asInt(x)
		yi, _ := asInt(y)
		var ret int64
		switch op {
		case OpAdd:
			ret = xi + yi
		case OpSub:
			ret = xi - yi
		case OpMul:
			ret = xi * yi
		case OpDiv:
			if yi == 0 {
				return nil, errors.New("division by zero")
			}
			ret = xi / yi
		case OpMod:
			if yi == 0 {
				return nil, errors.New("division by zero")
			}
			ret = xi % yi
		case OpBitAnd:
			ret = xi & yi
		case OpBitOr:
			ret = xi | yi
		case OpBitXor:
			ret = xi ^ yi
		default:
			return nil, errors.Errorf("unsupported operator %v", op)
		}
		return ValueOf(ret, t), nil
	}
	if xb, ok := x.(bool); ok {
		yb, _ := y.(bool)
		switch op {
		case OpBitAnd:
			return xb && yb, nil
		case OpBitOr:
			return xb || yb, nil
		case OpBitXor:
			return xb != yb, nil
		}
	}
	xf, ok1 := asFloat(x)
	yf, ok2 := asFloat(y)
	if !ok1 || !ok2 {
		return nil, errors.Errorf("unsupported operands %T %v %T", x, op, y)
	}
	var ret float64
	switch op {
	case OpAdd:
		ret = xf + yf
	case OpSub:
		ret = xf - yf
	case OpMul:
		ret = xf * yf
	case OpDiv:
		ret = xf / yf
	case OpMod:
		ret = math.Mod(xf, yf)
	default:
		return nil, errors.Errorf("unsupported operator %v", op)
	}
	return ValueOf(ret, t), nil
}

//Equal compares host values, numbers are compared by value
func Equal(x, y interface{}) bool {
	x, y = deref(x), deref(y)
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if isNumber(x) && isNumber(y) {
		if isInt(x) && isInt(y) {
			xi, _ := asInt(x)
			yi, _ := asInt(y)
			return xi == yi
		}
		xf, _ := asFloat(x)
		yf, _ := asFloat(y)
		return xf == yf
	}
	if xt, ok := x.(time.Time); ok {
		if yt, ok := y.(time.Time); ok {
			return xt.Equal(yt)
		}
	}
	return reflect.DeepEqual(x, y)
}

func compare(x, y interface{}) (int, error) {
	if isNumber(x) && isNumber(y) {
		xf, _ := asFloat(x)
		yf, _ := asFloat(y)
		switch {
		case xf < yf:
			return -1, nil
		case xf > yf:
			return 1, nil
		}
		return 0, nil
	}
	if xs, ok := x.(string); ok {
		if ys, ok := y.(string); ok {
			return strings.Compare(xs, ys), nil
		}
	}
	if xt, ok := x.(time.Time); ok {
		if yt, ok := y.(time.Time); ok {
			return xt.Compare(yt), nil
		}
	}
	return 0, errors.Errorf("unable to compare %T with %T", x, y)
}

func isNumber(v interface{}) bool {
	_, ok := asFloat(v)
	return ok
}

func isInt(v interface{}) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func asInt(v interface{}) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
