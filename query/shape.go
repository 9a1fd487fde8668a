package query

import (
	"fmt"
	"hash"
	"reflect"
	"strconv"

	"github.com/minio/highwayhash"
	"github.com/viant/sqlq/expr"
)

var shapeKey = []byte("sqlq:query:shape:key:0123456789a")

//Shape returns structural hash of a query expression, host parameter values do not contribute, constants do
func Shape(node expr.Node) (uint64, error) {
	hash, err := highwayhash.New64(shapeKey)
	if err != nil {
		return 0, err
	}
	encoder := &shapeEncoder{hash: hash, params: map[*expr.Parameter]int{}}
	encoder.encode(node)
	return hash.Sum64(), nil
}

type shapeEncoder struct {
	hash   hash.Hash64
	params map[*expr.Parameter]int
}

func (e *shapeEncoder) write(parts ...string) {
	for _, part := range parts {
		_, _ = e.hash.Write([]byte(part))
		_, _ = e.hash.Write([]byte{0})
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.PkgPath() + "/" + t.String()
}

func (e *shapeEncoder) encode(node expr.Node) {
	if node == nil {
		e.write("nil")
		return
	}
	e.write(strconv.Itoa(int(node.Kind())))
	switch actual := node.(type) {
	case *expr.Constant:
		e.write(typeName(actual.RType), fmt.Sprintf("%T:%v", actual.Value, dereference(actual.Value)))
	case *expr.Parameter:
		position, ok := e.params[actual]
		if !ok {
			position = -1
		}
		e.write(strconv.Itoa(position), typeName(actual.RType))
	case *expr.HostParam:
		e.write(strconv.Itoa(actual.Index), typeName(actual.RType))
	case *expr.Member:
		e.write(actual.Name, typeName(actual.RType))
		e.encode(actual.X)
	case *expr.Call:
		e.write(actual.Owner, actual.Method, typeName(actual.RType), strconv.Itoa(len(actual.Args)))
		if actual.Fn != nil {
			e.write(fmt.Sprintf("%p", actual.Fn))
		}
		e.encode(actual.Object)
		for _, arg := range actual.Args {
			e.encode(arg)
		}
	case *expr.Binary:
		e.write(string(actual.Op), typeName(actual.RType))
		e.encode(actual.X)
		e.encode(actual.Y)
	case *expr.Unary:
		e.write(string(actual.Op), typeName(actual.RType))
		e.encode(actual.X)
	case *expr.Conditional:
		e.encode(actual.Test)
		e.encode(actual.Then)
		e.encode(actual.Else)
	case *expr.New:
		e.construction(actual.RType, actual.Members, actual.Args)
	case *expr.MemberInit:
		e.construction(actual.RType, actual.Members, actual.Args)
	case *expr.NewArray:
		e.write(typeName(actual.RType), strconv.Itoa(len(actual.Items)))
		for _, item := range actual.Items {
			e.encode(item)
		}
	case *expr.Lambda:
		e.write(strconv.Itoa(len(actual.Params)))
		for _, param := range actual.Params {
			e.params[param] = len(e.params)
			e.write(typeName(param.RType))
		}
		e.encode(actual.Body)
	case *expr.TypeIs:
		e.write(typeName(actual.Target))
		e.encode(actual.X)
	case *expr.Table:
		e.write(typeName(actual.Entity))
	default:
		e.write(fmt.Sprintf("%T", node), node.String())
	}
}

func (e *shapeEncoder) construction(t reflect.Type, members []string, args []expr.Node) {
	e.write(typeName(t), strconv.Itoa(len(args)))
	e.write(members...)
	for _, arg := range args {
		e.encode(arg)
	}
}
