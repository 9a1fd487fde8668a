package query

import (
	"github.com/viant/sqlq/expr"
)

//class represents evaluation placement of an expression
type class int

const (
	//classConstant folds to a literal at compile time
	classConstant class = iota
	//classHost evaluates on host per execution into a deferred parameter
	classHost
	//classServer requires structural translation
	classServer
)

//classify returns expression evaluation class
func classify(node expr.Node) class {
	ret := classConstant
	switch actual := node.(type) {
	case *expr.Constant:
		return classConstant
	case *expr.HostParam:
		return classHost
	case *expr.Parameter, *expr.Table, *expr.Lambda:
		return classServer
	case *expr.Call:
		switch actual.Owner {
		case expr.OwnerSQL, expr.OwnerQueryable:
			return classServer
		case expr.OwnerEnumerable:
			if actual.Method != "Contains" {
				return classServer
			}
		case expr.OwnerHost:
			ret = classHost
		}
	}
	for _, child := range expr.Children(node) {
		if c := classify(child); c > ret {
			ret = c
			if ret == classServer {
				return ret
			}
		}
	}
	return ret
}

//hasHostResidue returns true if server expression contains host only parts
func hasHostResidue(node expr.Node) bool {
	return expr.Find(node, func(n expr.Node) bool {
		if call, ok := n.(*expr.Call); ok && call.Owner == expr.OwnerHost {
			return classify(call) == classServer
		}
		return false
	}) != nil
}
