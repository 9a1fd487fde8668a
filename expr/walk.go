package expr

//Children returns node children
func Children(n Node) []Node {
	switch actual := n.(type) {
	case *Member:
		return []Node{actual.X}
	case *Call:
		if actual.Object == nil {
			return actual.Args
		}
		return append([]Node{actual.Object}, actual.Args...)
	case *Binary:
		return []Node{actual.X, actual.Y}
	case *Unary:
		return []Node{actual.X}
	case *Conditional:
		return []Node{actual.Test, actual.Then, actual.Else}
	case *New:
		return actual.Args
	case *MemberInit:
		return actual.Args
	case *NewArray:
		return actual.Items
	case *Lambda:
		return []Node{actual.Body}
	case *TypeIs:
		return []Node{actual.X}
	}
	return nil
}

//Walk visits node tree in pre order, visit returns false to skip node children
func Walk(n Node, visit func(n Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}

//Find returns first node matching predicate
func Find(n Node, predicate func(n Node) bool) Node {
	var result Node
	Walk(n, func(candidate Node) bool {
		if result != nil {
			return false
		}
		if predicate(candidate) {
			result = candidate
			return false
		}
		return true
	})
	return result
}

//Rewrite builds a new tree, replace returns replacement and true to stop descending.
//Unchanged subtrees are shared with the source tree.
func Rewrite(n Node, replace func(n Node) (Node, bool)) Node {
	if n == nil {
		return nil
	}
	if replacement, ok := replace(n); ok {
		return replacement
	}
	switch actual := n.(type) {
	case *Member:
		if x := Rewrite(actual.X, replace); x != actual.X {
			return &Member{X: x, Name: actual.Name, RType: actual.RType}
		}
	case *Call:
		object := Rewrite(actual.Object, replace)
		args, changed := rewriteAll(actual.Args, replace)
		if changed || object != actual.Object {
			ret := *actual
			ret.Object = object
			ret.Args = args
			return &ret
		}
	case *Binary:
		x, y := Rewrite(actual.X, replace), Rewrite(actual.Y, replace)
		if x != actual.X || y != actual.Y {
			return &Binary{Op: actual.Op, X: x, Y: y, RType: actual.RType}
		}
	case *Unary:
		if x := Rewrite(actual.X, replace); x != actual.X {
			return &Unary{Op: actual.Op, X: x, RType: actual.RType}
		}
	case *Conditional:
		test, then, els := Rewrite(actual.Test, replace), Rewrite(actual.Then, replace), Rewrite(actual.Else, replace)
		if test != actual.Test || then != actual.Then || els != actual.Else {
			return &Conditional{Test: test, Then: then, Else: els}
		}
	case *New:
		if args, changed := rewriteAll(actual.Args, replace); changed {
			return &New{RType: actual.RType, Members: actual.Members, Args: args}
		}
	case *MemberInit:
		if args, changed := rewriteAll(actual.Args, replace); changed {
			return &MemberInit{RType: actual.RType, Members: actual.Members, Args: args}
		}
	case *NewArray:
		if items, changed := rewriteAll(actual.Items, replace); changed {
			return &NewArray{RType: actual.RType, Items: items}
		}
	case *Lambda:
		if body := Rewrite(actual.Body, replace); body != actual.Body {
			return &Lambda{Params: actual.Params, Body: body}
		}
	case *TypeIs:
		if x := Rewrite(actual.X, replace); x != actual.X {
			return &TypeIs{X: x, Target: actual.Target}
		}
	}
	return n
}

func rewriteAll(nodes []Node, replace func(n Node) (Node, bool)) ([]Node, bool) {
	var result []Node
	for i, node := range nodes {
		rewritten := Rewrite(node, replace)
		if rewritten != node && result == nil {
			result = make([]Node, len(nodes))
			copy(result, nodes[:i])
		}
		if result != nil {
			result[i] = rewritten
		}
	}
	if result == nil {
		return nodes, false
	}
	return result, true
}

//Uses returns true if node references any of supplied parameters
func Uses(n Node, params ...*Parameter) bool {
	return Find(n, func(candidate Node) bool {
		p, ok := candidate.(*Parameter)
		if !ok {
			return false
		}
		for _, param := range params {
			if p == param {
				return true
			}
		}
		return false
	}) != nil
}
