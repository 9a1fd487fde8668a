package expr

import (
	"reflect"
)

//Seq represents sequence expression builder
type Seq struct {
	node  Node
	elem  reflect.Type
	group *GroupType
	owner string
}

//From creates a table sequence, entity is struct or pointer to struct type
func From(entity reflect.Type) *Seq {
	if entity.Kind() == reflect.Struct {
		entity = reflect.PtrTo(entity)
	}
	return &Seq{node: &Table{Entity: entity}, elem: entity, owner: OwnerQueryable}
}

//TableOf creates a table sequence for T
func TableOf[T any]() *Seq {
	return From(reflect.TypeOf((*T)(nil)))
}

//SeqOf wraps sequence valued node, i.e. association collection or grouping
func SeqOf(node Node) *Seq {
	ret := &Seq{node: node, owner: OwnerEnumerable}
	if p, ok := node.(*Parameter); ok && p.Group != nil {
		ret.elem = p.Group.Element
		return ret
	}
	ret.elem = ElementType(node.Type())
	return ret
}

//Node returns sequence node
func (s *Seq) Node() Node {
	return s.node
}

//Elem returns sequence element type
func (s *Seq) Elem() reflect.Type {
	return s.elem
}

func (s *Seq) lambda(fn func(x Node) Node) *Lambda {
	param := &Parameter{Name: paramName(s.elem), RType: s.elem, Group: s.group}
	if s.group != nil {
		param.RType = GroupingType
	}
	return &Lambda{Params: []*Parameter{param}, Body: fn(param)}
}

func lambda2(t1 reflect.Type, g1 *GroupType, t2 reflect.Type, g2 *GroupType, fn func(x, y Node) Node) *Lambda {
	p1 := &Parameter{Name: paramName(t1), RType: t1, Group: g1}
	p2 := &Parameter{Name: paramName(t2), RType: t2, Group: g2}
	if p2.Name == p1.Name {
		p2.Name += "2"
	}
	return &Lambda{Params: []*Parameter{p1, p2}, Body: fn(p1, p2)}
}

func (s *Seq) next(method string, elem reflect.Type, group *GroupType, args ...Node) *Seq {
	callArgs := append([]Node{s.node}, args...)
	t := reflect.SliceOf(elem)
	if group != nil {
		t = reflect.SliceOf(GroupingType)
	}
	return &Seq{
		node:  &Call{Owner: s.owner, Method: method, Args: callArgs, RType: t},
		elem:  elem,
		group: group,
		owner: s.owner,
	}
}

func (s *Seq) same(method string, args ...Node) *Seq {
	return s.next(method, s.elem, s.group, args...)
}

func (s *Seq) terminal(method string, t reflect.Type, args ...Node) *Call {
	return &Call{Owner: s.owner, Method: method, Args: append([]Node{s.node}, args...), RType: t}
}

//Where filters sequence
func (s *Seq) Where(predicate func(x Node) Node) *Seq {
	return s.same("Where", s.lambda(predicate))
}

//Select projects sequence
func (s *Seq) Select(selector func(x Node) Node) *Seq {
	l := s.lambda(selector)
	var group *GroupType
	if p, ok := l.Body.(*Parameter); ok {
		group = p.Group
	}
	elem := l.Body.Type()
	return s.next("Select", elem, group, l)
}

//SelectMany flattens sequence, result may be nil
func (s *Seq) SelectMany(collection func(x Node) Node, result func(x, y Node) Node) *Seq {
	c := s.lambda(collection)
	inner := SeqOf(c.Body)
	if result == nil {
		return s.next("SelectMany", inner.elem, nil, c)
	}
	r := lambda2(s.elem, s.group, inner.elem, nil, result)
	return s.next("SelectMany", r.Body.Type(), nil, c, r)
}

func (s *Seq) order(method string, key func(x Node) Node) *Seq {
	return s.same(method, s.lambda(key))
}

func (s *Seq) OrderBy(key func(x Node) Node) *Seq           { return s.order("OrderBy", key) }
func (s *Seq) OrderByDescending(key func(x Node) Node) *Seq { return s.order("OrderByDescending", key) }
func (s *Seq) ThenBy(key func(x Node) Node) *Seq            { return s.order("ThenBy", key) }
func (s *Seq) ThenByDescending(key func(x Node) Node) *Seq  { return s.order("ThenByDescending", key) }

//GroupBy groups sequence by key
func (s *Seq) GroupBy(key func(x Node) Node) *Seq {
	k := s.lambda(key)
	return s.next("GroupBy", GroupingType, &GroupType{Key: k.Body.Type(), Element: s.elem}, k)
}

//GroupByElement groups sequence by key with element projection
func (s *Seq) GroupByElement(key func(x Node) Node, element func(x Node) Node) *Seq {
	k := s.lambda(key)
	e := s.lambda(element)
	return s.next("GroupBy", GroupingType, &GroupType{Key: k.Body.Type(), Element: e.Body.Type()}, k, e)
}

//Join creates inner join
func (s *Seq) Join(inner *Seq, outerKey func(x Node) Node, innerKey func(x Node) Node, result func(o, i Node) Node) *Seq {
	ok := s.lambda(outerKey)
	ik := inner.lambda(innerKey)
	r := lambda2(s.elem, s.group, inner.elem, inner.group, result)
	return s.next("Join", r.Body.Type(), nil, inner.node, ok, ik, r)
}

//GroupJoin creates group join, the second result parameter is a Grouping of inner elements
func (s *Seq) GroupJoin(inner *Seq, outerKey func(x Node) Node, innerKey func(x Node) Node, result func(o, g Node) Node) *Seq {
	ok := s.lambda(outerKey)
	ik := inner.lambda(innerKey)
	group := &GroupType{Key: ok.Body.Type(), Element: inner.elem}
	r := lambda2(s.elem, s.group, GroupingType, group, result)
	return s.next("GroupJoin", r.Body.Type(), nil, inner.node, ok, ik, r)
}

func (s *Seq) Take(count Node) *Seq { return s.same("Take", count) }
func (s *Seq) Skip(count Node) *Seq { return s.same("Skip", count) }
func (s *Seq) Distinct() *Seq       { return s.same("Distinct") }
func (s *Seq) DefaultIfEmpty() *Seq { return s.same("DefaultIfEmpty") }

func (s *Seq) Union(other *Seq) *Seq     { return s.same("Union", other.node) }
func (s *Seq) Concat(other *Seq) *Seq    { return s.same("Concat", other.node) }
func (s *Seq) Except(other *Seq) *Seq    { return s.same("Except", other.node) }
func (s *Seq) Intersect(other *Seq) *Seq { return s.same("Intersect", other.node) }

//OfType filters sequence by inheritance subtype
func (s *Seq) OfType(t reflect.Type) *Seq {
	if t.Kind() == reflect.Struct {
		t = reflect.PtrTo(t)
	}
	return s.next("OfType", t, nil, &Constant{Value: t, RType: reflect.TypeOf(t)})
}

func (s *Seq) element(method string, predicate []func(x Node) Node) *Call {
	if len(predicate) > 0 && predicate[0] != nil {
		return s.terminal(method, s.elem, s.lambda(predicate[0]))
	}
	return s.terminal(method, s.elem)
}

func (s *Seq) First(predicate ...func(x Node) Node) *Call {
	return s.element("First", predicate)
}
func (s *Seq) FirstOrDefault(predicate ...func(x Node) Node) *Call {
	return s.element("FirstOrDefault", predicate)
}
func (s *Seq) Single(predicate ...func(x Node) Node) *Call {
	return s.element("Single", predicate)
}
func (s *Seq) SingleOrDefault(predicate ...func(x Node) Node) *Call {
	return s.element("SingleOrDefault", predicate)
}

//Count counts elements, optionally matching predicate
func (s *Seq) Count(predicate ...func(x Node) Node) *Call {
	if len(predicate) > 0 && predicate[0] != nil {
		return s.terminal("Count", intType, s.lambda(predicate[0]))
	}
	return s.terminal("Count", intType)
}

//Any tests if any element, optionally matching predicate, exists
func (s *Seq) Any(predicate ...func(x Node) Node) *Call {
	if len(predicate) > 0 && predicate[0] != nil {
		return s.terminal("Any", boolType, s.lambda(predicate[0]))
	}
	return s.terminal("Any", boolType)
}

//All tests if all elements match predicate
func (s *Seq) All(predicate func(x Node) Node) *Call {
	return s.terminal("All", boolType, s.lambda(predicate))
}

//Contains tests if sequence contains item
func (s *Seq) Contains(item Node) *Call {
	return s.terminal("Contains", boolType, item)
}

func (s *Seq) aggregate(method string, selector []func(x Node) Node, result reflect.Type) *Call {
	if len(selector) > 0 && selector[0] != nil {
		l := s.lambda(selector[0])
		if result == nil {
			result = l.Body.Type()
		}
		return s.terminal(method, result, l)
	}
	if result == nil {
		result = s.elem
	}
	return s.terminal(method, result)
}

func (s *Seq) Min(selector ...func(x Node) Node) *Call { return s.aggregate("Min", selector, nil) }
func (s *Seq) Max(selector ...func(x Node) Node) *Call { return s.aggregate("Max", selector, nil) }
func (s *Seq) Sum(selector ...func(x Node) Node) *Call { return s.aggregate("Sum", selector, nil) }
func (s *Seq) Average(selector ...func(x Node) Node) *Call {
	return s.aggregate("Average", selector, float64Type)
}
