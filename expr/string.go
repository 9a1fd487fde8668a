package expr

import (
	"fmt"
	"reflect"
	"strings"
)

func (n *Constant) String() string {
	if n.IsNull() {
		return "nil"
	}
	if s, ok := n.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if t, ok := n.Value.(reflect.Type); ok {
		return t.String()
	}
	return fmt.Sprintf("%v", n.Value)
}

func (n *Parameter) String() string { return n.Name }
func (n *HostParam) String() string { return "@" + n.Name }
func (n *Member) String() string    { return n.X.String() + "." + n.Name }

func (n *Call) String() string {
	args := make([]string, 0, len(n.Args))
	for _, arg := range n.Args {
		args = append(args, arg.String())
	}
	if n.Object != nil {
		return n.Object.String() + "." + n.Method + "(" + strings.Join(args, ", ") + ")"
	}
	if n.IsSequence() && len(args) > 0 {
		return args[0] + "." + n.Method + "(" + strings.Join(args[1:], ", ") + ")"
	}
	return n.Method + "(" + strings.Join(args, ", ") + ")"
}

func (n *Binary) String() string {
	return "(" + n.X.String() + " " + string(n.Op) + " " + n.Y.String() + ")"
}

func (n *Unary) String() string {
	switch n.Op {
	case OpNot:
		return "!" + n.X.String()
	case OpNegate:
		return "-" + n.X.String()
	}
	return fmt.Sprintf("%v(%v)", n.RType, n.X.String())
}

func (n *Conditional) String() string {
	return "(" + n.Test.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n *New) String() string        { return "new " + constructorString(n.RType, n.Members, n.Args) }
func (n *MemberInit) String() string { return constructorString(n.RType, n.Members, n.Args) }

func constructorString(t reflect.Type, members []string, args []Node) string {
	items := make([]string, len(members))
	for i, name := range members {
		items[i] = name + ": " + args[i].String()
	}
	name := ""
	if t != nil {
		name = Deref(t).Name()
	}
	return name + "{" + strings.Join(items, ", ") + "}"
}

func (n *NewArray) String() string {
	items := make([]string, len(n.Items))
	for i, item := range n.Items {
		items[i] = item.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func (n *Lambda) String() string {
	names := make([]string, len(n.Params))
	for i, p := range n.Params {
		names[i] = p.Name
	}
	params := strings.Join(names, ", ")
	if len(names) != 1 {
		params = "(" + params + ")"
	}
	return params + " => " + n.Body.String()
}

func (n *TypeIs) String() string { return n.X.String() + " is " + n.Target.String() }

func (n *Table) String() string { return Deref(n.Entity).Name() }
