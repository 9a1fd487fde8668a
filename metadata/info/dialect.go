package info

import (
	"reflect"
	"strings"
	"sync"

	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info/placeholder"
)

//Dialect represents dialect capabilities and member substitution rules
type Dialect struct {
	database.Product
	Placeholder          string // prepare statement placeholder, default '?', but oracle uses ':'
	PlaceholderResolver  placeholder.Generator
	CanSkip              bool
	CanTake              bool
	TakeAcceptsParameter bool
	CanSubQueryTake      bool
	CanCountSubQuery     bool
	CanSubQueryColumn    bool
	QuoteCharacter       byte
	//Members maps owner.method to substitution template, i.e. strings.Len: Length($0)
	Members             map[string]string
	ExpressionConverter func(e ir.Expr) ir.Expr
	PredicateConverter  func(p ir.Predicate) ir.Predicate
	mux                 sync.RWMutex
	templates           map[string]expr.Node
}

//Dialects represents dialects
type Dialects []*Dialect

func (d *Dialect) IsSkipSupported() bool           { return d.CanSkip }
func (d *Dialect) IsTakeSupported() bool           { return d.CanTake }
func (d *Dialect) IsTakeParameterSupported() bool  { return d.TakeAcceptsParameter }
func (d *Dialect) IsSubQueryTakeSupported() bool   { return d.CanSubQueryTake }
func (d *Dialect) IsCountSubQuerySupported() bool  { return d.CanCountSubQuery }
func (d *Dialect) IsSubQueryColumnSupported() bool { return d.CanSubQueryColumn }

//ConvertMember returns member substitution or nil if dialect has no rule for it
func (d *Dialect) ConvertMember(owner, method string, operands []expr.Node, t reflect.Type) (expr.Node, error) {
	key := owner + "." + method
	text, ok := d.Members[key]
	if !ok {
		return nil, nil
	}
	template, err := d.template(key, text, t)
	if err != nil {
		return nil, err
	}
	return Bind(template, operands)
}

func (d *Dialect) template(key, text string, t reflect.Type) (expr.Node, error) {
	cacheKey := key + "/" + t.String()
	d.mux.RLock()
	template, ok := d.templates[cacheKey]
	d.mux.RUnlock()
	if ok {
		return template, nil
	}
	template, err := ParseTemplate(text, t)
	if err != nil {
		return nil, err
	}
	d.mux.Lock()
	if d.templates == nil {
		d.templates = map[string]expr.Node{}
	}
	d.templates[cacheKey] = template
	d.mux.Unlock()
	return template, nil
}

//ConvertExpression applies dialect expression rewrite
func (d *Dialect) ConvertExpression(e ir.Expr) ir.Expr {
	if d.ExpressionConverter == nil {
		return e
	}
	return d.ExpressionConverter(e)
}

//ConvertPredicate applies dialect predicate rewrite
func (d *Dialect) ConvertPredicate(p ir.Predicate) ir.Predicate {
	if d.PredicateConverter == nil {
		return p
	}
	return d.PredicateConverter(p)
}

//PlaceholderGetter returns PlaceholderResolver if not nil, otherwise returns function that returns Placeholder
func (d *Dialect) PlaceholderGetter() func() string {
	if d.PlaceholderResolver != nil {
		return d.PlaceholderResolver.Resolver()
	}
	if d.Placeholder != "" {
		return (&placeholder.Constant{Placeholder: d.Placeholder}).Resolver()
	}
	return (&placeholder.DefaultGenerator{}).Resolver()
}

//EnsurePlaceholders converts '?' to specific dialect placeholders if needed
func (d *Dialect) EnsurePlaceholders(SQL string) string {
	if (d.Placeholder == "" || d.Placeholder == placeholder.Default) && d.PlaceholderResolver == nil {
		return SQL
	}
	if !strings.Contains(SQL, placeholder.Default) {
		return SQL
	}
	getPlaceholder := d.PlaceholderGetter()
	sb := strings.Builder{}
	sb.Grow(len(SQL))
	quoted := false
	for i := 0; i < len(SQL); i++ {
		switch SQL[i] {
		case '\'':
			quoted = !quoted
		case '?':
			if !quoted {
				sb.WriteString(getPlaceholder())
				continue
			}
		}
		sb.WriteByte(SQL[i])
	}
	return sb.String()
}

func (a Dialects) Len() int      { return len(a) }
func (a Dialects) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a Dialects) Less(i, j int) bool {
	return a[i].Product.Compare(&a[j].Product) < 0
}
