package ir

//Predicate represents boolean condition
type Predicate interface {
	CanBeNull() bool
	Precedence() int
	String() string
	predicateNode()
}

//Comparison operators
const (
	OpEqual          = "="
	OpNotEqual       = "<>"
	OpGreater        = ">"
	OpGreaterOrEqual = ">="
	OpLess           = "<"
	OpLessOrEqual    = "<="
)

type (
	//Compare represents x op y
	Compare struct {
		X  Expr
		Op string
		Y  Expr
	}

	//Like represents x [NOT] LIKE pattern [ESCAPE escape]
	Like struct {
		X       Expr
		Not     bool
		Pattern Expr
		Escape  Expr
	}

	//InList represents x [NOT] IN (values)
	InList struct {
		X      Expr
		Not    bool
		Values []Expr
	}

	//InSubQuery represents x [NOT] IN (query)
	InSubQuery struct {
		X     Expr
		Not   bool
		Query *Query
	}

	//IsNull represents x IS [NOT] NULL
	IsNull struct {
		X   Expr
		Not bool
	}

	//Exists represents [NOT] EXISTS(query)
	Exists struct {
		Not   bool
		Query *Query
	}

	//ExprPredicate represents boolean expression used as predicate
	ExprPredicate struct {
		Expr Expr
	}

	//Condition represents search condition item, Or joins it with the next one
	Condition struct {
		Not       bool
		Predicate Predicate
		Or        bool
	}

	//SearchCondition represents list of conditions
	SearchCondition struct {
		Conditions []*Condition
	}
)

func (p *Compare) CanBeNull() bool           { return false }
func (p *Compare) Precedence() int           { return PrecedenceComparison }
func (p *Compare) predicateNode()            {}
func (p *Like) CanBeNull() bool              { return false }
func (p *Like) Precedence() int              { return PrecedenceComparison }
func (p *Like) predicateNode()               {}
func (p *InList) CanBeNull() bool            { return false }
func (p *InList) Precedence() int            { return PrecedenceComparison }
func (p *InList) predicateNode()             {}
func (p *InSubQuery) CanBeNull() bool        { return false }
func (p *InSubQuery) Precedence() int        { return PrecedenceComparison }
func (p *InSubQuery) predicateNode()         {}
func (p *IsNull) CanBeNull() bool            { return false }
func (p *IsNull) Precedence() int            { return PrecedenceComparison }
func (p *IsNull) predicateNode()             {}
func (p *Exists) CanBeNull() bool            { return false }
func (p *Exists) Precedence() int            { return PrecedenceComparison }
func (p *Exists) predicateNode()             {}
func (p *ExprPredicate) CanBeNull() bool     { return p.Expr.CanBeNull() }
func (p *ExprPredicate) Precedence() int     { return p.Expr.Precedence() }
func (p *ExprPredicate) predicateNode()      {}
func (p *SearchCondition) predicateNode()      {}
func (p *SearchCondition) exprNode()           {}

//IsEmpty returns true if condition has no items
func (p *SearchCondition) IsEmpty() bool { return p == nil || len(p.Conditions) == 0 }

//Add adds condition
func (p *SearchCondition) Add(c *Condition) { p.Conditions = append(p.Conditions, c) }

//And adds predicate
func (p *SearchCondition) And(predicate Predicate) { p.Add(&Condition{Predicate: predicate}) }

//CanBeNull returns true if any condition can be null
func (p *SearchCondition) CanBeNull() bool {
	for _, c := range p.Conditions {
		if c.Predicate.CanBeNull() {
			return true
		}
	}
	return false
}

//Precedence returns precedence
func (p *SearchCondition) Precedence() int {
	if len(p.Conditions) == 0 {
		return PrecedenceUnknown
	}
	if len(p.Conditions) == 1 {
		if p.Conditions[0].Not {
			return PrecedenceLogicalNegation
		}
		return p.Conditions[0].Predicate.Precedence()
	}
	for _, c := range p.Conditions {
		if c.Or {
			return PrecedenceLogicalDisjunction
		}
	}
	return PrecedenceLogicalConjunction
}

//NewSearchCondition creates search condition
func NewSearchCondition(conditions ...*Condition) *SearchCondition {
	return &SearchCondition{Conditions: conditions}
}

//Inverse returns negated comparison operator
func Inverse(op string) string {
	switch op {
	case OpEqual:
		return OpNotEqual
	case OpNotEqual:
		return OpEqual
	case OpGreater:
		return OpLessOrEqual
	case OpGreaterOrEqual:
		return OpLess
	case OpLess:
		return OpGreaterOrEqual
	case OpLessOrEqual:
		return OpGreater
	}
	return op
}
