package ir

import (
	"fmt"
	"strconv"
	"strings"
)

func (e *Field) String() string {
	if e.Table == nil {
		return e.Name
	}
	return e.Table.alias() + "." + e.Name
}

func (t *Table) alias() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

func (e *Column) String() string {
	return e.Parent.alias() + "." + e.Name()
}

//Name returns column alias or generated name
func (e *Column) Name() string {
	if e.Alias != "" {
		return e.Alias
	}
	for i, column := range e.Parent.Select.Columns {
		if column == e {
			return "c" + strconv.Itoa(i+1)
		}
	}
	return "c"
}

func (q *Query) alias() string {
	return "q" + strconv.Itoa(q.ID)
}

func (e *Value) String() string {
	switch actual := e.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(actual, "'", "''") + "'"
	case bool:
		if actual {
			return "1"
		}
		return "0"
	}
	return fmt.Sprintf("%v", e.Value)
}

func (e *Parameter) String() string { return "@" + e.Name }

func (e *Binary) String() string {
	return wrap(e.X, e.Prec) + " " + e.Op + " " + wrap(e.Y, e.Prec)
}

func wrap(e Expr, precedence int) string {
	if e.Precedence() < precedence {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (e *Function) String() string {
	if e.Name == "CASE" {
		var parts = []string{"CASE"}
		i := 0
		for ; i+1 < len(e.Args); i += 2 {
			parts = append(parts, "WHEN", e.Args[i].String(), "THEN", e.Args[i+1].String())
		}
		if i < len(e.Args) {
			parts = append(parts, "ELSE", e.Args[i].String())
		}
		parts = append(parts, "END")
		return strings.Join(parts, " ")
	}
	return e.Name + "(" + joinExprs(e.Args) + ")"
}

func joinExprs(exprs []Expr) string {
	items := make([]string, len(exprs))
	for i, e := range exprs {
		items[i] = e.String()
	}
	return strings.Join(items, ", ")
}

func (e *DataType) String() string { return e.Type.String() }

func (e *NullCheck) String() string {
	if e.Join == nil {
		return "NULLCHECK"
	}
	return "NULLCHECK(" + e.Join.Table.Alias + ")"
}

func (p *Compare) String() string {
	return wrap(p.X, PrecedenceComparison) + " " + p.Op + " " + wrap(p.Y, PrecedenceComparison)
}

func (p *Like) String() string {
	ret := p.X.String() + not(p.Not) + " LIKE " + p.Pattern.String()
	if p.Escape != nil {
		ret += " ESCAPE " + p.Escape.String()
	}
	return ret
}

func not(b bool) string {
	if b {
		return " NOT"
	}
	return ""
}

func (p *InList) String() string {
	return p.X.String() + not(p.Not) + " IN (" + joinExprs(p.Values) + ")"
}

func (p *InSubQuery) String() string {
	return p.X.String() + not(p.Not) + " IN (" + p.Query.String() + ")"
}

func (p *IsNull) String() string {
	return p.X.String() + " IS" + not(p.Not) + " NULL"
}

func (p *Exists) String() string {
	return strings.TrimSpace(not(p.Not)+" EXISTS") + "(" + p.Query.String() + ")"
}

func (p *ExprPredicate) String() string { return p.Expr.String() }

func (p *SearchCondition) String() string {
	var sb strings.Builder
	for i, c := range p.Conditions {
		if i > 0 {
			if p.Conditions[i-1].Or {
				sb.WriteString(" OR ")
			} else {
				sb.WriteString(" AND ")
			}
		}
		if c.Not {
			sb.WriteString("NOT ")
		}
		text := c.Predicate.String()
		if c.Predicate.Precedence() < PrecedenceComparison || c.Not {
			text = "(" + text + ")"
		}
		sb.WriteString(text)
	}
	return sb.String()
}

//String renders debug SQL
func (q *Query) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if q.Select.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if q.Select.Take != nil {
		sb.WriteString("TOP " + q.Select.Take.String() + " ")
	}
	if len(q.Select.Columns) == 0 {
		sb.WriteString("*")
	}
	for i, column := range q.Select.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(column.Expr.String())
		if column.Alias != "" {
			sb.WriteString(" AS " + column.Alias)
		}
	}
	if len(q.From.Tables) > 0 {
		sb.WriteString(" FROM ")
		for i, table := range q.From.Tables {
			if i > 0 {
				sb.WriteString(", ")
			}
			table.write(&sb)
		}
	}
	if !q.Where.IsEmpty() {
		sb.WriteString(" WHERE " + q.Where.String())
	}
	if len(q.GroupBy) > 0 {
		sb.WriteString(" GROUP BY " + joinExprs(q.GroupBy))
	}
	if !q.Having.IsEmpty() {
		sb.WriteString(" HAVING " + q.Having.String())
	}
	if len(q.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, item := range q.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(item.Expr.String())
			if item.Descending {
				sb.WriteString(" DESC")
			}
		}
	}
	if q.Select.Skip != nil {
		sb.WriteString(" OFFSET " + q.Select.Skip.String())
	}
	for _, union := range q.Unions {
		sb.WriteString(" UNION ")
		if union.All {
			sb.WriteString("ALL ")
		}
		sb.WriteString(union.Query.String())
	}
	return sb.String()
}

func (t *TableSource) write(sb *strings.Builder) {
	switch actual := t.Source.(type) {
	case *Table:
		sb.WriteString(actual.Name)
		if actual.Alias != "" {
			sb.WriteString(" " + actual.Alias)
		}
	case *Query:
		sb.WriteString("(" + actual.String() + ") " + actual.alias())
	}
	for _, join := range t.Joins {
		if join.Type == LeftJoin {
			sb.WriteString(" LEFT JOIN ")
		} else {
			sb.WriteString(" JOIN ")
		}
		join.Table.write(sb)
		if !join.Condition.IsEmpty() {
			sb.WriteString(" ON " + join.Condition.String())
		}
	}
}
