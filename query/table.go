package query

import (
	"reflect"

	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/mapping"
)

//Table represents table source, optionally joined through parent association
type Table struct {
	query       *ir.Query
	table       *ir.Table
	tableSource *ir.TableSource
	entity      *mapping.Entity
	objectType  reflect.Type
	columns     []*Column
	byMember    map[string]*Column
	parent      *Table
	association *mapping.Association
	join        *ir.Join
	associated  map[string]*Table
}

func (s *Table) Query() *ir.Query   { return s.query }
func (s *Table) Type() reflect.Type { return s.objectType }

//CanBeNull returns true for LEFT joined association
func (s *Table) CanBeNull() bool {
	return s.join != nil && s.join.Type == ir.LeftJoin
}

func (s *Table) keyColumns() []*Column {
	if len(s.entity.Keys) == 0 {
		return s.columns
	}
	result := make([]*Column, 0, len(s.entity.Keys))
	for _, key := range s.entity.Keys {
		result = append(result, s.byMember[key.Member])
	}
	return result
}

//parentKeys returns parent foreign key columns matching this table keys, avoiding the association join
func (s *Table) parentKeys() ([]string, []ir.Expr, bool) {
	if s.parent == nil || s.association == nil || s.CanBeNull() {
		return nil, nil, false
	}
	thisKeys, otherKeys := associationKeys(s.parent.entity, s.entity, s.association)
	keys := s.keyColumns()
	if len(keys) != len(otherKeys) {
		return nil, nil, false
	}
	names := make([]string, len(keys))
	exprs := make([]ir.Expr, len(keys))
	for i, key := range keys {
		pos := -1
		for j, other := range otherKeys {
			if other == key.Member() {
				pos = j
			}
		}
		if pos == -1 {
			return nil, nil, false
		}
		column, ok := s.parent.byMember[thisKeys[pos]]
		if !ok {
			return nil, nil, false
		}
		names[i] = key.Member()
		exprs[i] = column.field
	}
	return names, exprs, true
}

//narrow returns table view materializing supplied inheritance subtype
func (s *Table) narrow(t reflect.Type) *Table {
	ret := *s
	ret.objectType = t
	return &ret
}

func (b *builder) newTable(query *ir.Query, t reflect.Type) (*Table, error) {
	entity, err := b.schema.Entity(t)
	if err != nil {
		return nil, newError(ErrUnsupportedExpressionShape, "table", nil, "%v", err)
	}
	alias := b.alias("t")
	table := ir.NewTable(entity.Table, entity.Type)
	table.Alias = alias
	objectType := reflect.PtrTo(entity.Type)
	if structType := t; structType != nil {
		for structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
		objectType = reflect.PtrTo(structType)
	}
	ret := &Table{
		query:      query,
		table:      table,
		entity:     entity,
		objectType: objectType,
		byMember:   map[string]*Column{},
		associated: map[string]*Table{},
	}
	for _, column := range entity.Columns {
		field := table.AddField(&ir.Field{
			Name:       column.Name,
			Member:     column.Member,
			Type:       column.Type,
			Nullable:   column.Nullable,
			PrimaryKey: column.PrimaryKey,
		})
		item := &Column{table: ret, column: column, field: field}
		ret.columns = append(ret.columns, item)
		ret.byMember[column.Member] = item
	}
	return ret, nil
}

//rootTable creates table added to the FROM clause of a new query
func (b *builder) rootTable(sc *scope, t reflect.Type) (*Table, error) {
	query := b.newQuery(sc)
	ret, err := b.newTable(query, t)
	if err != nil {
		return nil, err
	}
	ret.tableSource = query.From.Table(ret.table, ret.table.Alias)
	return ret, nil
}

//associatedTable returns lazily joined to-one association table
func (b *builder) associatedTable(parent *Table, association *mapping.Association) (*Table, error) {
	if ret, ok := parent.associated[association.Member]; ok {
		return ret, nil
	}
	joinType := ir.InnerJoin
	if association.CanBeNull {
		joinType = ir.LeftJoin
	}
	ret, err := b.joinAssociation(parent, association, joinType, true)
	if err != nil {
		return nil, err
	}
	parent.associated[association.Member] = ret
	return ret, nil
}

//joinAssociation joins association table on parent.ThisKey = child.OtherKey
func (b *builder) joinAssociation(parent *Table, association *mapping.Association, joinType ir.JoinType, weak bool) (*Table, error) {
	ret, err := b.newTable(parent.query, association.OtherType)
	if err != nil {
		return nil, err
	}
	ret.parent = parent
	ret.association = association
	ret.join = parent.tableSource.Join(joinType, ret.table, ret.table.Alias, weak)
	ret.tableSource = ret.join.Table
	thisKeys, otherKeys := associationKeys(parent.entity, ret.entity, association)
	if len(thisKeys) != len(otherKeys) || len(thisKeys) == 0 {
		return nil, newError(ErrKeyCardinalityMismatch, "association", nil, "%v.%v keys: %v, %v", parent.entity.Table, association.Member, thisKeys, otherKeys)
	}
	for i := range thisKeys {
		this, ok := parent.byMember[thisKeys[i]]
		if !ok {
			return nil, newError(ErrUnsupportedExpressionShape, "association", nil, "unknown key %v.%v", parent.entity.Table, thisKeys[i])
		}
		other, ok := ret.byMember[otherKeys[i]]
		if !ok {
			return nil, newError(ErrUnsupportedExpressionShape, "association", nil, "unknown key %v.%v", ret.entity.Table, otherKeys[i])
		}
		ret.join.Condition.And(&ir.Compare{X: this.field, Op: ir.OpEqual, Y: other.field})
	}
	return ret, nil
}

//associationKeys returns key member names, primary keys are used when not defined
func associationKeys(this, other *mapping.Entity, association *mapping.Association) ([]string, []string) {
	thisKeys, otherKeys := association.ThisKey, association.OtherKey
	if len(thisKeys) == 0 {
		thisKeys = memberNames(this.Keys)
	}
	if len(otherKeys) == 0 {
		otherKeys = memberNames(other.Keys)
	}
	return thisKeys, otherKeys
}

func memberNames(columns []*mapping.Column) []string {
	result := make([]string, len(columns))
	for i, column := range columns {
		result[i] = column.Member
	}
	return result
}
