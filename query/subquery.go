package query

import (
	"reflect"
	"strconv"

	"github.com/viant/sqlq/ir"
)

//SubQuery represents source wrapped in a sub query, inner fields are promoted on demand
type SubQuery struct {
	query       *ir.Query
	sub         *ir.Query
	source      Source
	tableSource *ir.TableSource
	fields      map[Field]Field
	unions      []Source
}

func (s *SubQuery) Query() *ir.Query   { return s.query }
func (s *SubQuery) Type() reflect.Type { return s.source.Type() }
func (s *SubQuery) CanBeNull() bool    { return s.source.CanBeNull() }

//fieldFor returns outer field for inner field, nested sources are exposed as views sharing this sub query
func (s *SubQuery) fieldFor(inner Field) Field {
	if ret, ok := s.fields[inner]; ok {
		return ret
	}
	var ret Field
	if source, ok := inner.(Source); ok {
		ret = &SubQuery{
			query:       s.query,
			sub:         s.sub,
			source:      source,
			tableSource: s.tableSource,
			fields:      map[Field]Field{},
		}
	} else {
		ret = &SubQueryColumn{sub: s, inner: inner}
	}
	s.fields[inner] = ret
	return ret
}

//converter promotes inner row index into this sub query select list
func (s *SubQuery) converter(outer IndexConverter) IndexConverter {
	return func(index FieldIndex) FieldIndex {
		position := s.query.Select.Add(s.sub.Column(index.Index), "")
		field := index.Field
		if field != nil {
			field = s.fieldFor(field)
		}
		return outer(FieldIndex{Field: field, Index: position})
	}
}

func (b *builder) newSubQuery(query *ir.Query, source Source, addFrom bool) *SubQuery {
	ret := &SubQuery{
		query:  query,
		sub:    source.Query(),
		source: source,
		fields: map[Field]Field{},
	}
	if addFrom {
		ret.tableSource = query.From.Table(ret.sub, queryAlias(ret.sub))
	}
	return ret
}

//wrap wraps source in a new sub query
func (b *builder) wrap(source Source) *SubQuery {
	query := ir.NewQuery()
	query.ParentSQL = source.Query().ParentSQL
	b.logger.Debug("wrap", "compilation", b.id, "query", source.Query().ID, "into", query.ID)
	return b.newSubQuery(query, source, true)
}

func queryAlias(query *ir.Query) string {
	return "q" + strconv.Itoa(query.ID)
}
