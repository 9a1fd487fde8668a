package query

import (
	"github.com/viant/sqlq/expr"
	"github.com/viant/sqlq/ir"
)

//scope represents immutable correlation stack, each frame binds lambda parameter to a source
type scope struct {
	parent *scope
	param  *expr.Parameter
	source Source
	query  *ir.Query
	nested bool
}

//bind pushes a frame per lambda parameter, the first source query becomes the current query
func (s *scope) bind(params []*expr.Parameter, sources ...Source) *scope {
	query := s.current()
	if len(sources) > 0 {
		query = sources[0].Query()
	}
	ret := s
	for i, param := range params {
		if i >= len(sources) {
			break
		}
		ret = &scope{parent: ret, param: param, source: sources[i], query: query, nested: s.isNested()}
	}
	if ret == s {
		ret = &scope{parent: s, query: query, nested: s.isNested()}
	}
	return ret
}

//nest opens correlated sub query scope
func (s *scope) nest(query *ir.Query) *scope {
	return &scope{parent: s, query: query, nested: true}
}

func (s *scope) current() *ir.Query {
	if s == nil {
		return nil
	}
	return s.query
}

func (s *scope) isNested() bool {
	return s != nil && s.nested
}

func (s *scope) lookup(param *expr.Parameter) (Source, bool) {
	for frame := s; frame != nil; frame = frame.parent {
		if frame.param != nil && frame.param == param {
			return frame.source, true
		}
	}
	return nil, false
}
