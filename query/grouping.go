package query

import (
	"context"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/expr"
)

//grouping represents materialized group, elements are loaded by an independent element query
type grouping struct {
	key      interface{}
	count    int
	counted  bool
	artifact *Artifact
	params   []interface{}
	runner   Runner
}

func (g *grouping) Key() interface{} { return g.key }
func (g *grouping) Len() (int, bool) { return g.count, g.counted }

//Load runs element query for the group key
func (g *grouping) Load(ctx context.Context) ([]interface{}, error) {
	if g.counted && g.count == 0 {
		return nil, nil
	}
	if g.runner == nil {
		return nil, errors.Errorf("unable to load group %v elements: runner was nil", g.key)
	}
	var result []interface{}
	err := g.artifact.Read(ctx, g.runner, g.params, func(value interface{}) error {
		result = append(result, value)
		return nil
	})
	return result, err
}

//buildGrouping compiles grouping materializer: the key is read from the row, elements come from a lazily run element query
func (b *builder) buildGrouping(group *GroupBy, conv IndexConverter) (Materializer, error) {
	key, err := b.groupKey(group)
	if err != nil {
		return nil, err
	}
	readKey, err := b.buildField(key, conv)
	if err != nil {
		return nil, err
	}
	artifact, err := b.elementArtifact(group.sourceNode, group.keyLambda, group.element)
	if err != nil {
		return nil, err
	}
	return func(row Row, env *Env) (interface{}, error) {
		value, err := readKey(row, env)
		if err != nil {
			return nil, err
		}
		return &grouping{key: value, artifact: artifact, params: elementParams(value, env.Params), runner: env.Runner}, nil
	}, nil
}

//buildGroupJoin compiles group join materializer, the counter column tells group size without loading elements
func (b *builder) buildGroupJoin(group *GroupJoin, conv IndexConverter) (Materializer, error) {
	keyScope := group.scope.bind(group.outerKey.Params, group.outer)
	readKey, err := b.buildNode(keyScope, group.outerKey.Body, conv)
	if err != nil {
		return nil, err
	}
	index := group.query.Select.Add(group.count(), "")
	readCount, err := b.reader(conv(FieldIndex{Index: index}).Index, intType)
	if err != nil {
		return nil, err
	}
	artifact, err := b.elementArtifact(group.innerNode, group.innerKey, nil)
	if err != nil {
		return nil, err
	}
	return func(row Row, env *Env) (interface{}, error) {
		value, err := readKey(row, env)
		if err != nil {
			return nil, err
		}
		count, err := readCount(row, env)
		if err != nil {
			return nil, err
		}
		ret := &grouping{key: value, artifact: artifact, params: elementParams(value, env.Params), runner: env.Runner, counted: true}
		ret.count, _ = count.(int)
		return ret, nil
	}, nil
}

func elementParams(key interface{}, params []interface{}) []interface{} {
	return append([]interface{}{key}, params...)
}

//elementArtifact compiles query selecting group elements matching key passed as the first host parameter
func (b *builder) elementArtifact(source expr.Node, key *expr.Lambda, element *expr.Lambda) (*Artifact, error) {
	nodes := []expr.Node{source, key}
	if element != nil {
		nodes = append(nodes, element)
	}
	if freeParameters(nodes...) {
		return nil, newError(ErrUnsupportedExpressionShape, "grouping", source, "grouped sequence references outer row")
	}
	source, keyBody := shiftHostParams(source), shiftHostParams(key.Body)
	keyType := key.Body.Type()
	keyParam := expr.Param("key", 0, keyType)
	seq := expr.SeqOf(source).Where(func(x expr.Node) expr.Node {
		value := replaceParam(keyBody, key.Params[0], x)
		equal := expr.Node(expr.Eq(value, keyParam))
		if expr.IsScalar(keyType) && expr.IsNullable(keyType) {
			equal = expr.Or(equal, expr.And(expr.Eq(value, expr.Null(keyType)), expr.Eq(keyParam, expr.Null(keyType))))
		}
		return equal
	})
	if element != nil {
		body := shiftHostParams(element.Body)
		seq = seq.Select(func(x expr.Node) expr.Node {
			return replaceParam(body, element.Params[0], x)
		})
	}
	child := b.Compiler.newBuilder()
	ret, err := child.compile(seq.Node())
	if err != nil {
		return nil, err
	}
	b.dependencies = append(b.dependencies, ret)
	return ret, nil
}

//shiftHostParams moves host parameter positions by one, making room for the group key
func shiftHostParams(node expr.Node) expr.Node {
	return expr.Rewrite(node, func(n expr.Node) (expr.Node, bool) {
		if param, ok := n.(*expr.HostParam); ok {
			return &expr.HostParam{Name: param.Name, Index: param.Index + 1, RType: param.RType}, true
		}
		return nil, false
	})
}

func replaceParam(node expr.Node, param *expr.Parameter, with expr.Node) expr.Node {
	return expr.Rewrite(node, func(n expr.Node) (expr.Node, bool) {
		if n == param {
			return with, true
		}
		return nil, false
	})
}

//freeParameters returns true if nodes reference lambda parameters they do not declare
func freeParameters(nodes ...expr.Node) bool {
	declared := map[*expr.Parameter]bool{}
	for _, node := range nodes {
		expr.Walk(node, func(n expr.Node) bool {
			if lambda, ok := n.(*expr.Lambda); ok {
				for _, param := range lambda.Params {
					declared[param] = true
				}
			}
			return true
		})
	}
	for _, node := range nodes {
		if expr.Find(node, func(n expr.Node) bool {
			param, ok := n.(*expr.Parameter)
			return ok && !declared[param]
		}) != nil {
			return true
		}
	}
	return false
}
