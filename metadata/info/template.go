package info

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/sqlq/expr"
)

//operand represents $N template placeholder
type operand struct {
	index int
}

func (o *operand) Kind() expr.Kind    { return expr.Kind(-1) }
func (o *operand) Type() reflect.Type { return nil }
func (o *operand) String() string     { return "$" + strconv.Itoa(o.index) }

//ParseTemplate parses member substitution template, i.e. Substring($0, $1 + 1, $2)
func ParseTemplate(text string, t reflect.Type) (expr.Node, error) {
	cursor := parsly.NewCursor("", []byte(text), 0)
	node, err := parseExpression(cursor, t)
	if err != nil {
		return nil, fmt.Errorf("invalid template %v: %w", text, err)
	}
	if match := cursor.MatchAfterOptional(whitespaceToken, nextToken); match.Code != parsly.EOF {
		return nil, fmt.Errorf("invalid template %v: unexpected input at %v", text, cursor.Pos)
	}
	return node, nil
}

//Bind replaces template placeholders with operands
func Bind(template expr.Node, operands []expr.Node) (expr.Node, error) {
	var err error
	expr.Walk(template, func(n expr.Node) bool {
		if op, ok := n.(*operand); ok && op.index >= len(operands) {
			err = fmt.Errorf("template placeholder %v out of range, operands: %v", op, len(operands))
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return expr.Rewrite(template, func(n expr.Node) (expr.Node, bool) {
		if op, ok := n.(*operand); ok {
			return operands[op.index], true
		}
		return nil, false
	}), nil
}

func parseExpression(cursor *parsly.Cursor, t reflect.Type) (expr.Node, error) {
	left, err := parseOperand(cursor, t)
	if err != nil {
		return nil, err
	}
	for {
		match := cursor.MatchAfterOptional(whitespaceToken, binaryOperatorToken)
		if match.Code != binaryOperatorCode {
			return left, nil
		}
		op := expr.Op(match.Text(cursor))
		right, err := parseOperand(cursor, t)
		if err != nil {
			return nil, err
		}
		left = &expr.Binary{Op: op, X: left, Y: right, RType: t}
	}
}

func parseOperand(cursor *parsly.Cursor, t reflect.Type) (expr.Node, error) {
	match := cursor.MatchAfterOptional(whitespaceToken, placeholderToken, numberToken, stringToken, parenthesesToken, identifierToken)
	switch match.Code {
	case placeholderCode:
		index, err := strconv.Atoi(match.Text(cursor)[1:])
		if err != nil {
			return nil, err
		}
		return &operand{index: index}, nil
	case numberCode:
		text := match.Text(cursor)
		if strings.ContainsAny(text, ".eE") {
			value, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, err
			}
			return expr.Const(value), nil
		}
		value, err := strconv.Atoi(text)
		if err != nil {
			return nil, err
		}
		return expr.Const(value), nil
	case stringCode:
		text := match.Text(cursor)
		text = strings.ReplaceAll(text[1:len(text)-1], `\'`, `'`)
		return expr.Const(text), nil
	case parenthesesCode:
		text := match.Text(cursor)
		inner := parsly.NewCursor("", []byte(text[1:len(text)-1]), 0)
		return parseExpression(inner, t)
	case identifierCode:
		name := match.Text(cursor)
		match = cursor.MatchAfterOptional(whitespaceToken, parenthesesToken)
		if match.Code != parenthesesCode {
			return nil, cursor.NewError(parenthesesToken)
		}
		text := match.Text(cursor)
		args, err := parseArguments(text[1:len(text)-1], t)
		if err != nil {
			return nil, err
		}
		return expr.SQL(name, t, args...), nil
	}
	return nil, cursor.NewError(placeholderToken, numberToken, stringToken, parenthesesToken, identifierToken)
}

func parseArguments(text string, t reflect.Type) ([]expr.Node, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	cursor := parsly.NewCursor("", []byte(text), 0)
	var result []expr.Node
	for {
		arg, err := parseExpression(cursor, t)
		if err != nil {
			return nil, err
		}
		result = append(result, arg)
		match := cursor.MatchAfterOptional(whitespaceToken, nextToken)
		switch match.Code {
		case nextCode:
			continue
		case parsly.EOF:
			return result, nil
		}
		return nil, cursor.NewError(nextToken)
	}
}
