package info

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
	"github.com/viant/parsly/matcher/option"
)

const (
	whitespaceCode int = iota
	parenthesesCode
	nextCode
	identifierCode
	placeholderCode
	numberCode
	stringCode
	binaryOperatorCode
)

var whitespaceToken = parsly.NewToken(whitespaceCode, "whitespace", matcher.NewWhiteSpace())
var parenthesesToken = parsly.NewToken(parenthesesCode, "()", matcher.NewBlock('(', ')', '\\'))
var nextToken = parsly.NewToken(nextCode, ",", matcher.NewByte(','))
var identifierToken = parsly.NewToken(identifierCode, "identifier", &identifier{})
var placeholderToken = parsly.NewToken(placeholderCode, "$N", &operandMatcher{})
var numberToken = parsly.NewToken(numberCode, "number", matcher.NewNumber())
var stringToken = parsly.NewToken(stringCode, `'...'`, matcher.NewByteQuote('\'', '\\'))
var binaryOperatorToken = parsly.NewToken(binaryOperatorCode, "+|-|*|/|%", matcher.NewSet([]string{"+", "-", "*", "/", "%"}, &option.Case{}))

type identifier struct{}

//Match matches function name
func (n *identifier) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	for i := cursor.Pos; i < len(input); i++ {
		c := input[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			matched++
		case c >= '0' && c <= '9' && matched > 0:
			matched++
		default:
			return matched
		}
	}
	return matched
}

type operandMatcher struct{}

//Match matches $N operand placeholder
func (n *operandMatcher) Match(cursor *parsly.Cursor) (matched int) {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= len(input) || input[pos] != '$' {
		return 0
	}
	for i := pos + 1; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			break
		}
		matched++
	}
	if matched == 0 {
		return 0
	}
	return matched + 1
}
