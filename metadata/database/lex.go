package database

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	numberCode int = iota + 1
	versionSeparatorCode
)

var (
	numberToken           = parsly.NewToken(numberCode, "number", matcher.NewDigits())
	versionSeparatorToken = parsly.NewToken(versionSeparatorCode, "version separator", matcher.NewCharset(".:-"))
)
