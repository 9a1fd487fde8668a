package option

import (
	"io"
	"log/slog"

	"github.com/viant/sqlq/mapping"
	"github.com/viant/sqlq/metadata/database"
	"github.com/viant/sqlq/metadata/info"
)

const (
	//TagSqlx defines sqlx annotation
	TagSqlx = "sqlx"
	//DefaultParameterPrefix defines generated parameter name prefix
	DefaultParameterPrefix = "p"
)

//Option represents generic option
type Option interface{}

//Options represents generic options
type Options []Option

//Tag represent a annotation tag name
type Tag string

//ParameterPrefix represents generated parameter name prefix
type ParameterPrefix string

//Logger represents compilation trace logger
type Logger struct {
	*slog.Logger
}

//WithLogger creates logger option
func WithLogger(logger *slog.Logger) *Logger {
	return &Logger{Logger: logger}
}

//Tag returns annotation tag, default sqlx
func (o Options) Tag() string {
	for _, candidate := range o {
		if tagOpt, ok := candidate.(Tag); ok {
			return string(tagOpt)
		}
	}
	return TagSqlx
}

//Dialect returns dialect
func (o Options) Dialect() *info.Dialect {
	for _, candidate := range o {
		if dialect, ok := candidate.(*info.Dialect); ok {
			return dialect
		}
	}
	return nil
}

//Product returns product
func (o Options) Product() *database.Product {
	for _, candidate := range o {
		if dialect, ok := candidate.(*info.Dialect); ok {
			return &dialect.Product
		}
		if product, ok := candidate.(*database.Product); ok {
			return product
		}
	}
	return nil
}

//Schema returns mapping schema, a new schema using Tag() when none was supplied
func (o Options) Schema() *mapping.Schema {
	for _, candidate := range o {
		if schema, ok := candidate.(*mapping.Schema); ok {
			return schema
		}
	}
	return mapping.NewSchema(o.Tag())
}

//Logger returns logger, discarding logger by default
func (o Options) Logger() *slog.Logger {
	for _, candidate := range o {
		switch actual := candidate.(type) {
		case *Logger:
			if actual.Logger != nil {
				return actual.Logger
			}
		case *slog.Logger:
			return actual
		}
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

//ParameterPrefix returns generated parameter prefix
func (o Options) ParameterPrefix() string {
	for _, candidate := range o {
		if prefix, ok := candidate.(ParameterPrefix); ok && prefix != "" {
			return string(prefix)
		}
	}
	return DefaultParameterPrefix
}
