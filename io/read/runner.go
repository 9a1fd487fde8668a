package read

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/ir"
	"github.com/viant/sqlq/metadata/info"
	"github.com/viant/sqlq/metadata/registry"
	"github.com/viant/sqlq/option"
	"github.com/viant/sqlq/query"
)

//Renderer renders IR query into SQL with '?' placeholders, params lists parameter names in placeholder order
type Renderer func(query *ir.Query) (SQL string, params []string, err error)

//Runner executes compiled queries with database/sql
type Runner struct {
	db      *sql.DB
	dialect *info.Dialect
	render  Renderer
	logger  *slog.Logger
	mux     sync.Mutex
	stmts   map[*ir.Query]*statement
}

type statement struct {
	SQL    string
	params []string
	stmt   *sql.Stmt
}

//Run runs query and emits rows, emit error stops reading and is returned as is
func (r *Runner) Run(ctx context.Context, info *query.QueryInfo, args []interface{}, emit func(row query.Row) error) error {
	if len(args) != len(info.Parameters) {
		return errors.Errorf("expected %v parameter values, but had %v", len(info.Parameters), len(args))
	}
	stmt, err := r.ensureStmt(ctx, info.Query)
	if err != nil {
		return err
	}
	values, err := bind(stmt.params, info, args)
	if err != nil {
		return err
	}
	r.logger.Debug("run", "query", info.Query.ID, "SQL", stmt.SQL, "args", len(values))
	rows, err := stmt.stmt.QueryContext(ctx, values...)
	if err != nil {
		r.logger.Error("query failed", "SQL", stmt.SQL, "error", err)
		return errors.Wrapf(err, "failed to run query: %v", stmt.SQL)
	}
	defer rows.Close()
	return readAll(rows, emit)
}

//bind orders parameter values by rendered placeholders
func bind(names []string, info *query.QueryInfo, args []interface{}) ([]interface{}, error) {
	index := make(map[string]int, len(info.Parameters))
	for i, param := range info.Parameters {
		index[param.SQL.Name] = i
	}
	result := make([]interface{}, len(names))
	for i, name := range names {
		position, ok := index[name]
		if !ok {
			return nil, errors.Errorf("unknown parameter: %v", name)
		}
		result[i] = args[position]
	}
	return result, nil
}

func (r *Runner) ensureStmt(ctx context.Context, query *ir.Query) (*statement, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if ret, ok := r.stmts[query]; ok {
		return ret, nil
	}
	SQL, params, err := r.render(query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render query %v", query.ID)
	}
	if r.dialect != nil {
		SQL = r.dialect.EnsurePlaceholders(SQL)
	}
	stmt, err := r.db.PrepareContext(ctx, SQL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to prepare: %v", SQL)
	}
	ret := &statement{SQL: SQL, params: params, stmt: stmt}
	r.stmts[query] = ret
	return ret, nil
}

//Close closes prepared statements
func (r *Runner) Close() error {
	r.mux.Lock()
	defer r.mux.Unlock()
	var err error
	for key, stmt := range r.stmts {
		if e := stmt.stmt.Close(); e != nil && err == nil {
			err = e
		}
		delete(r.stmts, key)
	}
	return err
}

//New creates a runner, dialect is taken from options or matched with db driver
func New(db *sql.DB, render Renderer, options ...option.Option) *Runner {
	opts := option.Options(options)
	return &Runner{
		db:      db,
		dialect: ensureDialect(opts, db),
		render:  render,
		logger:  opts.Logger(),
		stmts:   map[*ir.Query]*statement{},
	}
}

func ensureDialect(options option.Options, db *sql.DB) *info.Dialect {
	dialect := options.Dialect()
	if dialect == nil {
		product := registry.MatchProduct(db)
		if product == nil {
			return nil
		}
		dialect = registry.LookupDialect(product)
	}
	return dialect
}
