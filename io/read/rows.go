package read

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/viant/sqlq/query"
)

//readAll scans rows into positional values
func readAll(rows *sql.Rows, emit func(row query.Row) error) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	for rows.Next() {
		values := make(query.Values, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err = rows.Scan(pointers...); err != nil {
			return errors.Wrap(err, "failed to scan")
		}
		if err = emit(values); err != nil {
			return err
		}
	}
	return rows.Err()
}
