package sqlexec

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRelation indica una relación que el cargador no sabe resolver.
var ErrUnsupportedRelation = errors.New("unsupported relation")

// QueryError envuelve los fallos del driver con la operación y el SQL
// ejecutado. Los argumentos no se incluyen.
type QueryError struct {
	Op  string
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sqlexec %s: %v (sql: %s)", e.Op, e.Err, e.SQL)
}

func (e *QueryError) Unwrap() error { return e.Err }

func wrap(op, sql string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, SQL: sql, Err: err}
}
