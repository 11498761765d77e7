package sqlexec

import (
	"context"
	"database/sql"
	"strings"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// nestSeparator separa relación y columna en los alias de JOIN
// ("assignee__email").
const nestSeparator = "__"

// queryer es lo mínimo que necesitan las consultas: *sql.Conn, *sql.DB o *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryRecords ejecuta st y devuelve las filas como Records.
func queryRecords(ctx context.Context, q queryer, op string, st Statement) ([]query.Record, error) {
	rows, err := q.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, wrap(op, st.SQL, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, wrap(op, st.SQL, err)
	}
	return records, nil
}

func queryCount(ctx context.Context, q queryer, st Statement) (int64, error) {
	var total int64
	if err := q.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&total); err != nil {
		return 0, wrap("count", st.SQL, err)
	}
	return total, nil
}

// scanRecords convierte filas en mapas columna → valor. Los []byte pasan a
// string y las columnas "rel__col" se agrupan bajo rel. Una relación unida
// cuyas columnas son todas NULL queda como nil.
func scanRecords(rows *sql.Rows) ([]query.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []query.Record{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, buildRecord(cols, vals))
	}
	return out, rows.Err()
}

func buildRecord(cols []string, vals []any) query.Record {
	rec := make(query.Record, len(cols))
	nested := map[string]query.Record{}
	var order []string
	for i, c := range cols {
		v := normalizeValue(vals[i])
		rel, field, ok := strings.Cut(c, nestSeparator)
		if !ok {
			rec[c] = v
			continue
		}
		if _, seen := nested[rel]; !seen {
			nested[rel] = query.Record{}
			order = append(order, rel)
		}
		nested[rel][field] = v
	}
	for _, rel := range order {
		if allNil(nested[rel]) {
			rec[rel] = nil
			continue
		}
		rec[rel] = nested[rel]
	}
	return rec
}

func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func allNil(r query.Record) bool {
	for _, v := range r {
		if v != nil {
			return false
		}
	}
	return true
}
