package sqlexec

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// RelationLoader resuelve includes con una consulta IN por relación y nivel,
// evitando el patrón N+1.
type RelationLoader struct {
	dialect Dialect
}

func NewRelationLoader(d Dialect) *RelationLoader {
	if d == nil {
		d = Postgres
	}
	return &RelationLoader{dialect: d}
}

// Load adjunta a records las relaciones pedidas en includes. Las rutas
// anidadas ("tasks.assignee") se resuelven recursivamente sobre las filas
// ya cargadas.
func (l *RelationLoader) Load(ctx context.Context, q queryer, relations query.Includable, records []query.Record, includes []query.Include) error {
	if len(records) == 0 || len(includes) == 0 {
		return nil
	}
	if relations == nil {
		return fmt.Errorf("%w: entity declares no relations", ErrUnsupportedRelation)
	}

	// Agrupamos por raíz conservando el orden de aparición.
	var roots []string
	children := map[string][]query.Include{}
	for _, inc := range includes {
		root := inc.Root()
		if _, seen := children[root]; !seen {
			roots = append(roots, root)
			children[root] = nil
		}
		if _, rest, ok := strings.Cut(inc.Relation, "."); ok {
			if child, ok := query.NewInclude(rest); ok {
				children[root] = append(children[root], child)
			}
		}
	}

	for _, root := range roots {
		rel, ok := relations.Relation(root)
		if !ok || rel.Table == "" {
			return fmt.Errorf("%w: %q", ErrUnsupportedRelation, root)
		}
		fk := relations.ForeignKey(root)
		if err := l.loadRelation(ctx, q, records, rel, fk, children[root]); err != nil {
			return err
		}
	}
	return nil
}

func (l *RelationLoader) loadRelation(ctx context.Context, q queryer, records []query.Record, rel query.Relation, fk string, nested []query.Include) error {
	// parentKey: columna del padre; matchKey: columna de la tabla relacionada.
	parentKey, matchKey := fk, rel.Owner()
	if rel.Kind == query.HasMany {
		parentKey, matchKey = rel.Owner(), fk
	}

	keys := distinctValues(records, parentKey)
	related := []query.Record{}
	if len(keys) > 0 {
		st := l.statement(rel, matchKey, nested, keys)
		rows, err := queryRecords(ctx, q, "load "+rel.Name, st)
		if err != nil {
			return err
		}
		related = rows
	}

	if len(nested) > 0 && len(related) > 0 {
		if err := l.Load(ctx, q, rel.Nested, related, nested); err != nil {
			return err
		}
	}

	grouped := map[string][]query.Record{}
	for _, r := range related {
		k := keyString(r[matchKey])
		grouped[k] = append(grouped[k], r)
	}
	for _, rec := range records {
		k := keyString(rec[parentKey])
		switch rel.Kind {
		case query.HasMany:
			children := grouped[k]
			if children == nil {
				children = []query.Record{}
			}
			rec[rel.Name] = children
		default:
			if match := grouped[k]; rec[parentKey] != nil && len(match) > 0 {
				rec[rel.Name] = match[0]
			} else {
				rec[rel.Name] = nil
			}
		}
	}
	return nil
}

func (l *RelationLoader) statement(rel query.Relation, matchKey string, nested []query.Include, keys []any) Statement {
	cols := "*"
	if len(rel.Columns) > 0 {
		selected := slices.Clone(rel.Columns)
		ensure := func(c string) {
			if !slices.Contains(selected, c) {
				selected = append(selected, c)
			}
		}
		ensure(matchKey)
		for _, inc := range nested {
			child, ok := rel.Nested.Relation(inc.Root())
			if !ok {
				continue
			}
			if child.Kind == query.HasMany {
				ensure(child.Owner())
			} else {
				ensure(rel.Nested.ForeignKey(inc.Root()))
			}
		}
		cols = strings.Join(selected, ", ")
	}
	in := query.ApplyInFilter(matchKey, keys, false)
	sql := "SELECT " + cols + " FROM " + rel.Table + " WHERE " + in.SQL + " ORDER BY " + matchKey
	return Statement{SQL: l.dialect.Finalize(l.dialect.Rebind(sql)), Args: in.Args}
}

// distinctValues devuelve los valores no nulos de column sin repetir.
func distinctValues(records []query.Record, column string) []any {
	seen := map[string]struct{}{}
	var out []any
	for _, r := range records {
		v, ok := r[column]
		if !ok || v == nil {
			continue
		}
		k := keyString(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// keyString normaliza claves de distintos tipos (int64, string, []byte).
func keyString(v any) string {
	return fmt.Sprint(normalizeValue(v))
}
