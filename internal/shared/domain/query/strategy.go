package query

import (
	"strings"
)

// ---------------- Fragmentos SQL ----------------

// Fragment es un trozo de SQL con sus argumentos posicionales.
// Los valores NUNCA se interpolan: cada argumento se marca con '?' y el
// dialecto reescribe los marcadores al compilar la sentencia final.
type Fragment struct {
	SQL  string
	Args []any
}

// Empty indica que el fragmento no aporta condición.
func (f Fragment) Empty() bool {
	return strings.TrimSpace(f.SQL) == ""
}

const (
	alwaysFalse = "1=0"
	alwaysTrue  = "1=1"
)

// ---------------- Estrategia por defecto de filtros ----------------

// ApplyFilter compila un filtro sobre column. Si la entidad implementa
// Filterable y acepta el operador, se usa su estrategia; si no, la de
// por defecto.
func ApplyFilter(f Filter, column string, custom Filterable) Fragment {
	if f.Operator == OpRaw {
		return Fragment{SQL: "(" + f.Raw + ")", Args: append([]any(nil), f.Value.Values...)}
	}
	if custom != nil {
		if frag, ok := custom.ApplyBasicFilter(column, f.Operator, f.Value); ok {
			return frag
		}
	}
	frag, _ := ApplyBasicFilter(column, f.Operator, f.Value)
	return frag
}

// ApplyBasicFilter despacha por categoría de operador. Devuelve false si el
// operador no se puede compilar; en ese caso el fragmento es siempre falso.
func ApplyBasicFilter(column string, op Operator, value FilterValue) (Fragment, bool) {
	switch op.Category() {
	case CategoryEquality:
		return ApplyEqualityFilter(column, op, value), true
	case CategoryRange:
		return ApplyRangeFilter(column, op, value), true
	case CategorySet:
		return ApplyInFilter(column, value.List(), op == OpNotIn), true
	case CategoryPattern:
		return ApplyPatternFilter(column, op, value), true
	case CategoryNull:
		return ApplyNullFilter(column, op == OpIsNull), true
	}
	return Fragment{SQL: alwaysFalse}, false
}

// ApplyEqualityFilter compila eq / ne. Un valor nulo se traduce a IS [NOT] NULL.
func ApplyEqualityFilter(column string, op Operator, value FilterValue) Fragment {
	v := value.reshape(SingleValue).Scalar
	if v == nil {
		return ApplyNullFilter(column, op == OpEq)
	}
	if op == OpNe {
		return Fragment{SQL: column + " <> ?", Args: []any{v}}
	}
	return Fragment{SQL: column + " = ?", Args: []any{v}}
}

// ApplyRangeFilter compila gt / gte / lt / lte / between / not_between.
// Un between con menos de dos valores degrada a "column IS NOT NULL".
func ApplyRangeFilter(column string, op Operator, value FilterValue) Fragment {
	switch op {
	case OpBetween, OpNotBetween:
		bounds := value.List()
		if len(bounds) < 2 || bounds[0] == nil || bounds[1] == nil {
			return ApplyNullFilter(column, false)
		}
		keyword := " BETWEEN ? AND ?"
		if op == OpNotBetween {
			keyword = " NOT BETWEEN ? AND ?"
		}
		return Fragment{SQL: column + keyword, Args: []any{bounds[0], bounds[1]}}
	}

	v := value.reshape(SingleValue).Scalar
	if v == nil {
		return ApplyNullFilter(column, false)
	}
	var sym string
	switch op {
	case OpGt:
		sym = ">"
	case OpGte:
		sym = ">="
	case OpLt:
		sym = "<"
	default:
		sym = "<="
	}
	return Fragment{SQL: column + " " + sym + " ?", Args: []any{v}}
}

// ApplyInFilter compila in / not_in. Una lista vacía nunca genera SQL
// inválido: IN () es siempre falso y NOT IN () siempre verdadero.
func ApplyInFilter(column string, values []any, negate bool) Fragment {
	if len(values) == 0 {
		if negate {
			return Fragment{SQL: alwaysTrue}
		}
		return Fragment{SQL: alwaysFalse}
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	keyword := " IN ("
	if negate {
		keyword = " NOT IN ("
	}
	return Fragment{SQL: column + keyword + marks + ")", Args: append([]any(nil), values...)}
}

// ApplyPatternFilter compila like / ilike / contains / starts_with / ends_with
// y sus variantes insensibles, que se traducen a ILIKE.
func ApplyPatternFilter(column string, op Operator, value FilterValue) Fragment {
	v := value.reshape(SingleValue).Scalar
	if v == nil {
		return ApplyNullFilter(column, false)
	}
	s := toString(v)

	var pattern string
	escaped := true
	switch op {
	case OpContains, OpIContains:
		pattern = "%" + EscapeLike(s) + "%"
	case OpStartsWith, OpIStartsWith:
		pattern = EscapeLike(s) + "%"
	case OpEndsWith, OpIEndsWith:
		pattern = "%" + EscapeLike(s)
	default:
		// like / ilike / not_like: el patrón lo aporta el cliente
		pattern = s
		escaped = false
	}

	keyword := " LIKE ?"
	switch {
	case op == OpNotLike:
		keyword = " NOT LIKE ?"
	case op.CaseInsensitive():
		keyword = " ILIKE ?"
	}
	sql := column + keyword
	if escaped {
		sql += ` ESCAPE '\'`
	}
	return Fragment{SQL: sql, Args: []any{pattern}}
}

// ApplyNullFilter compila is_null / is_not_null.
func ApplyNullFilter(column string, isNull bool) Fragment {
	if isNull {
		return Fragment{SQL: column + " IS NULL"}
	}
	return Fragment{SQL: column + " IS NOT NULL"}
}

// EscapeLike escapa los comodines de LIKE para búsquedas literales.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ---------------- Estrategia por defecto de ordenamiento ----------------

// ApplyBasicSort devuelve "column ASC|DESC".
func ApplyBasicSort(column string, dir Direction) string {
	if dir == Desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// ApplySort usa la estrategia de la entidad si existe.
func ApplySort(s Sort, column string, custom Sortable) string {
	if custom != nil {
		if expr := custom.ApplyBasicSort(column, s.Direction); expr != "" {
			return expr
		}
	}
	return ApplyBasicSort(column, s.Direction)
}

// ComposeSorts une varias expresiones ORDER BY en orden de declaración.
func ComposeSorts(parts []string) string {
	return strings.Join(parts, ", ")
}
