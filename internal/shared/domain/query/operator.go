package query

import "strings"

// ---------------- Operadores ----------------

// Operator identifica el tipo de comparación de un filtro.
type Operator string

const (
	OpEq          Operator = "eq"
	OpNe          Operator = "ne"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpLike        Operator = "like"
	OpNotLike     Operator = "not_like"
	OpILike       Operator = "ilike"
	OpContains    Operator = "contains"
	OpIContains   Operator = "icontains"
	OpStartsWith  Operator = "starts_with"
	OpIStartsWith Operator = "istarts_with"
	OpEndsWith    Operator = "ends_with"
	OpIEndsWith   Operator = "iends_with"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpIsNull      Operator = "is_null"
	OpIsNotNull   Operator = "is_not_null"
	OpBetween     Operator = "between"
	OpNotBetween  Operator = "not_between"
	OpRaw         Operator = "raw"
)

// Category agrupa operadores que comparten estrategia de compilación.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryEquality
	CategoryRange
	CategorySet
	CategoryPattern
	CategoryNull
	CategoryRaw
)

var operatorAliases = map[string]Operator{
	"=":           OpEq,
	"==":          OpEq,
	"!=":          OpNe,
	"<>":          OpNe,
	"neq":         OpNe,
	">":           OpGt,
	">=":          OpGte,
	"<":           OpLt,
	"<=":          OpLte,
	"nin":         OpNotIn,
	"notin":       OpNotIn,
	"null":        OpIsNull,
	"isnull":      OpIsNull,
	"not_null":    OpIsNotNull,
	"notnull":     OpIsNotNull,
	"startswith":  OpStartsWith,
	"endswith":    OpEndsWith,
	"notlike":     OpNotLike,
	"notbetween":  OpNotBetween,
	"istartswith": OpIStartsWith,
	"iendswith":   OpIEndsWith,
}

var operatorCategories = map[Operator]Category{
	OpEq:          CategoryEquality,
	OpNe:          CategoryEquality,
	OpGt:          CategoryRange,
	OpGte:         CategoryRange,
	OpLt:          CategoryRange,
	OpLte:         CategoryRange,
	OpBetween:     CategoryRange,
	OpNotBetween:  CategoryRange,
	OpIn:          CategorySet,
	OpNotIn:       CategorySet,
	OpLike:        CategoryPattern,
	OpNotLike:     CategoryPattern,
	OpILike:       CategoryPattern,
	OpContains:    CategoryPattern,
	OpIContains:   CategoryPattern,
	OpStartsWith:  CategoryPattern,
	OpIStartsWith: CategoryPattern,
	OpEndsWith:    CategoryPattern,
	OpIEndsWith:   CategoryPattern,
	OpIsNull:      CategoryNull,
	OpIsNotNull:   CategoryNull,
	OpRaw:         CategoryRaw,
}

// ParseOperator normaliza el nombre de un operador recibido por query string.
// Devuelve false si el operador no existe.
func ParseOperator(s string) (Operator, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return OpEq, true
	}
	if op, ok := operatorAliases[name]; ok {
		return op, true
	}
	op := Operator(name)
	if _, ok := operatorCategories[op]; ok {
		return op, true
	}
	return "", false
}

// Category devuelve la familia del operador.
func (o Operator) Category() Category {
	return operatorCategories[o]
}

// Shape indica la forma de valor que espera el operador.
func (o Operator) Shape() ValueKind {
	switch o {
	case OpIn, OpNotIn:
		return MultipleValue
	case OpBetween, OpNotBetween:
		return RangeValue
	case OpIsNull, OpIsNotNull:
		return NoValue
	case OpRaw:
		return MultipleValue
	default:
		return SingleValue
	}
}

// CaseInsensitive indica si el operador compara sin distinguir mayúsculas.
func (o Operator) CaseInsensitive() bool {
	switch o {
	case OpILike, OpIContains, OpIStartsWith, OpIEndsWith:
		return true
	}
	return false
}
