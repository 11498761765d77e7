package query

import (
	"fmt"
	"strings"
)

// ValueKind describe la forma del valor de un filtro.
type ValueKind int

const (
	SingleValue ValueKind = iota
	MultipleValue
	RangeValue
	NoValue
)

func (k ValueKind) String() string {
	switch k {
	case SingleValue:
		return "single"
	case MultipleValue:
		return "multiple"
	case RangeValue:
		return "range"
	default:
		return "none"
	}
}

// FilterValue es el valor de un filtro: un escalar, una lista o un rango.
type FilterValue struct {
	Kind   ValueKind
	Scalar any
	Values []any
}

// Single crea un valor escalar.
func Single(v any) FilterValue {
	return FilterValue{Kind: SingleValue, Scalar: v}
}

// Multiple crea un valor lista (in / not_in).
func Multiple(vs ...any) FilterValue {
	return FilterValue{Kind: MultipleValue, Values: append([]any(nil), vs...)}
}

// Range crea un valor rango (between). Solo se usan los dos primeros elementos.
func Range(vs ...any) FilterValue {
	return FilterValue{Kind: RangeValue, Values: append([]any(nil), vs...)}
}

// None es el valor de los operadores de nulidad.
func None() FilterValue {
	return FilterValue{Kind: NoValue}
}

// List devuelve el valor como lista, sea cual sea su forma.
func (v FilterValue) List() []any {
	switch v.Kind {
	case SingleValue:
		if v.Scalar == nil {
			return nil
		}
		return []any{v.Scalar}
	case MultipleValue, RangeValue:
		return v.Values
	}
	return nil
}

// reshape adapta el valor a la forma que espera el operador.
func (v FilterValue) reshape(kind ValueKind) FilterValue {
	if v.Kind == kind {
		return v
	}
	switch kind {
	case SingleValue:
		list := v.List()
		if len(list) == 0 {
			return Single(nil)
		}
		return Single(list[0])
	case MultipleValue:
		return Multiple(v.List()...)
	case RangeValue:
		return Range(v.List()...)
	}
	return None()
}

// ---------------- Filter ----------------

// Filter es una condición sobre un campo de la entidad.
// Los filtros con Or=true forman un único grupo OR que se combina con AND
// con el resto.
type Filter struct {
	Field    string
	Operator Operator
	Value    FilterValue
	Or       bool

	// Raw contiene el fragmento SQL de un filtro OpRaw; sus argumentos van
	// en Value.Values y se marcan con '?'.
	Raw string
}

// NewFilter construye un filtro normalizando la forma del valor.
func NewFilter(field string, op Operator, value FilterValue) Filter {
	return Filter{
		Field:    field,
		Operator: op,
		Value:    value.reshape(op.Shape()),
	}
}

// Validate comprueba la coherencia interna del filtro (no el whitelist).
func (f Filter) Validate() error {
	if f.Operator.Category() == CategoryUnknown {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidParam, f.Operator)
	}
	if f.Operator == OpRaw {
		if strings.TrimSpace(f.Raw) == "" {
			return fmt.Errorf("%w: empty raw filter", ErrInvalidParam)
		}
		if strings.Count(f.Raw, "?") != len(f.Value.Values) {
			return fmt.Errorf("%w: raw filter expects %d args, got %d",
				ErrInvalidParam, strings.Count(f.Raw, "?"), len(f.Value.Values))
		}
		return nil
	}
	if f.Field == "" {
		return fmt.Errorf("%w: empty filter field", ErrInvalidParam)
	}
	return nil
}

func (f Filter) String() string {
	if f.Operator == OpRaw {
		return "raw(" + f.Raw + ")"
	}
	prefix := ""
	if f.Or {
		prefix = "or:"
	}
	return fmt.Sprintf("%s%s %s", prefix, f.Field, f.Operator)
}
