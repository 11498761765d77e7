package query

import (
	"fmt"
	"maps"
	"slices"
)

// DefaultMaxPerPage limita el tamaño de página aceptado.
const DefaultMaxPerPage = 100

// TrashedMode controla el filtrado de filas con borrado lógico.
type TrashedMode int

const (
	ExcludeTrashed TrashedMode = iota
	WithTrashed
	OnlyTrashed
)

func (m TrashedMode) String() string {
	switch m {
	case WithTrashed:
		return "with"
	case OnlyTrashed:
		return "only"
	}
	return "exclude"
}

// ---------------- Opciones ----------------

type options struct {
	strict         bool
	maxPerPage     int
	defaultPerPage int
}

// Option configura un Builder.
type Option func(*options)

// WithStrict hace que FromParams devuelva ErrInvalidParam en lugar de
// ignorar los parámetros inválidos.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// WithMaxPerPage cambia el tope de per_page.
func WithMaxPerPage(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPerPage = n
		}
	}
}

// WithDefaultPerPage cambia el tamaño usado cuando per_page no llega.
func WithDefaultPerPage(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.defaultPerPage = n
		}
	}
}

// ---------------- Builder ----------------

// Builder acumula filtros, ordenamientos, relaciones, proyección y
// paginación validando cada nombre contra el whitelist de la entidad.
//
// Es un valor inmutable: cada método devuelve un Builder nuevo y nunca
// modifica el receptor. Los nombres no permitidos se aceptan como no-op
// (la llamada funciona pero no tiene efecto) y quedan en Warnings.
type Builder struct {
	entity     Queryable
	opts       options
	filters    []Filter
	sorts      []Sort
	includes   []Include
	fields     []string
	pagination Pagination
	appends    map[string]string
	trashed    TrashedMode
	warnings   []string
}

// New crea un Builder vacío para la entidad.
func New(entity Queryable, opts ...Option) Builder {
	o := options{maxPerPage: DefaultMaxPerPage, defaultPerPage: DefaultPerPage}
	for _, opt := range opts {
		opt(&o)
	}
	return Builder{entity: entity, opts: o}
}

func (b Builder) clone() Builder {
	nb := b
	nb.filters = slices.Clone(b.filters)
	nb.sorts = slices.Clone(b.sorts)
	nb.includes = slices.Clone(b.includes)
	nb.fields = slices.Clone(b.fields)
	nb.appends = maps.Clone(b.appends)
	nb.warnings = slices.Clone(b.warnings)
	return nb
}

// Clone devuelve una copia independiente (p.ej. para un conteo aparte).
func (b Builder) Clone() Builder {
	return b.clone()
}

func (b Builder) warn(format string, args ...any) Builder {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
	return b
}

// ---------------- Filtros ----------------

// Where añade un filtro si el campo está en el whitelist de filtros.
func (b Builder) Where(field string, op Operator, value FilterValue) Builder {
	return b.addFilter(NewFilter(field, op, value))
}

// OrWhere añade el filtro al grupo OR.
func (b Builder) OrWhere(field string, op Operator, value FilterValue) Builder {
	f := NewFilter(field, op, value)
	f.Or = true
	return b.addFilter(f)
}

func (b Builder) addFilter(f Filter) Builder {
	nb := b.clone()
	if f.Operator == OpRaw {
		return nb.warn("raw filters must be added with WhereRaw")
	}
	if err := f.Validate(); err != nil {
		return nb.warn("filter %q ignored: %v", f.Field, err)
	}
	if b.entity == nil || !b.entity.IsFilterAllowed(f.Field) {
		return nb.warn("filter %q is not allowed and was ignored", f.Field)
	}
	nb.filters = append(nb.filters, f)
	return nb
}

// WhereRaw añade un fragmento SQL con argumentos marcados con '?'. Solo para
// uso programático: nunca se construye a partir de parámetros de la petición.
func (b Builder) WhereRaw(sql string, args ...any) Builder {
	f := Filter{Operator: OpRaw, Raw: sql, Value: Multiple(args...)}
	nb := b.clone()
	if err := f.Validate(); err != nil {
		return nb.warn("raw filter ignored: %v", err)
	}
	nb.filters = append(nb.filters, f)
	return nb
}

func (b Builder) WhereEq(field string, v any) Builder { return b.Where(field, OpEq, Single(v)) }
func (b Builder) WhereNe(field string, v any) Builder { return b.Where(field, OpNe, Single(v)) }
func (b Builder) WhereGt(field string, v any) Builder { return b.Where(field, OpGt, Single(v)) }
func (b Builder) WhereGte(field string, v any) Builder { return b.Where(field, OpGte, Single(v)) }
func (b Builder) WhereLt(field string, v any) Builder { return b.Where(field, OpLt, Single(v)) }
func (b Builder) WhereLte(field string, v any) Builder { return b.Where(field, OpLte, Single(v)) }

func (b Builder) WhereLike(field, pattern string) Builder {
	return b.Where(field, OpLike, Single(pattern))
}

func (b Builder) WhereContains(field, text string) Builder {
	return b.Where(field, OpIContains, Single(text))
}

func (b Builder) WhereIn(field string, vs ...any) Builder {
	return b.Where(field, OpIn, Multiple(vs...))
}

func (b Builder) WhereNotIn(field string, vs ...any) Builder {
	return b.Where(field, OpNotIn, Multiple(vs...))
}

func (b Builder) WhereBetween(field string, from, to any) Builder {
	return b.Where(field, OpBetween, Range(from, to))
}

func (b Builder) WhereNull(field string) Builder { return b.Where(field, OpIsNull, None()) }
func (b Builder) WhereNotNull(field string) Builder { return b.Where(field, OpIsNotNull, None()) }

// ---------------- Ordenamiento ----------------

// OrderBy añade un ordenamiento si el campo está permitido. El primero es la
// clave principal y los siguientes desempatan en orden de declaración.
func (b Builder) OrderBy(field string, dir Direction) Builder {
	nb := b.clone()
	if b.entity == nil || !b.entity.IsSortAllowed(field) {
		return nb.warn("sort %q is not allowed and was ignored", field)
	}
	if dir != Desc {
		dir = Asc
	}
	for _, s := range nb.sorts {
		if s.Field == field {
			return nb.warn("sort %q is duplicated and was ignored", field)
		}
	}
	nb.sorts = append(nb.sorts, Sort{Field: field, Direction: dir})
	return nb
}

func (b Builder) OrderByDesc(field string) Builder { return b.OrderBy(field, Desc) }

// OrderByString acepta "name,-created_at" o "name:desc".
func (b Builder) OrderByString(s string) Builder {
	nb := b
	for _, sort := range ParseSortString(s) {
		nb = nb.OrderBy(sort.Field, sort.Direction)
	}
	return nb
}

// ---------------- Relaciones y proyección ----------------

// With añade relaciones; la ruta completa debe figurar en el whitelist.
func (b Builder) With(relations ...string) Builder {
	nb := b.clone()
	for _, rel := range relations {
		inc, ok := NewInclude(rel)
		if !ok {
			continue
		}
		if b.entity == nil || !b.entity.IsIncludeAllowed(inc.Relation) {
			nb = nb.warn("include %q is not allowed and was ignored", inc.Relation)
			continue
		}
		if slices.Contains(nb.includes, inc) {
			continue
		}
		nb.includes = append(nb.includes, inc)
	}
	return nb
}

// Select restringe la proyección a los campos permitidos.
func (b Builder) Select(fields ...string) Builder {
	nb := b.clone()
	var selected []string
	for _, f := range fields {
		if b.entity == nil || !b.entity.IsFieldAllowed(f) {
			nb = nb.warn("field %q is not allowed and was ignored", f)
			continue
		}
		if !slices.Contains(selected, f) {
			selected = append(selected, f)
		}
	}
	if len(selected) > 0 {
		nb.fields = selected
	}
	return nb
}

// ---------------- Paginación ----------------

func (b Builder) setPagination(p Pagination) Builder {
	nb := b.clone()
	clamped, changed := p.clamp(b.opts.maxPerPage)
	if changed {
		nb = nb.warn("per_page %d exceeds the maximum and was capped to %d", p.PerPage(), b.opts.maxPerPage)
	}
	nb.pagination = clamped
	return nb
}

// OffsetPaginate fija el modo Offset sin condiciones.
func (b Builder) OffsetPaginate(page, perPage int) Builder {
	return b.setPagination(OffsetPagination(page, b.perPageOrDefault(perPage)))
}

// Paginate es un alias de OffsetPaginate.
func (b Builder) Paginate(page, perPage int) Builder {
	return b.OffsetPaginate(page, perPage)
}

// CursorPaginate fija el modo Cursor sin condiciones.
func (b Builder) CursorPaginate(perPage int, cursor string) Builder {
	return b.setPagination(CursorPagination(b.perPageOrDefault(perPage), cursor))
}

// PerPage cambia el tamaño conservando el modo; desde Unset pasa a Cursor.
func (b Builder) PerPage(n int) Builder {
	return b.setPagination(b.pagination.WithPerPage(b.perPageOrDefault(n)))
}

// Page solo tiene efecto en modo Offset.
func (b Builder) Page(n int) Builder {
	p := b.pagination.WithPage(n)
	if !b.pagination.IsSet() {
		p = OffsetPagination(n, b.opts.defaultPerPage)
	}
	return b.setPagination(p)
}

// Cursor solo tiene efecto en modo Cursor.
func (b Builder) Cursor(c string) Builder {
	p := b.pagination.WithCursor(c)
	if !b.pagination.IsSet() {
		p = CursorPagination(b.opts.defaultPerPage, c)
	}
	return b.setPagination(p)
}

func (b Builder) perPageOrDefault(n int) int {
	if n < 1 {
		return b.opts.defaultPerPage
	}
	return n
}

// ---------------- Borrado lógico y appends ----------------

func (b Builder) withTrashedMode(m TrashedMode) Builder {
	nb := b.clone()
	if sd, ok := b.entity.(SoftDeletable); !ok || sd.SoftDeleteColumn() == "" {
		return nb.warn("%s_trashed ignored: entity has no soft deletes", m)
	}
	nb.trashed = m
	return nb
}

func (b Builder) WithTrashed() Builder { return b.withTrashedMode(WithTrashed) }
func (b Builder) OnlyTrashed() Builder { return b.withTrashedMode(OnlyTrashed) }

// Appends guarda pares extra que se propagan a los enlaces de navegación.
func (b Builder) Appends(key, value string) Builder {
	nb := b.clone()
	if nb.appends == nil {
		nb.appends = make(map[string]string)
	}
	nb.appends[key] = value
	return nb
}

// ---------------- Lectura ----------------

func (b Builder) Entity() Queryable { return b.entity }
func (b Builder) Filters() []Filter { return slices.Clone(b.filters) }
func (b Builder) Sorts() []Sort { return slices.Clone(b.sorts) }
func (b Builder) Includes() []Include {
	return slices.Clone(b.includes)
}

// Fields devuelve nil si no se pidió proyección.
func (b Builder) Fields() []string { return slices.Clone(b.fields) }
func (b Builder) Pagination() Pagination { return b.pagination }
func (b Builder) AppendsMap() map[string]string { return maps.Clone(b.appends) }
func (b Builder) Trashed() TrashedMode { return b.trashed }
func (b Builder) Warnings() []string { return slices.Clone(b.warnings) }
func (b Builder) IsCursorPagination() bool { return b.pagination.IsCursor() }
func (b Builder) IsOffsetPagination() bool { return b.pagination.IsOffset() }
func (b Builder) Limit() int { return b.effectivePagination().Limit() }
func (b Builder) Offset() int { return b.effectivePagination().Offset() }
func (b Builder) Strict() bool { return b.opts.strict }
func (b Builder) MaxPerPage() int { return b.opts.maxPerPage }

// EffectivePagination es la paginación que se ejecuta: Unset se resuelve
// como Offset(1, per_page por defecto).
func (b Builder) EffectivePagination() Pagination {
	return b.effectivePagination()
}

func (b Builder) effectivePagination() Pagination {
	if b.pagination.IsSet() {
		return b.pagination
	}
	return OffsetPagination(1, b.opts.defaultPerPage)
}
