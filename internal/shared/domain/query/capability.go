package query

import (
	"slices"
	"strings"
	"unicode"
)

// ---------------- Contratos de capacidad ----------------

// Queryable declara la tabla de una entidad y los whitelists exactos de
// filtros, ordenamientos, campos y relaciones. Embebiendo Capabilities se
// obtienen las implementaciones por defecto (pertenencia a conjunto).
type Queryable interface {
	TableName() string
	KeyColumn() string
	AllowedFilters() []string
	AllowedSorts() []string
	AllowedFields() []string
	AllowedIncludes() []string
	DefaultSort() (Sort, bool)
	DefaultFields() []string
	IsFilterAllowed(field string) bool
	IsSortAllowed(field string) bool
	IsFieldAllowed(field string) bool
	IsIncludeAllowed(relation string) bool
}

// Filterable permite a la entidad compilar filtros con reglas propias
// (casts, funciones). Devolver false delega en la estrategia por defecto.
type Filterable interface {
	ApplyBasicFilter(column string, op Operator, value FilterValue) (Fragment, bool)
}

// Sortable permite a la entidad personalizar el ORDER BY de una columna.
// Devolver "" delega en la estrategia por defecto.
type Sortable interface {
	ApplyBasicSort(column string, dir Direction) string
}

// Includable describe cómo se cargan las relaciones de la entidad.
type Includable interface {
	Relation(name string) (Relation, bool)
	BuildJoinClause(relation, table string) (string, bool)
	ForeignKey(relation string) string
	ShouldEagerLoad(relation string) bool
}

// SoftDeletable marca entidades con borrado lógico.
type SoftDeletable interface {
	SoftDeleteColumn() string
}

// Typed expone el tipo de cada columna filtrable.
type Typed interface {
	FieldType(field string) FieldType
}

// Nullable marca las columnas que admiten NULL. La paginación por cursor
// las ordena con los NULL al final y compara el keyset teniéndolos en cuenta.
type Nullable interface {
	IsNullable(field string) bool
}

// Auditable expone las cadenas de auditoría que se cargan por la vía rápida.
type Auditable interface {
	AuditChains() []AuditChain
}

// ---------------- Capabilities ----------------

// Capabilities es el descriptor estático de una entidad. Es de solo lectura
// una vez construido y se comparte entre peticiones.
type Capabilities struct {
	Table        string
	Key          string
	Filters      []string
	Sorts        []string
	Fields       []string
	Includes     []string
	Defaults     []string
	DefaultOrder *Sort
	Types        map[string]FieldType
	Nulls        []string
	SoftDelete   string
}

var (
	_ Queryable = Capabilities{}
	_ Typed     = Capabilities{}
	_ Nullable  = Capabilities{}
)

func (c Capabilities) TableName() string { return c.Table }

// KeyColumn es la clave primaria; "id" si no se declara.
func (c Capabilities) KeyColumn() string {
	if c.Key == "" {
		return "id"
	}
	return c.Key
}

func (c Capabilities) AllowedFilters() []string { return c.Filters }
func (c Capabilities) AllowedSorts() []string { return c.Sorts }
func (c Capabilities) AllowedFields() []string { return c.Fields }
func (c Capabilities) AllowedIncludes() []string { return c.Includes }

func (c Capabilities) DefaultSort() (Sort, bool) {
	if c.DefaultOrder == nil {
		return Sort{}, false
	}
	return *c.DefaultOrder, true
}

// DefaultFields cae en AllowedFields si no hay proyección por defecto.
func (c Capabilities) DefaultFields() []string {
	if len(c.Defaults) > 0 {
		return c.Defaults
	}
	return c.Fields
}

func (c Capabilities) IsFilterAllowed(field string) bool { return slices.Contains(c.Filters, field) }
func (c Capabilities) IsSortAllowed(field string) bool { return slices.Contains(c.Sorts, field) }
func (c Capabilities) IsFieldAllowed(field string) bool { return slices.Contains(c.Fields, field) }

// IsIncludeAllowed compara la ruta literal, incluidas las compuestas.
func (c Capabilities) IsIncludeAllowed(relation string) bool {
	return slices.Contains(c.Includes, relation)
}

func (c Capabilities) FieldType(field string) FieldType {
	return c.Types[field]
}

func (c Capabilities) IsNullable(field string) bool { return slices.Contains(c.Nulls, field) }

// ---------------- Relaciones ----------------

// RelationKind distingue hacia dónde apunta la clave foránea.
type RelationKind int

const (
	// BelongsTo: la clave foránea está en la tabla padre (tasks.assignee_id).
	BelongsTo RelationKind = iota
	// HasMany: la clave foránea está en la tabla relacionada (tasks.assignee_id para users.tasks).
	HasMany
)

// Relation describe una relación declarada.
type Relation struct {
	Name       string
	Kind       RelationKind
	Table      string
	ForeignKey string // vacío = inferida con InferForeignKey
	OwnerKey   string // vacío = "id"
	Columns    []string
	Eager      bool
	Nested     RelationSet
}

// Owner devuelve la clave referenciada por la foránea.
func (r Relation) Owner() string {
	if r.OwnerKey == "" {
		return "id"
	}
	return r.OwnerKey
}

// RelationSet es la implementación por defecto de Includable.
type RelationSet map[string]Relation

var _ Includable = RelationSet{}

func (rs RelationSet) Relation(name string) (Relation, bool) {
	r, ok := rs[name]
	if ok && r.Name == "" {
		r.Name = name
	}
	return r, ok
}

// ForeignKey devuelve la foránea explícita o la inferida del nombre.
func (rs RelationSet) ForeignKey(relation string) string {
	if r, ok := rs[relation]; ok && r.ForeignKey != "" {
		return r.ForeignKey
	}
	return InferForeignKey(relation)
}

func (rs RelationSet) ShouldEagerLoad(relation string) bool {
	r, ok := rs[relation]
	return ok && r.Eager
}

// BuildJoinClause genera un LEFT JOIN para relaciones BelongsTo. Las HasMany
// multiplicarían filas y no se resuelven con JOIN.
func (rs RelationSet) BuildJoinClause(relation, table string) (string, bool) {
	r, ok := rs.Relation(relation)
	if !ok || r.Kind != BelongsTo || r.Table == "" {
		return "", false
	}
	alias := JoinAlias(relation)
	return "LEFT JOIN " + r.Table + " AS " + alias +
		" ON " + alias + "." + r.Owner() + " = " + table + "." + rs.ForeignKey(relation), true
}

// JoinAlias es el alias SQL de una relación unida por JOIN.
func JoinAlias(relation string) string {
	return "rel_" + SnakeCase(relation)
}

// InferForeignKey: plural => singular_id ("organizations" => "organization_id"),
// singular => relation_id ("assignee" => "assignee_id").
func InferForeignKey(relation string) string {
	return Singular(SnakeCase(relation)) + "_id"
}

// Singular aplica las reglas inglesas más comunes.
func Singular(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"), strings.HasSuffix(word, "xes"), strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"):
		return word
	case strings.HasSuffix(word, "s") && len(word) > 1:
		return word[:len(word)-1]
	}
	return word
}

// SnakeCase convierte camelCase a snake_case.
func SnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ---------------- Cadena de auditoría ----------------

// Tramos fijos de la cadena actor → organizaciones → puesto → nivel.
const (
	AuditOrganizations = "organizations"
	AuditPosition      = "position"
	AuditLevel         = "level"
)

// AuditChain describe la cadena actor → organizations → position → level
// que se resuelve con una única consulta de hasta cuatro LEFT JOIN.
type AuditChain struct {
	Relation   string // p.ej. "createdBy"
	ForeignKey string // columna del padre que apunta al actor, p.ej. "created_by"

	ActorTable        string
	OrganizationTable string
	PositionTable     string
	LevelTable        string

	OrganizationActorKey string // organizations.user_id
	PositionKey          string // organizations.position_id
	LevelKey             string // positions.level_id

	ActorColumns        []string
	OrganizationColumns []string
	PositionColumns     []string
	LevelColumns        []string
}

// Depth devuelve cuántos tramos de la cadena pide include (1..4) o 0 si
// include no pertenece a esta cadena.
func (a AuditChain) Depth(include Include) int {
	segs := include.Segments()
	if segs[0] != a.Relation || len(segs) > 4 {
		return 0
	}
	expected := []string{a.Relation, AuditOrganizations, AuditPosition, AuditLevel}
	for i, s := range segs {
		if s != expected[i] {
			return 0
		}
	}
	return len(segs)
}

// SoftDeleteColumn vacío desactiva el borrado lógico.
func (c Capabilities) SoftDeleteColumn() string {
	return c.SoftDelete
}
