package sqlexec

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// ErrNoEntity indica un Builder sin entidad asociada.
var ErrNoEntity = errors.New("query builder has no entity")

// Statement es una sentencia lista para el driver.
type Statement struct {
	SQL  string
	Args []any
}

// Plan es el resultado de compilar un Builder: la consulta principal, la de
// conteo y lo que el ejecutor necesita para paginar y cargar relaciones.
type Plan struct {
	Main     Statement
	Count    Statement
	Table    string
	Key      string
	PerPage  int
	Page     int
	Mode     query.PaginationMode
	Cursor   *CursorPlan
	Joined   []string
	Batched  []query.Include
	Audit    []AuditRequest
	Warnings []string
}

// CursorPlan describe el keyset de una consulta en modo Cursor.
type CursorPlan struct {
	Field     string
	Key       string
	Direction query.Direction
	Previous  bool
	HasToken  bool
	Nullable  bool // los NULL cuentan como el valor más alto
}

// AuditRequest es una cadena de auditoría pedida hasta cierta profundidad.
type AuditRequest struct {
	Chain query.AuditChain
	Depth int
}

type compileMode int

const (
	modePaginate compileMode = iota
	modeAll
	modeFirst
)

// Compiler traduce un Builder a SQL parametrizado. Los valores nunca se
// interpolan en el texto de la sentencia.
type Compiler struct {
	dialect Dialect
}

func NewCompiler(d Dialect) *Compiler {
	if d == nil {
		d = Postgres
	}
	return &Compiler{dialect: d}
}

// Compile genera la consulta paginada y la de conteo.
func (c *Compiler) Compile(b query.Builder) (Plan, error) {
	return c.compile(b, modePaginate)
}

// CompileAll genera la consulta sin LIMIT ni OFFSET.
func (c *Compiler) CompileAll(b query.Builder) (Plan, error) {
	return c.compile(b, modeAll)
}

// CompileFirst genera la consulta con LIMIT 1.
func (c *Compiler) CompileFirst(b query.Builder) (Plan, error) {
	return c.compile(b, modeFirst)
}

// CompileCount genera solo el COUNT(*) con los filtros del Builder.
func (c *Compiler) CompileCount(b query.Builder) (Statement, error) {
	plan, err := c.compile(b, modeAll)
	if err != nil {
		return Statement{}, err
	}
	return plan.Count, nil
}

type joinSpec struct {
	relation string
	clause   string
	columns  []string
}

func (c *Compiler) compile(b query.Builder, mode compileMode) (Plan, error) {
	entity := b.Entity()
	if entity == nil {
		return Plan{}, ErrNoEntity
	}
	table := entity.TableName()
	key := entity.KeyColumn()
	pagination := b.EffectivePagination()

	plan := Plan{
		Table:   table,
		Key:     key,
		PerPage: pagination.PerPage(),
		Page:    pagination.Page(),
		Mode:    pagination.Mode(),
	}
	switch mode {
	case modeAll:
		plan.Mode = query.ModeUnset
		plan.Page = 0
	case modeFirst:
		plan.Mode = query.ModeUnset
		plan.PerPage = 1
		plan.Page = 0
	}

	// --- Relaciones: auditoría, JOIN o consulta por lotes ---
	includable, _ := entity.(query.Includable)
	var joins []joinSpec
	var belongsToKeys []string
	for _, inc := range b.Includes() {
		if req, ok := auditRequestFor(entity, inc); ok {
			plan.Audit = mergeAudit(plan.Audit, req)
			continue
		}
		if includable == nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("include %q has no relation loader", inc.Relation))
			continue
		}
		if inc.Depth() == 1 && includable.ShouldEagerLoad(inc.Relation) {
			if clause, ok := includable.BuildJoinClause(inc.Relation, table); ok {
				rel, _ := includable.Relation(inc.Relation)
				cols := rel.Columns
				if len(cols) == 0 {
					cols = []string{rel.Owner()}
				}
				joins = append(joins, joinSpec{relation: inc.Relation, clause: clause, columns: cols})
				plan.Joined = append(plan.Joined, inc.Relation)
				continue
			}
		}
		if rel, ok := includable.Relation(inc.Root()); ok && rel.Kind == query.BelongsTo {
			belongsToKeys = append(belongsToKeys, includable.ForeignKey(inc.Root()))
		}
		plan.Batched = append(plan.Batched, inc)
	}

	qualified := len(joins) > 0
	col := func(name string) string {
		if qualified && !strings.Contains(name, ".") {
			return table + "." + name
		}
		return name
	}

	// --- Ordenamiento y keyset ---
	sorts := b.Sorts()
	if len(sorts) == 0 {
		if ds, ok := entity.DefaultSort(); ok {
			sorts = []query.Sort{ds}
		}
	}

	var cursorFrag *query.Fragment
	var orderParts []string
	if plan.Mode == query.ModeCursor {
		primary := query.Sort{Field: key, Direction: query.Asc}
		if len(sorts) > 0 {
			primary = sorts[0]
		}
		if len(sorts) > 1 {
			plan.Warnings = append(plan.Warnings, "cursor pagination orders by the first sort only")
		}
		cp := &CursorPlan{Field: primary.Field, Key: key, Direction: primary.Direction}
		if n, ok := entity.(query.Nullable); ok && primary.Field != key {
			cp.Nullable = n.IsNullable(primary.Field)
		}
		if token := pagination.Cursor(); token != "" {
			cur, err := DecodeCursor(token)
			if err != nil {
				plan.Warnings = append(plan.Warnings, "cursor is invalid and was ignored")
			} else {
				cp.HasToken = true
				cp.Previous = cur.Previous
				// El JSON del token pierde el tipo: las fechas vuelven como texto.
				if typed, ok := entity.(query.Typed); ok && typed.FieldType(primary.Field) == query.FieldTime {
					if ts, ok := query.TimeValue(cur.Value); ok {
						cur.Value = ts
					}
				}
				var frag query.Fragment
				if cp.Nullable {
					frag = nullableKeysetPredicate(col(primary.Field), col(key), effectiveDirection(cp), cur)
				} else {
					frag = keysetPredicate(col(primary.Field), col(key), primary.Field == key, effectiveDirection(cp), cur)
				}
				cursorFrag = &frag
			}
		}
		dir := effectiveDirection(cp)
		sortPart := query.ApplyBasicSort(col(primary.Field), dir)
		if cp.Nullable {
			sortPart += nullsOrder(dir)
		}
		orderParts = append(orderParts, sortPart)
		if primary.Field != key {
			orderParts = append(orderParts, query.ApplyBasicSort(col(key), dir))
		}
		plan.Cursor = cp
	} else {
		sortable, _ := entity.(query.Sortable)
		for _, s := range sorts {
			orderParts = append(orderParts, query.ApplySort(s, col(s.Field), sortable))
		}
	}

	// --- Proyección ---
	fields := b.Fields()
	if len(fields) == 0 {
		fields = slices.Clone(entity.DefaultFields())
	}
	if len(fields) > 0 {
		ensure := func(f string) {
			if f != "" && !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
		if len(b.Includes()) > 0 || plan.Cursor != nil {
			ensure(key)
		}
		for _, fk := range belongsToKeys {
			ensure(fk)
		}
		if plan.Cursor != nil {
			ensure(plan.Cursor.Field)
		}
	}
	var selectList []string
	if len(fields) == 0 {
		selectList = append(selectList, col("*"))
	}
	for _, f := range fields {
		selectList = append(selectList, col(f))
	}
	for _, j := range joins {
		alias := query.JoinAlias(j.relation)
		for _, jc := range j.columns {
			selectList = append(selectList, fmt.Sprintf("%s.%s AS %s", alias, jc, c.dialect.QuoteIdent(j.relation+nestSeparator+jc)))
		}
	}

	// --- WHERE ---
	where := c.whereFragments(b, entity, col)

	// --- Sentencia principal ---
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selectList, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	for _, j := range joins {
		sb.WriteString(" ")
		sb.WriteString(j.clause)
	}
	mainWhere := where
	if cursorFrag != nil {
		mainWhere = append(slices.Clone(where), *cursorFrag)
	}
	whereSQL, whereArgs := joinFragments(mainWhere)
	if whereSQL != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(whereSQL)
	}
	if len(orderParts) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(query.ComposeSorts(orderParts))
	}
	switch {
	case mode == modeFirst:
		sb.WriteString(" LIMIT 1")
	case mode == modeAll:
	case plan.Mode == query.ModeCursor:
		sb.WriteString(" LIMIT " + strconv.Itoa(plan.PerPage+1))
	default:
		sb.WriteString(" LIMIT " + strconv.Itoa(pagination.Limit()) + " OFFSET " + strconv.Itoa(pagination.Offset()))
	}
	plan.Main = c.statement(sb.String(), whereArgs)

	// --- Conteo: mismo WHERE, sin ORDER BY ni LIMIT ---
	countSQL, countArgs := joinFragments(where)
	count := "SELECT COUNT(*) FROM " + table
	if countSQL != "" {
		count += " WHERE " + countSQL
	}
	plan.Count = c.statement(count, countArgs)

	return plan, nil
}

func (c *Compiler) statement(sql string, args []any) Statement {
	if args == nil {
		args = []any{}
	}
	return Statement{SQL: c.dialect.Finalize(c.dialect.Rebind(sql)), Args: args}
}

// whereFragments compila filtros AND, el grupo OR y el borrado lógico.
func (c *Compiler) whereFragments(b query.Builder, entity query.Queryable, col func(string) string) []query.Fragment {
	custom, _ := entity.(query.Filterable)
	var and, or []query.Fragment
	for _, f := range b.Filters() {
		frag := query.ApplyFilter(f, col(f.Field), custom)
		if frag.Empty() {
			continue
		}
		if f.Or {
			or = append(or, frag)
		} else {
			and = append(and, frag)
		}
	}
	if len(or) > 0 {
		parts := make([]string, 0, len(or))
		var args []any
		for _, f := range or {
			parts = append(parts, f.SQL)
			args = append(args, f.Args...)
		}
		and = append(and, query.Fragment{SQL: "(" + strings.Join(parts, " OR ") + ")", Args: args})
	}
	if sd, ok := entity.(query.SoftDeletable); ok && sd.SoftDeleteColumn() != "" {
		switch b.Trashed() {
		case query.ExcludeTrashed:
			and = append(and, query.ApplyNullFilter(col(sd.SoftDeleteColumn()), true))
		case query.OnlyTrashed:
			and = append(and, query.ApplyNullFilter(col(sd.SoftDeleteColumn()), false))
		}
	}
	return and
}

func joinFragments(frags []query.Fragment) (string, []any) {
	if len(frags) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(frags))
	var args []any
	for _, f := range frags {
		parts = append(parts, f.SQL)
		args = append(args, f.Args...)
	}
	return strings.Join(parts, " AND "), args
}

// effectiveDirection invierte el orden cuando se navega hacia atrás.
func effectiveDirection(cp *CursorPlan) query.Direction {
	if cp.Previous {
		return cp.Direction.Reverse()
	}
	return cp.Direction
}

// keysetPredicate: (sort, key) > (?, ?) en ASC, < en DESC.
func keysetPredicate(sortCol, keyCol string, sortIsKey bool, dir query.Direction, cur Cursor) query.Fragment {
	op := ">"
	if dir == query.Desc {
		op = "<"
	}
	if sortIsKey {
		return query.Fragment{SQL: keyCol + " " + op + " ?", Args: []any{cur.ID}}
	}
	return query.Fragment{
		SQL:  "(" + sortCol + ", " + keyCol + ") " + op + " (?, ?)",
		Args: []any{cur.Value, cur.ID},
	}
}

// nullableKeysetPredicate avanza el keyset sobre una columna con NULL, que
// se ordenan como el valor más alto (NULLS LAST en ASC, NULLS FIRST en DESC).
func nullableKeysetPredicate(sortCol, keyCol string, dir query.Direction, cur Cursor) query.Fragment {
	switch {
	case dir == query.Asc && cur.Value == nil:
		return query.Fragment{SQL: "(" + sortCol + " IS NULL AND " + keyCol + " > ?)", Args: []any{cur.ID}}
	case dir == query.Asc:
		return query.Fragment{
			SQL:  "(" + sortCol + " > ? OR (" + sortCol + " = ? AND " + keyCol + " > ?) OR " + sortCol + " IS NULL)",
			Args: []any{cur.Value, cur.Value, cur.ID},
		}
	case cur.Value == nil:
		return query.Fragment{SQL: "(" + sortCol + " IS NOT NULL OR " + keyCol + " < ?)", Args: []any{cur.ID}}
	default:
		return query.Fragment{
			SQL:  "(" + sortCol + " < ? OR (" + sortCol + " = ? AND " + keyCol + " < ?))",
			Args: []any{cur.Value, cur.Value, cur.ID},
		}
	}
}

func nullsOrder(dir query.Direction) string {
	if dir == query.Desc {
		return " NULLS FIRST"
	}
	return " NULLS LAST"
}

func auditRequestFor(entity query.Queryable, inc query.Include) (AuditRequest, bool) {
	auditable, ok := entity.(query.Auditable)
	if !ok {
		return AuditRequest{}, false
	}
	for _, chain := range auditable.AuditChains() {
		if d := chain.Depth(inc); d > 0 {
			return AuditRequest{Chain: chain, Depth: d}, true
		}
	}
	return AuditRequest{}, false
}

// mergeAudit conserva una sola petición por cadena con la mayor profundidad.
func mergeAudit(reqs []AuditRequest, req AuditRequest) []AuditRequest {
	for i, r := range reqs {
		if r.Chain.Relation == req.Chain.Relation {
			if req.Depth > r.Depth {
				reqs[i].Depth = req.Depth
			}
			return reqs
		}
	}
	return append(reqs, req)
}
