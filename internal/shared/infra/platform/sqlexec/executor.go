package sqlexec

import (
	"context"
	"database/sql"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/cache"
)

// ConnPool entrega una conexión dedicada por petición. *sql.DB la cumple.
type ConnPool interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Execution resume una ejecución para métricas y eventos.
type Execution struct {
	Table       string
	Operation   string
	Complexity  int
	Duration    time.Duration
	Rows        int
	CacheStatus string
	Err         error
}

// Observer recibe cada ejecución terminada. No debe bloquear.
type Observer interface {
	QueryExecuted(ctx context.Context, e Execution)
}

// Operaciones reportadas en Execution.Operation.
const (
	OpPaginate = "paginate"
	OpAll      = "all"
	OpFirst    = "first"
	OpCount    = "count"
)

// Result es la página producida por Execute.
type Result struct {
	Page        query.PaginationResult[query.Record]
	Warnings    []string
	CacheStatus string
}

// cachedPage es lo que se guarda en caché por consulta.
type cachedPage struct {
	Data       []query.Record       `json:"data"`
	Pagination query.PaginationInfo `json:"pagination"`
	Warnings   []string             `json:"warnings,omitempty"`
}

// Explanation es la salida de Explain.
type Explanation struct {
	Dialect    string          `json:"dialect" yaml:"dialect"`
	SQL        string          `json:"sql" yaml:"sql"`
	Args       []any           `json:"args" yaml:"args"`
	CountSQL   string          `json:"count_sql,omitempty" yaml:"count_sql,omitempty"`
	CountArgs  []any           `json:"count_args,omitempty" yaml:"count_args,omitempty"`
	Info       query.QueryInfo `json:"info" yaml:"info"`
	Complexity int             `json:"complexity_score" yaml:"complexity_score"`
	Warnings   []string        `json:"warnings" yaml:"warnings"`
}

// Executor compila un Builder, lo ejecuta sobre una conexión del pool y
// arma la página con sus relaciones.
type Executor struct {
	pool      ConnPool
	dialect   Dialect
	compiler  *Compiler
	loader    *RelationLoader
	audit     *AuditChainLoader
	log       *zap.Logger
	cache     cache.Cache
	cacheTTL  time.Duration
	observers []Observer
}

var _ query.Runner = (*Executor)(nil)

type Option func(*Executor)

// WithCache activa la caché de resultados.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Executor) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithObserver añade un observador de ejecuciones.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

func NewExecutor(pool ConnPool, dialect Dialect, log *zap.Logger, opts ...Option) *Executor {
	if dialect == nil {
		dialect = Postgres
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Executor{
		pool:     pool,
		dialect:  dialect,
		compiler: NewCompiler(dialect),
		loader:   NewRelationLoader(dialect),
		audit:    NewAuditChainLoader(dialect),
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Dialect() Dialect { return e.dialect }

// ---------------- Explain ----------------

// Explain compila sin ejecutar.
func (e *Executor) Explain(b query.Builder) (Explanation, error) {
	plan, err := e.compiler.Compile(b)
	if err != nil {
		return Explanation{}, err
	}
	ex := Explanation{
		Dialect:    e.dialect.Name(),
		SQL:        plan.Main.SQL,
		Args:       plan.Main.Args,
		Info:       b.Info(),
		Complexity: b.ComplexityScore(),
		Warnings:   append(b.Warnings(), plan.Warnings...),
	}
	if plan.Mode != query.ModeCursor {
		ex.CountSQL = plan.Count.SQL
		ex.CountArgs = plan.Count.Args
	}
	if ex.Warnings == nil {
		ex.Warnings = []string{}
	}
	return ex, nil
}

// ---------------- Ejecución paginada ----------------

// Respond ejecuta b y arma la respuesta completa con meta y enlaces.
func (e *Executor) Respond(ctx context.Context, b query.Builder, base *url.URL) (query.QueryResponse[query.Record], error) {
	start := time.Now()
	res, err := e.Execute(ctx, b)
	if err != nil {
		return query.QueryResponse[query.Record]{}, err
	}
	return query.NewResponse(res.Page, b, time.Since(start), res.CacheStatus, base, res.Warnings...), nil
}

// Execute lanza la consulta de datos y, en modo Offset, la de conteo. En
// modo Cursor pide per_page+1 filas para saber si hay más.
func (e *Executor) Execute(ctx context.Context, b query.Builder) (res Result, err error) {
	start := time.Now()
	res.CacheStatus = query.CacheDisabled
	defer func() {
		e.observe(ctx, b, OpPaginate, start, len(res.Page.Data), res.CacheStatus, err)
	}()

	plan, err := e.compiler.Compile(b)
	if err != nil {
		return res, err
	}
	res.Warnings = plan.Warnings

	var key string
	if e.cache != nil {
		key = e.cacheKey(plan)
		var cached cachedPage
		hit, cerr := e.cache.Get(ctx, key, &cached)
		if cerr != nil {
			e.log.Warn("Cache read failed", zap.String("table", plan.Table), zap.Error(cerr))
		}
		if hit {
			res.Page = query.PaginationResult[query.Record]{Data: cached.Data, Pagination: cached.Pagination}
			res.Warnings = cached.Warnings
			res.CacheStatus = query.CacheHit
			return res, nil
		}
		res.CacheStatus = query.CacheMiss
	}

	conn, err := e.pool.Conn(ctx)
	if err != nil {
		e.log.Error("Error acquiring connection", zap.Error(err))
		return res, wrap("conn", "", err)
	}
	defer conn.Close()

	page, err := e.runPage(ctx, conn, b, plan)
	if err != nil {
		e.log.Error("Query failed", zap.String("table", plan.Table), zap.Error(err))
		return res, err
	}
	res.Page = page

	if e.cache != nil {
		cache.AsyncCacheSet(ctx, e.cache, key, cachedPage{
			Data:       page.Data,
			Pagination: page.Pagination,
			Warnings:   plan.Warnings,
		}, int(e.cacheTTL.Seconds()), e.log)
	}
	return res, nil
}

func (e *Executor) runPage(ctx context.Context, conn *sql.Conn, b query.Builder, plan Plan) (query.PaginationResult[query.Record], error) {
	var out query.PaginationResult[query.Record]

	if plan.Mode == query.ModeCursor {
		e.log.Debug("Executing cursor query", zap.String("sql", plan.Main.SQL))
		rows, err := queryRecords(ctx, conn, "select", plan.Main)
		if err != nil {
			return out, err
		}
		hasMore := len(rows) > plan.PerPage
		if hasMore {
			rows = rows[:plan.PerPage]
		}
		if plan.Cursor.Previous {
			slices.Reverse(rows)
		}
		next, prev := cursorsFor(plan, rows, hasMore)
		if err := e.loadRelations(ctx, conn, b, plan, rows); err != nil {
			return out, err
		}
		out.Data = rows
		out.Pagination = query.CursorInfo(plan.PerPage, next != "", next, prev)
		return out, nil
	}

	// Conteo y datos van por separado; no se envuelven en una transacción.
	e.log.Debug("Executing count query", zap.String("sql", plan.Count.SQL))
	total, err := queryCount(ctx, conn, plan.Count)
	if err != nil {
		return out, err
	}
	e.log.Debug("Executing page query", zap.String("sql", plan.Main.SQL))
	rows, err := queryRecords(ctx, conn, "select", plan.Main)
	if err != nil {
		return out, err
	}
	if err := e.loadRelations(ctx, conn, b, plan, rows); err != nil {
		return out, err
	}
	out.Data = rows
	out.Pagination = query.OffsetInfo(plan.Page, plan.PerPage, total, len(rows))
	return out, nil
}

// cursorsFor calcula next/prev a partir de la primera y última fila de la
// página ya ordenada.
func cursorsFor(plan Plan, rows []query.Record, hasMore bool) (next, prev string) {
	if len(rows) == 0 {
		return "", ""
	}
	cp := plan.Cursor
	encode := func(r query.Record, previous bool) string {
		return EncodeCursor(Cursor{Value: normalizeValue(r[cp.Field]), ID: normalizeValue(r[cp.Key]), Previous: previous})
	}
	first, last := rows[0], rows[len(rows)-1]
	if cp.Previous {
		// Venimos de una página posterior: siempre hay siguiente.
		next = encode(last, false)
		if hasMore {
			prev = encode(first, true)
		}
		return next, prev
	}
	if hasMore {
		next = encode(last, false)
	}
	if cp.HasToken {
		prev = encode(first, true)
	}
	return next, prev
}

func (e *Executor) loadRelations(ctx context.Context, q queryer, b query.Builder, plan Plan, rows []query.Record) error {
	if len(rows) == 0 {
		return nil
	}
	if len(plan.Batched) > 0 {
		includable, _ := b.Entity().(query.Includable)
		if err := e.loader.Load(ctx, q, includable, rows, plan.Batched); err != nil {
			return err
		}
	}
	for _, req := range plan.Audit {
		if err := e.audit.Load(ctx, q, plan.Table, plan.Key, req, rows); err != nil {
			return err
		}
	}
	return nil
}

// ---------------- Variantes sin paginar ----------------

// ExecuteAll devuelve todas las filas que cumplen los filtros.
func (e *Executor) ExecuteAll(ctx context.Context, b query.Builder) (rows []query.Record, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, b, OpAll, start, len(rows), query.CacheDisabled, err) }()

	plan, err := e.compiler.CompileAll(b)
	if err != nil {
		return nil, err
	}
	err = e.withConn(ctx, func(conn *sql.Conn) error {
		e.log.Debug("Executing query", zap.String("sql", plan.Main.SQL))
		var qerr error
		if rows, qerr = queryRecords(ctx, conn, "select", plan.Main); qerr != nil {
			return qerr
		}
		return e.loadRelations(ctx, conn, b, plan, rows)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecuteFirst devuelve la primera fila o false si no hay ninguna.
func (e *Executor) ExecuteFirst(ctx context.Context, b query.Builder) (rec query.Record, found bool, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if found {
			n = 1
		}
		e.observe(ctx, b, OpFirst, start, n, query.CacheDisabled, err)
	}()

	plan, err := e.compiler.CompileFirst(b)
	if err != nil {
		return nil, false, err
	}
	var rows []query.Record
	err = e.withConn(ctx, func(conn *sql.Conn) error {
		e.log.Debug("Executing query", zap.String("sql", plan.Main.SQL))
		var qerr error
		if rows, qerr = queryRecords(ctx, conn, "first", plan.Main); qerr != nil {
			return qerr
		}
		return e.loadRelations(ctx, conn, b, plan, rows)
	})
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// ExecuteCount cuenta las filas que cumplen los filtros.
func (e *Executor) ExecuteCount(ctx context.Context, b query.Builder) (total int64, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, b, OpCount, start, 0, query.CacheDisabled, err) }()

	st, err := e.compiler.CompileCount(b)
	if err != nil {
		return 0, err
	}
	err = e.withConn(ctx, func(conn *sql.Conn) error {
		e.log.Debug("Executing count query", zap.String("sql", st.SQL))
		var qerr error
		total, qerr = queryCount(ctx, conn, st)
		return qerr
	})
	return total, err
}

func (e *Executor) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := e.pool.Conn(ctx)
	if err != nil {
		e.log.Error("Error acquiring connection", zap.Error(err))
		return wrap("conn", "", err)
	}
	defer conn.Close()
	if err := fn(conn); err != nil {
		e.log.Error("Query failed", zap.Error(err))
		return err
	}
	return nil
}

// ---------------- Helpers ----------------

// cacheKey incluye las relaciones por lotes, que no aparecen en el SQL.
func (e *Executor) cacheKey(plan Plan) string {
	var rels []string
	for _, inc := range plan.Batched {
		rels = append(rels, inc.Relation)
	}
	for _, req := range plan.Audit {
		rels = append(rels, req.Chain.Relation+":"+strconv.Itoa(req.Depth))
	}
	return cache.QueryKey(e.dialect.Name(), plan.Main.SQL+" /*"+strings.Join(rels, ",")+"*/", plan.Main.Args)
}

func (e *Executor) observe(ctx context.Context, b query.Builder, op string, start time.Time, rows int, status string, err error) {
	if len(e.observers) == 0 {
		return
	}
	table := ""
	if b.Entity() != nil {
		table = b.Entity().TableName()
	}
	ex := Execution{
		Table:       table,
		Operation:   op,
		Complexity:  b.ComplexityScore(),
		Duration:    time.Since(start),
		Rows:        rows,
		CacheStatus: status,
		Err:         err,
	}
	for _, o := range e.observers {
		o.QueryExecuted(ctx, ex)
	}
}
