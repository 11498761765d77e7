package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// Record es una fila devuelta por el ejecutor, con las relaciones anidadas.
type Record = map[string]any

// Estados de caché reportados en QueryMeta.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheDisabled = "disabled"
)

// ---------------- Paginación ----------------

// PaginationInfo describe la página devuelta. Los campos opcionales solo
// aparecen en el modo que les corresponde.
type PaginationInfo struct {
	PaginationType string  `json:"pagination_type"`
	CurrentPage    *int    `json:"current_page,omitempty"`
	PerPage        int     `json:"per_page"`
	Total          *int64  `json:"total,omitempty"`
	TotalPages     *int    `json:"total_pages,omitempty"`
	From           *int    `json:"from,omitempty"`
	To             *int    `json:"to,omitempty"`
	HasMorePages   bool    `json:"has_more_pages"`
	NextCursor     *string `json:"next_cursor,omitempty"`
	PrevCursor     *string `json:"prev_cursor,omitempty"`
}

// PaginationResult se produce una vez por ejecución y no se modifica después.
type PaginationResult[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// OffsetInfo calcula los metadatos de una página en modo Offset.
// count es el número de filas de la página actual.
func OffsetInfo(page, perPage int, total int64, count int) PaginationInfo {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages < 1 {
		totalPages = 1
	}
	info := PaginationInfo{
		PaginationType: ModeOffset.String(),
		CurrentPage:    &page,
		PerPage:        perPage,
		Total:          &total,
		TotalPages:     &totalPages,
		HasMorePages:   page < totalPages,
	}
	if count > 0 {
		from := (page-1)*perPage + 1
		to := from + count - 1
		info.From = &from
		info.To = &to
	}
	return info
}

// CursorInfo calcula los metadatos de una página en modo Cursor.
func CursorInfo(perPage int, hasMore bool, next, prev string) PaginationInfo {
	info := PaginationInfo{
		PaginationType: ModeCursor.String(),
		PerPage:        perPage,
		HasMorePages:   hasMore,
	}
	if next != "" {
		info.NextCursor = &next
	}
	if prev != "" {
		info.PrevCursor = &prev
	}
	return info
}

// ---------------- Respuesta ----------------

// QueryMeta contiene datos de diagnóstico de la ejecución.
type QueryMeta struct {
	ExecutionTimeMs float64  `json:"execution_time_ms"`
	FiltersApplied  int      `json:"filters_applied"`
	SortsApplied    int      `json:"sorts_applied"`
	IncludesApplied int      `json:"includes_applied"`
	ComplexityScore int      `json:"complexity_score"`
	CacheStatus     string   `json:"cache_status"`
	Warnings        []string `json:"warnings"`
}

// Links son los enlaces de navegación.
type Links struct {
	Self  string `json:"self"`
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

// QueryResponse es la respuesta uniforme de un listado.
type QueryResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
	Meta       QueryMeta      `json:"meta"`
	Links      *Links         `json:"links,omitempty"`
}

// NewResponse ensambla la respuesta. base puede ser nil (sin enlaces).
// extraWarnings se añaden tras los del Builder (p.ej. cursor inválido).
func NewResponse[T any](result PaginationResult[T], b Builder, elapsed time.Duration, cacheStatus string, base *url.URL, extraWarnings ...string) QueryResponse[T] {
	data := result.Data
	if data == nil {
		data = []T{}
	}
	warnings := append(b.Warnings(), extraWarnings...)
	if warnings == nil {
		warnings = []string{}
	}
	if cacheStatus == "" {
		cacheStatus = CacheDisabled
	}
	resp := QueryResponse[T]{
		Data:       data,
		Pagination: result.Pagination,
		Meta: QueryMeta{
			ExecutionTimeMs: float64(elapsed.Microseconds()) / 1000,
			FiltersApplied:  len(b.filters),
			SortsApplied:    len(b.sorts),
			IncludesApplied: len(b.includes),
			ComplexityScore: b.ComplexityScore(),
			CacheStatus:     cacheStatus,
			Warnings:        warnings,
		},
	}
	if base != nil {
		resp.Links = BuildLinks(base, result.Pagination, b.appends)
	}
	return resp
}

// BuildLinks genera self/first/prev/next/last a partir de la URL de la
// petición, conservando sus parámetros y añadiendo los appends.
func BuildLinks(base *url.URL, info PaginationInfo, appends map[string]string) *Links {
	q := base.Query()
	keys := make([]string, 0, len(appends))
	for k := range appends {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, appends[k])
	}

	with := func(set map[string]string, drop ...string) string {
		vals := url.Values{}
		for k, v := range q {
			vals[k] = append([]string(nil), v...)
		}
		for _, d := range drop {
			vals.Del(d)
		}
		for k, v := range set {
			vals.Set(k, v)
		}
		u := *base
		u.RawQuery = vals.Encode()
		return u.String()
	}

	links := &Links{Self: with(nil)}
	switch info.PaginationType {
	case ModeOffset.String():
		page := 1
		if info.CurrentPage != nil {
			page = *info.CurrentPage
		}
		last := 1
		if info.TotalPages != nil {
			last = *info.TotalPages
		}
		pageLink := func(n int) string {
			return with(map[string]string{"page": strconv.Itoa(n), "per_page": strconv.Itoa(info.PerPage)}, "cursor")
		}
		links.First = pageLink(1)
		links.Last = pageLink(last)
		if page > 1 {
			links.Prev = pageLink(page - 1)
		}
		if info.HasMorePages {
			links.Next = pageLink(page + 1)
		}
	case ModeCursor.String():
		cursorLink := func(c string) string {
			return with(map[string]string{"cursor": c, "per_page": strconv.Itoa(info.PerPage)}, "page")
		}
		links.First = with(map[string]string{"per_page": strconv.Itoa(info.PerPage)}, "cursor", "page")
		if info.PrevCursor != nil {
			links.Prev = cursorLink(*info.PrevCursor)
		}
		if info.NextCursor != nil {
			links.Next = cursorLink(*info.NextCursor)
		}
	}
	return links
}
