package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ---------------- Parámetros de la petición ----------------

// FilterParam es un filtro tal como llega en la query string
// (filter[field][operator]=value).
type FilterParam struct {
	Field    string
	Operator string
	Value    string
	Or       bool
}

// QueryParams es la forma estructurada que entrega la capa HTTP.
type QueryParams struct {
	Filters        []FilterParam
	Sort           string
	Include        string
	Fields         map[string]string // tabla -> "colA,colB"
	Page           string
	PerPage        string
	Cursor         string
	PaginationType string
	WithTrashed    bool
	OnlyTrashed    bool
}

var bracketSegments = regexp.MustCompile(`\[([^\[\]]*)\]`)

// ParseParams interpreta url.Values con la forma:
//
//	filter[<field>][<operator>]=<value>   filter[<field>]=<value> (eq)
//	filter[or][<field>][<operator>]=<value>
//	sort=a,-b   include=a,b.c   fields[<table>]=a,b
//	page=&per_page=   cursor=&per_page=   pagination_type=cursor|offset
func ParseParams(values url.Values) QueryParams {
	p := QueryParams{Fields: map[string]string{}}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		last := ""
		if len(vals) > 0 {
			last = vals[len(vals)-1]
		}
		switch {
		case strings.HasPrefix(key, "filter["):
			p.Filters = append(p.Filters, parseFilterKey(key, vals)...)
		case strings.HasPrefix(key, "fields["):
			if segs := bracketArgs(key); len(segs) == 1 {
				p.Fields[segs[0]] = last
			}
		case key == "sort":
			p.Sort = last
		case key == "include":
			p.Include = last
		case key == "page":
			p.Page = last
		case key == "per_page":
			p.PerPage = last
		case key == "cursor":
			p.Cursor = last
		case key == "pagination_type":
			p.PaginationType = last
		case key == "with_trashed":
			p.WithTrashed = truthy(last)
		case key == "only_trashed":
			p.OnlyTrashed = truthy(last)
		}
	}
	return p
}

func bracketArgs(key string) []string {
	var out []string
	for _, m := range bracketSegments.FindAllStringSubmatch(key, -1) {
		out = append(out, m[1])
	}
	return out
}

func parseFilterKey(key string, vals []string) []FilterParam {
	segs := bracketArgs(key)
	or := false
	if len(segs) > 0 && segs[0] == "or" {
		or = true
		segs = segs[1:]
	}
	if len(segs) == 0 || len(segs) > 2 || segs[0] == "" {
		return nil
	}
	op := ""
	if len(segs) == 2 {
		op = segs[1]
	}
	out := make([]FilterParam, 0, len(vals))
	for _, v := range vals {
		out = append(out, FilterParam{Field: segs[0], Operator: op, Value: v, Or: or})
	}
	return out
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ---------------- FromParams ----------------

// FromParams construye un Builder a partir de los parámetros aplicando el
// whitelist en cada paso. En modo normal nunca devuelve error; en modo
// estricto (WithStrict) devuelve ErrInvalidParam con todos los problemas.
func FromParams(entity Queryable, params QueryParams, opts ...Option) (Builder, error) {
	b := New(entity, opts...)
	var errs []error
	reject := func(format string, args ...any) {
		if b.opts.strict {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParam}, args...)...))
			return
		}
		b = b.warn(format, args...)
	}

	for _, fp := range params.Filters {
		f, ok := buildFilter(entity, fp, reject)
		if !ok {
			continue
		}
		if b.opts.strict && !entity.IsFilterAllowed(f.Field) {
			reject("filter %q is not allowed", f.Field)
			continue
		}
		b = b.addFilter(f)
	}

	for _, token := range strings.Split(params.Sort, ",") {
		if strings.TrimSpace(token) == "" {
			continue
		}
		s, ok := ParseSort(token)
		if !ok {
			reject("sort %q could not be parsed", strings.TrimSpace(token))
			continue
		}
		if b.opts.strict && !entity.IsSortAllowed(s.Field) {
			reject("sort %q is not allowed", s.Field)
			continue
		}
		b = b.OrderBy(s.Field, s.Direction)
	}

	for _, inc := range ParseIncludes(params.Include) {
		if b.opts.strict && !entity.IsIncludeAllowed(inc.Relation) {
			reject("include %q is not allowed", inc.Relation)
			continue
		}
		b = b.With(inc.Relation)
	}

	if cols, ok := params.Fields[entity.TableName()]; ok {
		var fields []string
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				fields = append(fields, c)
			}
		}
		if b.opts.strict {
			for _, f := range fields {
				if !entity.IsFieldAllowed(f) {
					reject("field %q is not allowed", f)
				}
			}
		}
		b = b.Select(fields...)
	}

	switch mode, page, perPage := paginationParams(params, reject); mode {
	case ModeCursor:
		b = b.CursorPaginate(perPage, params.Cursor)
	case ModeOffset:
		b = b.OffsetPaginate(page, perPage)
	}

	switch {
	case params.OnlyTrashed:
		b = b.OnlyTrashed()
	case params.WithTrashed:
		b = b.WithTrashed()
	}

	if len(errs) > 0 {
		return b, errors.Join(errs...)
	}
	return b, nil
}

func buildFilter(entity Queryable, fp FilterParam, reject func(string, ...any)) (Filter, bool) {
	op, ok := ParseOperator(fp.Operator)
	if !ok {
		reject("filter %q has unknown operator %q", fp.Field, fp.Operator)
		return Filter{}, false
	}
	if op == OpRaw {
		reject("filter %q: raw operator is not accepted from request parameters", fp.Field)
		return Filter{}, false
	}

	ft := FieldString
	if typed, ok := entity.(Typed); ok {
		ft = typed.FieldType(fp.Field)
	}

	coerce := func(raw string) (any, bool) {
		v, ok := Coerce(raw, ft)
		if ok {
			return v, true
		}
		if ft == FieldTime {
			reject("filter %q: invalid time value %q", fp.Field, raw)
			return nil, false
		}
		// valor numérico/booleano mal formado: se usa el valor por defecto del tipo
		reject("filter %q: malformed value %q replaced by %v", fp.Field, raw, v)
		return v, true
	}

	var value FilterValue
	switch op.Shape() {
	case NoValue:
		value = None()
	case MultipleValue, RangeValue:
		var items []any
		for _, part := range strings.Split(fp.Value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			v, ok := coerce(part)
			if !ok {
				return Filter{}, false
			}
			items = append(items, v)
		}
		if op.Shape() == RangeValue {
			value = Range(items...)
		} else {
			value = Multiple(items...)
		}
	default:
		v, ok := coerce(fp.Value)
		if !ok {
			return Filter{}, false
		}
		value = Single(v)
	}

	f := NewFilter(fp.Field, op, value)
	f.Or = fp.Or
	return f, true
}

// paginationParams decide el modo: pagination_type explícito, si no cursor
// presente => Cursor, page/per_page presentes => Offset, si no Unset.
func paginationParams(params QueryParams, reject func(string, ...any)) (PaginationMode, int, int) {
	atoi := func(name, raw string) int {
		if strings.TrimSpace(raw) == "" {
			return 0
		}
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
		if errors.Is(err, strconv.ErrRange) {
			reject("%s %q exceeds %d and was clamped", name, raw, MaxPage)
			return MaxPage
		}
		if err != nil {
			reject("%s %q is not a valid number", name, raw)
			return 0
		}
		return int(n)
	}
	page := atoi("page", params.Page)
	perPage := atoi("per_page", params.PerPage)

	switch strings.ToLower(strings.TrimSpace(params.PaginationType)) {
	case "cursor":
		return ModeCursor, page, perPage
	case "offset":
		return ModeOffset, page, perPage
	case "":
	default:
		reject("pagination_type %q is not supported", params.PaginationType)
	}

	switch {
	case params.Cursor != "":
		return ModeCursor, page, perPage
	case page > 0 || perPage > 0:
		return ModeOffset, page, perPage
	}
	return ModeUnset, page, perPage
}
