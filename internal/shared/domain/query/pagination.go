package query

import "math"

// DefaultPerPage es el tamaño de página cuando no se indica uno.
const DefaultPerPage = 15

// MaxPage es la mayor página aceptada (u32).
const MaxPage = math.MaxUint32

// PaginationMode es el estado de la máquina de paginación.
type PaginationMode int

const (
	ModeUnset PaginationMode = iota
	ModeOffset
	ModeCursor
)

func (m PaginationMode) String() string {
	switch m {
	case ModeOffset:
		return "offset"
	case ModeCursor:
		return "cursor"
	}
	return "unset"
}

// Pagination es una unión etiquetada: Unset, Offset(page, perPage) o
// Cursor(cursor, perPage). Solo un modo está activo a la vez y los
// mutadores del modo inactivo no tienen efecto.
type Pagination struct {
	mode    PaginationMode
	page    int
	perPage int
	cursor  string
}

// OffsetPagination crea el estado Offset. page se acota a [1, MaxPage].
func OffsetPagination(page, perPage int) Pagination {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	return Pagination{mode: ModeOffset, page: page, perPage: normalizePerPage(perPage)}
}

// CursorPagination crea el estado Cursor. Un cursor vacío es la primera página.
func CursorPagination(perPage int, cursor string) Pagination {
	return Pagination{mode: ModeCursor, perPage: normalizePerPage(perPage), cursor: cursor}
}

func normalizePerPage(n int) int {
	if n < 1 {
		return DefaultPerPage
	}
	return n
}

// WithPerPage conserva el modo (página o cursor) y cambia el tamaño.
// Desde Unset pasa a Cursor.
func (p Pagination) WithPerPage(n int) Pagination {
	switch p.mode {
	case ModeOffset:
		return OffsetPagination(p.page, n)
	case ModeCursor:
		return CursorPagination(n, p.cursor)
	default:
		return CursorPagination(n, "")
	}
}

// WithPage solo tiene efecto en Offset; en Cursor es un no-op.
// Desde Unset pasa a Offset con el tamaño por defecto.
func (p Pagination) WithPage(page int) Pagination {
	switch p.mode {
	case ModeOffset:
		return OffsetPagination(page, p.perPage)
	case ModeCursor:
		return p
	default:
		return OffsetPagination(page, DefaultPerPage)
	}
}

// WithCursor solo tiene efecto en Cursor; en Offset es un no-op.
// Desde Unset pasa a Cursor con el tamaño por defecto.
func (p Pagination) WithCursor(cursor string) Pagination {
	switch p.mode {
	case ModeCursor:
		return CursorPagination(p.perPage, cursor)
	case ModeOffset:
		return p
	default:
		return CursorPagination(DefaultPerPage, cursor)
	}
}

func (p Pagination) Mode() PaginationMode { return p.mode }
func (p Pagination) IsSet() bool { return p.mode != ModeUnset }
func (p Pagination) IsOffset() bool { return p.mode == ModeOffset }
func (p Pagination) IsCursor() bool { return p.mode == ModeCursor }

// Page es la página actual; 0 fuera del modo Offset.
func (p Pagination) Page() int {
	if p.mode != ModeOffset {
		return 0
	}
	return p.page
}

// PerPage devuelve el tamaño de página efectivo.
func (p Pagination) PerPage() int {
	if p.mode == ModeUnset {
		return DefaultPerPage
	}
	return p.perPage
}

// Cursor es el token opaco del modo Cursor.
func (p Pagination) Cursor() string {
	if p.mode != ModeCursor {
		return ""
	}
	return p.cursor
}

// Limit es igual a PerPage.
func (p Pagination) Limit() int {
	return p.PerPage()
}

// Offset es (page-1)*perPage en modo Offset y 0 en el resto. Satura en
// math.MaxInt en lugar de desbordar.
func (p Pagination) Offset() int {
	if p.mode != ModeOffset {
		return 0
	}
	if p.perPage > 0 && p.page-1 > math.MaxInt/p.perPage {
		return math.MaxInt
	}
	return (p.page - 1) * p.perPage
}

// clamp limita perPage a max sin cambiar el modo.
func (p Pagination) clamp(max int) (Pagination, bool) {
	if max <= 0 || p.mode == ModeUnset || p.perPage <= max {
		return p, false
	}
	p.perPage = max
	return p, true
}
