package query

import "errors"

// ---------- Errores ----------
var (
	// ErrInvalidParam solo se devuelve en modo estricto; en modo normal los
	// parámetros inválidos se ignoran y quedan como warnings.
	ErrInvalidParam = errors.New("invalid query parameter")
)
