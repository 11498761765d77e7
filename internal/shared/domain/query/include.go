package query

import "strings"

// Include es una relación a cargar, con ruta separada por puntos ("a.b.c").
type Include struct {
	Relation string
}

// NewInclude normaliza la ruta eliminando segmentos vacíos.
func NewInclude(path string) (Include, bool) {
	var segs []string
	for _, s := range strings.Split(path, ".") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return Include{}, false
	}
	return Include{Relation: strings.Join(segs, ".")}, true
}

// Segments devuelve los tramos de la ruta.
func (i Include) Segments() []string {
	return strings.Split(i.Relation, ".")
}

// Root es el primer tramo de la ruta.
func (i Include) Root() string {
	root, _, _ := strings.Cut(i.Relation, ".")
	return root
}

// Depth es el número de tramos.
func (i Include) Depth() int {
	return strings.Count(i.Relation, ".") + 1
}

// ParseIncludes separa por comas las rutas de relaciones.
func ParseIncludes(s string) []Include {
	var out []Include
	for _, part := range strings.Split(s, ",") {
		if inc, ok := NewInclude(part); ok {
			out = append(out, inc)
		}
	}
	return out
}
