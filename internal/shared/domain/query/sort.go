package query

import "strings"

// Direction es la dirección de ordenamiento.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection acepta asc/desc sin distinguir mayúsculas.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, true
	case "desc", "descending":
		return Desc, true
	}
	return "", false
}

// Reverse devuelve la dirección contraria.
func (d Direction) Reverse() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort indica campo y dirección.
type Sort struct {
	Field     string
	Direction Direction
}

func (s Sort) String() string {
	if s.Direction == Desc {
		return "-" + s.Field
	}
	return s.Field
}

// ParseSort interpreta un token de ordenamiento con tres sintaxis:
// "-field" (desc), "field:direction" y "field" (asc).
func ParseSort(token string) (Sort, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Sort{}, false
	}
	if strings.HasPrefix(token, "-") {
		field := strings.TrimSpace(token[1:])
		if field == "" {
			return Sort{}, false
		}
		return Sort{Field: field, Direction: Desc}, true
	}
	if field, dir, ok := strings.Cut(token, ":"); ok {
		field = strings.TrimSpace(field)
		d, valid := ParseDirection(dir)
		if field == "" || !valid {
			return Sort{}, false
		}
		return Sort{Field: field, Direction: d}, true
	}
	return Sort{Field: strings.TrimPrefix(token, "+"), Direction: Asc}, true
}

// ParseSortString separa por comas y descarta los tokens ilegibles.
func ParseSortString(s string) []Sort {
	var sorts []Sort
	for _, token := range strings.Split(s, ",") {
		if sort, ok := ParseSort(token); ok {
			sorts = append(sorts, sort)
		}
	}
	return sorts
}
