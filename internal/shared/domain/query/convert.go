package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldType indica cómo convertir a tipo nativo los valores recibidos como texto.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldFloat
	FieldBool
	FieldTime
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce convierte un valor textual al tipo del campo. Si el valor no es
// válido devuelve el valor por defecto del tipo (0, false) y ok=false.
func Coerce(raw string, t FieldType) (any, bool) {
	raw = strings.TrimSpace(raw)
	switch t {
	case FieldInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return int64(0), false
		}
		return n, true
	case FieldFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return float64(0), false
		}
		return f, true
	case FieldBool:
		switch strings.ToLower(raw) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
		return false, false
	case FieldTime:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts.UTC(), true
			}
		}
		return raw, false
	}
	if strings.EqualFold(raw, "null") {
		return nil, true
	}
	return raw, true
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// TimeValue interpreta un valor leído de la base (time.Time o texto) como
// instante. Devuelve false para nil o formatos desconocidos.
func TimeValue(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case string, []byte:
		if ts, ok := Coerce(toString(x), FieldTime); ok {
			return ts.(time.Time), true
		}
	}
	return time.Time{}, false
}
