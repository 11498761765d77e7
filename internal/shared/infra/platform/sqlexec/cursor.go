package sqlexec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor indica un token de cursor ilegible.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor es el contenido del token opaco de paginación por keyset:
// el valor de la columna de orden y la clave de desempate de la última
// (o primera, si Previous) fila vista.
type Cursor struct {
	Value    any  `json:"v"`
	ID       any  `json:"id"`
	Previous bool `json:"p,omitempty"`
}

// EncodeCursor serializa el cursor como base64url(JSON).
func EncodeCursor(c Cursor) string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor valida y decodifica un token.
func DecodeCursor(token string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var c Cursor
	if err := dec.Decode(&c); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ID == nil {
		return Cursor{}, fmt.Errorf("%w: missing key", ErrInvalidCursor)
	}
	if n, ok := c.Value.(json.Number); ok {
		c.Value = numberValue(n)
	}
	if n, ok := c.ID.(json.Number); ok {
		c.ID = numberValue(n)
	}
	return c, nil
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
