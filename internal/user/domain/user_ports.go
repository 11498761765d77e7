package domain

import (
	"errors"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("invalid user")
)
