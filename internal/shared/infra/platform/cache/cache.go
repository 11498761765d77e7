package cache

import (
	"context"
)

// Cache es una caché clave-valor con serialización JSON.
type Cache interface {
	// Get rellena dest (puntero) si la clave existe: (true, nil) es un hit,
	// (false, nil) un miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set guarda val con un TTL en segundos; 0 usa el TTL por defecto.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	Delete(ctx context.Context, key string) error
}
