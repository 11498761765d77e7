package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// KeyPrefix agrupa las claves de resultados de consultas.
const KeyPrefix = "hexaquery:q:"

// QueryKey deriva una clave estable del SQL final y sus argumentos. Dos
// peticiones que compilan a la misma sentencia comparten entrada.
func QueryKey(dialect, sql string, args []any) string {
	h := sha256.New()
	h.Write([]byte(dialect))
	h.Write([]byte{0})
	h.Write([]byte(sql))
	for _, a := range args {
		h.Write([]byte{0})
		if b, err := json.Marshal(a); err == nil {
			h.Write(b)
		} else {
			fmt.Fprintf(h, "%v", a)
		}
	}
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// AsyncCacheSet actualiza la caché en background sin bloquear la respuesta.
func AsyncCacheSet(ctx context.Context, cache Cache, key string, value interface{}, ttl int, log *zap.Logger) {
	if cache == nil {
		return
	}

	go func() {
		// Contexto propio: la petición puede haber terminado ya.
		cacheCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		if err := cache.Set(cacheCtx, key, value, ttl); err != nil {
			log.Warn("Cache update failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}
