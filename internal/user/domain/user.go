package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedBus "github.com/davicafu/hexaquery/internal/shared/infra/platform/bus"
	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// User representa un usuario del sistema.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Nombre    string     `json:"nombre"`
	BirthDate time.Time  `json:"birth_date"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (u *User) PartitionKey() string {
	return u.ID.String()
}

// Age calcula la edad a partir de la fecha de nacimiento.
func (u *User) Age(now time.Time) int {
	years := now.Year() - u.BirthDate.Year()
	if now.YearDay() < u.BirthDate.YearDay() {
		years--
	}
	return years
}

// Deleted indica borrado lógico.
func (u *User) Deleted() bool { return u.DeletedAt != nil }

var _ sharedBus.Keyer = (*User)(nil)

// UserFromRecord convierte una fila del ejecutor en User. Las columnas que
// no se seleccionaron quedan a cero.
func UserFromRecord(r query.Record) (*User, error) {
	u := &User{}
	if v, ok := r["id"]; ok && v != nil {
		id, err := uuid.Parse(fmt.Sprint(v))
		if err != nil {
			return nil, fmt.Errorf("%w: id %v", ErrInvalidUser, v)
		}
		u.ID = id
	}
	u.Email, _ = r["email"].(string)
	u.Nombre, _ = r["nombre"].(string)
	if t, ok := query.TimeValue(r["birth_date"]); ok {
		u.BirthDate = t
	}
	if t, ok := query.TimeValue(r["created_at"]); ok {
		u.CreatedAt = t
	}
	if t, ok := query.TimeValue(r["deleted_at"]); ok {
		u.DeletedAt = &t
	}
	return u, nil
}
