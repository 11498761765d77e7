package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

func TestUser_Age(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		birth    time.Time
		expected int
	}{
		{"cumpleaños ya pasado este año", time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC), 30},
		{"cumpleaños aún no ha pasado", time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), 24},
		{"cumpleaños hoy", time.Date(1985, 6, 15, 0, 0, 0, 0, time.UTC), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{BirthDate: tt.birth}
			assert.Equal(t, tt.expected, user.Age(now))
		})
	}
}

func TestUserFromRecord(t *testing.T) {
	id := uuid.New()
	deleted := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	u, err := UserFromRecord(query.Record{
		"id":         id.String(),
		"email":      "ana@example.com",
		"nombre":     "Ana",
		"birth_date": "1990-05-10",
		"deleted_at": deleted,
	})

	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Ana", u.Nombre)
	assert.Equal(t, 1990, u.BirthDate.Year())
	assert.True(t, u.Deleted())
	assert.True(t, u.CreatedAt.IsZero())
}

func TestUserFromRecord_InvalidID(t *testing.T) {
	_, err := UserFromRecord(query.Record{"id": 42})
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestUserQuery_EmailFilterIsCaseInsensitive(t *testing.T) {
	q := NewUserQuery()

	frag := query.ApplyFilter(query.NewFilter("email", query.OpEq, query.Single("Ana@Example.com")), "users.email", q)

	assert.Equal(t, "LOWER(users.email) = LOWER(?)", frag.SQL)
	assert.Equal(t, []any{"Ana@Example.com"}, frag.Args)
}

func TestUserQuery_OtherFiltersUseDefaultStrategy(t *testing.T) {
	q := NewUserQuery()

	frag := query.ApplyFilter(query.NewFilter("email", query.OpContains, query.Single("ana")), "email", q)
	assert.Equal(t, `email LIKE ? ESCAPE '\'`, frag.SQL)

	frag = query.ApplyFilter(query.NewFilter("nombre", query.OpEq, query.Single("Ana")), "nombre", q)
	assert.Equal(t, "nombre = ?", frag.SQL)
}

func TestUserQuery_NombreSort(t *testing.T) {
	q := NewUserQuery()

	assert.Equal(t, "LOWER(nombre) DESC", query.ApplySort(query.Sort{Field: "nombre", Direction: query.Desc}, "nombre", q))
	assert.Equal(t, "email ASC", query.ApplySort(query.Sort{Field: "email", Direction: query.Asc}, "email", q))
}

func TestUserQuery_Declarations(t *testing.T) {
	q := NewUserQuery()

	assert.Equal(t, "users", q.TableName())
	assert.Equal(t, "deleted_at", q.SoftDeleteColumn())
	assert.True(t, q.IsNullable("birth_date"))
	assert.False(t, q.IsNullable("created_at"))
	assert.Equal(t, "assignee_id", q.ForeignKey("tasks"))
	assert.Equal(t, "position_id", q.RelationSet["organizations"].Nested.ForeignKey("position"))
	s, ok := q.DefaultSort()
	require.True(t, ok)
	assert.Equal(t, "-created_at", s.String())
}
