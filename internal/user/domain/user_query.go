package domain

import (
	"strings"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// UserQuery declara qué se puede filtrar, ordenar, seleccionar e incluir
// sobre users.
type UserQuery struct {
	query.Capabilities
	query.RelationSet
}

var (
	_ query.Queryable     = UserQuery{}
	_ query.Includable    = UserQuery{}
	_ query.Filterable    = UserQuery{}
	_ query.Sortable      = UserQuery{}
	_ query.SoftDeletable = UserQuery{}
	_ query.Typed         = UserQuery{}
	_ query.Nullable      = UserQuery{}
)

func NewUserQuery() UserQuery {
	return UserQuery{
		Capabilities: query.Capabilities{
			Table:        "users",
			Key:          "id",
			Filters:      []string{"id", "email", "nombre", "birth_date", "created_at"},
			Sorts:        []string{"id", "email", "nombre", "birth_date", "created_at"},
			Fields:       []string{"id", "email", "nombre", "birth_date", "created_at", "deleted_at"},
			Includes:     []string{"tasks", "organizations", "organizations.position", "organizations.position.level"},
			Defaults:     []string{"id", "email", "nombre", "birth_date", "created_at"},
			DefaultOrder: &query.Sort{Field: "created_at", Direction: query.Desc},
			Types: map[string]query.FieldType{
				"birth_date": query.FieldTime,
				"created_at": query.FieldTime,
			},
			Nulls:      []string{"birth_date"},
			SoftDelete: "deleted_at",
		},
		RelationSet: query.RelationSet{
			"tasks": {
				Kind:       query.HasMany,
				Table:      "tasks",
				ForeignKey: "assignee_id",
				Columns:    []string{"id", "title", "status", "assignee_id", "created_at"},
			},
			"organizations": {
				Kind:       query.HasMany,
				Table:      "organizations",
				ForeignKey: "user_id",
				Columns:    []string{"id", "name", "user_id", "position_id"},
				Nested: query.RelationSet{
					"position": {
						Kind:    query.BelongsTo,
						Table:   "positions",
						Columns: []string{"id", "name", "level_id"},
						Nested: query.RelationSet{
							"level": {
								Kind:    query.BelongsTo,
								Table:   "levels",
								Columns: []string{"id", "name", "rank"},
							},
						},
					},
				},
			},
		},
	}
}

// ApplyBasicFilter compara el email sin distinguir mayúsculas.
func (UserQuery) ApplyBasicFilter(column string, op query.Operator, value query.FilterValue) (query.Fragment, bool) {
	if baseColumn(column) != "email" || op != query.OpEq || value.Scalar == nil {
		return query.Fragment{}, false
	}
	return query.Fragment{SQL: "LOWER(" + column + ") = LOWER(?)", Args: []any{value.Scalar}}, true
}

// ApplyBasicSort ordena nombre sin distinguir mayúsculas.
func (UserQuery) ApplyBasicSort(column string, dir query.Direction) string {
	if baseColumn(column) != "nombre" {
		return ""
	}
	return "LOWER(" + column + ") " + strings.ToUpper(string(dir))
}

func baseColumn(column string) string {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		return column[i+1:]
	}
	return column
}
