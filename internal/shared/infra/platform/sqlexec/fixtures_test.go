package sqlexec

import (
	"strings"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

func usersEntity() query.Capabilities {
	return query.Capabilities{
		Table:   "users",
		Filters: []string{"id", "name", "email", "age"},
		Sorts:   []string{"id", "name", "age"},
		Fields:  []string{"id", "name", "email", "age"},
		Nulls:   []string{"age"},
	}
}

// postQuery cubre todas las capacidades: JOIN, lotes anidados, auditoría,
// borrado lógico y orden personalizado.
type postQuery struct {
	query.Capabilities
	query.RelationSet
}

func newPostQuery() postQuery {
	return postQuery{
		Capabilities: query.Capabilities{
			Table:   "posts",
			Filters: []string{"id", "title", "status", "author_id", "views", "created_at"},
			Sorts:   []string{"id", "title", "created_at"},
			Fields:  []string{"id", "title", "status", "author_id", "created_by", "created_at"},
			Includes: []string{
				"author", "editor", "comments", "comments.user",
				"createdBy", "createdBy.organizations",
				"createdBy.organizations.position", "createdBy.organizations.position.level",
			},
			DefaultOrder: &query.Sort{Field: "created_at", Direction: query.Desc},
			Types:        map[string]query.FieldType{"created_at": query.FieldTime, "views": query.FieldInt},
			SoftDelete:   "deleted_at",
		},
		RelationSet: query.RelationSet{
			"author": {Kind: query.BelongsTo, Table: "users", Columns: []string{"id", "name"}, Eager: true},
			"editor": {Kind: query.BelongsTo, Table: "users", Columns: []string{"id", "name"}},
			"comments": {
				Kind:       query.HasMany,
				Table:      "comments",
				ForeignKey: "post_id",
				Columns:    []string{"id", "body"},
				Nested: query.RelationSet{
					"user": {Kind: query.BelongsTo, Table: "users", Columns: []string{"id", "name"}},
				},
			},
		},
	}
}

func (postQuery) ApplyBasicSort(column string, dir query.Direction) string {
	if !strings.HasSuffix(column, "title") {
		return ""
	}
	return "LOWER(" + column + ") " + strings.ToUpper(string(dir))
}

func (postQuery) AuditChains() []query.AuditChain {
	return []query.AuditChain{testChain()}
}

func testChain() query.AuditChain {
	return query.AuditChain{
		Relation:             "createdBy",
		ForeignKey:           "created_by",
		ActorTable:           "users",
		OrganizationTable:    "organizations",
		PositionTable:        "positions",
		LevelTable:           "levels",
		OrganizationActorKey: "user_id",
		PositionKey:          "position_id",
		LevelKey:             "level_id",
		ActorColumns:         []string{"id", "name"},
		OrganizationColumns:  []string{"id", "name"},
		PositionColumns:      []string{"name"},
		LevelColumns:         []string{"id", "rank"},
	}
}

const postColumns = "id, title, status, author_id, created_by, created_at"
