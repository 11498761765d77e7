package domain

import (
	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// CreatedBy es la relación de auditoría de las tareas.
const CreatedBy = "createdBy"

// TaskQuery declara las capacidades de consulta sobre tasks. El asignado se
// une por LEFT JOIN; la cadena createdBy se resuelve por la vía rápida de
// auditoría.
type TaskQuery struct {
	query.Capabilities
	query.RelationSet
}

var (
	_ query.Queryable  = TaskQuery{}
	_ query.Includable = TaskQuery{}
	_ query.Auditable  = TaskQuery{}
	_ query.Typed      = TaskQuery{}
)

func NewTaskQuery() TaskQuery {
	return TaskQuery{
		Capabilities: query.Capabilities{
			Table:   "tasks",
			Key:     "id",
			Filters: []string{"id", "title", "description", "status", "assignee_id", "created_by", "created_at", "updated_at"},
			Sorts:   []string{"id", "title", "status", "created_at", "updated_at"},
			Fields:  []string{"id", "title", "description", "assignee_id", "status", "created_by", "created_at", "updated_at"},
			Includes: []string{
				"assignee",
				CreatedBy,
				CreatedBy + "." + query.AuditOrganizations,
				CreatedBy + "." + query.AuditOrganizations + "." + query.AuditPosition,
				CreatedBy + "." + query.AuditOrganizations + "." + query.AuditPosition + "." + query.AuditLevel,
			},
			DefaultOrder: &query.Sort{Field: "created_at", Direction: query.Desc},
			Types: map[string]query.FieldType{
				"created_at": query.FieldTime,
				"updated_at": query.FieldTime,
			},
		},
		RelationSet: query.RelationSet{
			"assignee": {
				Kind:    query.BelongsTo,
				Table:   "users",
				Columns: []string{"id", "email", "nombre"},
				Eager:   true,
			},
		},
	}
}

// AuditChains: tasks.created_by → users → organizations → positions → levels.
func (TaskQuery) AuditChains() []query.AuditChain {
	return []query.AuditChain{{
		Relation:             CreatedBy,
		ForeignKey:           "created_by",
		ActorTable:           "users",
		OrganizationTable:    "organizations",
		PositionTable:        "positions",
		LevelTable:           "levels",
		OrganizationActorKey: "user_id",
		PositionKey:          "position_id",
		LevelKey:             "level_id",
		ActorColumns:         []string{"id", "email", "nombre"},
		OrganizationColumns:  []string{"id", "name"},
		PositionColumns:      []string{"id", "name"},
		LevelColumns:         []string{"id", "name", "rank"},
	}}
}
