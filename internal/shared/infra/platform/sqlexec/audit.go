package sqlexec

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

// Alias fijos de la consulta de auditoría.
const (
	auditParent   = "p"
	auditActor    = "a"
	auditOrg      = "o"
	auditPosition = "pos"
	auditLevel    = "lvl"
	auditParentPK = "parent_key"
	auditKey      = "id"
)

// AuditChainLoader resuelve actor → organizations → position → level con
// una sola consulta de hasta cuatro LEFT JOIN, sea cual sea el número de
// padres.
type AuditChainLoader struct {
	dialect Dialect
}

func NewAuditChainLoader(d Dialect) *AuditChainLoader {
	if d == nil {
		d = Postgres
	}
	return &AuditChainLoader{dialect: d}
}

// Load adjunta la cadena pedida a cada record. Los records deben contener
// parentKey; los que no tengan actor reciben nil.
func (l *AuditChainLoader) Load(ctx context.Context, q queryer, parentTable, parentKey string, req AuditRequest, records []query.Record) error {
	if len(records) == 0 || req.Depth < 1 {
		return nil
	}
	keys := distinctValues(records, parentKey)
	if len(keys) == 0 {
		for _, rec := range records {
			rec[req.Chain.Relation] = nil
		}
		return nil
	}

	st := l.Statement(parentTable, parentKey, req, keys)
	rows, err := queryRecords(ctx, q, "audit "+req.Chain.Relation, st)
	if err != nil {
		return err
	}

	actors := assembleAudit(rows, req.Depth)
	for _, rec := range records {
		if actor, ok := actors[keyString(rec[parentKey])]; ok {
			rec[req.Chain.Relation] = actor
		} else {
			rec[req.Chain.Relation] = nil
		}
	}
	return nil
}

// Statement construye la consulta de la cadena para los padres keys.
func (l *AuditChainLoader) Statement(parentTable, parentKey string, req AuditRequest, keys []any) Statement {
	c := req.Chain
	sel := []string{auditParent + "." + parentKey + " AS " + auditParentPK}
	sel = append(sel, aliasColumns(auditActor, withKey(c.ActorColumns))...)

	var sb strings.Builder
	fmt.Fprintf(&sb, " FROM %s AS %s", parentTable, auditParent)
	fmt.Fprintf(&sb, " LEFT JOIN %s AS %s ON %s.%s = %s.%s", c.ActorTable, auditActor, auditActor, auditKey, auditParent, c.ForeignKey)
	if req.Depth >= 2 {
		sel = append(sel, aliasColumns(auditOrg, withKey(c.OrganizationColumns))...)
		fmt.Fprintf(&sb, " LEFT JOIN %s AS %s ON %s.%s = %s.%s", c.OrganizationTable, auditOrg, auditOrg, c.OrganizationActorKey, auditActor, auditKey)
	}
	if req.Depth >= 3 {
		sel = append(sel, aliasColumns(auditPosition, withKey(c.PositionColumns))...)
		fmt.Fprintf(&sb, " LEFT JOIN %s AS %s ON %s.%s = %s.%s", c.PositionTable, auditPosition, auditPosition, auditKey, auditOrg, c.PositionKey)
	}
	if req.Depth >= 4 {
		sel = append(sel, aliasColumns(auditLevel, withKey(c.LevelColumns))...)
		fmt.Fprintf(&sb, " LEFT JOIN %s AS %s ON %s.%s = %s.%s", c.LevelTable, auditLevel, auditLevel, auditKey, auditPosition, c.LevelKey)
	}

	in := query.ApplyInFilter(auditParent+"."+parentKey, keys, false)
	sb.WriteString(" WHERE " + in.SQL)
	sb.WriteString(" ORDER BY " + auditParent + "." + parentKey)
	if req.Depth >= 2 {
		sb.WriteString(", " + auditOrg + "." + auditKey)
	}

	sql := "SELECT " + strings.Join(sel, ", ") + sb.String()
	return Statement{SQL: l.dialect.Finalize(l.dialect.Rebind(sql)), Args: in.Args}
}

// assembleAudit reconstruye el árbol por padre a partir de las filas planas.
func assembleAudit(rows []query.Record, depth int) map[string]query.Record {
	actors := map[string]query.Record{}
	seenOrgs := map[string]map[string]struct{}{}
	for _, row := range rows {
		pk := keyString(row[auditParentPK])
		actorRow, _ := row[auditActor].(query.Record)
		if actorRow == nil {
			continue
		}
		actor, ok := actors[pk]
		if !ok {
			actor = maps.Clone(actorRow)
			if depth >= 2 {
				actor[query.AuditOrganizations] = []query.Record{}
			}
			actors[pk] = actor
			seenOrgs[pk] = map[string]struct{}{}
		}
		if depth < 2 {
			continue
		}
		orgRow, _ := row[auditOrg].(query.Record)
		if orgRow == nil {
			continue
		}
		orgID := keyString(orgRow[auditKey])
		if _, dup := seenOrgs[pk][orgID]; dup {
			continue
		}
		seenOrgs[pk][orgID] = struct{}{}

		org := maps.Clone(orgRow)
		if depth >= 3 {
			org[query.AuditPosition] = nil
			if posRow, _ := row[auditPosition].(query.Record); posRow != nil {
				pos := maps.Clone(posRow)
				if depth >= 4 {
					pos[query.AuditLevel] = nil
					if lvlRow, _ := row[auditLevel].(query.Record); lvlRow != nil {
						pos[query.AuditLevel] = maps.Clone(lvlRow)
					}
				}
				org[query.AuditPosition] = pos
			}
		}
		actor[query.AuditOrganizations] = append(actor[query.AuditOrganizations].([]query.Record), org)
	}
	return actors
}

func withKey(cols []string) []string {
	if len(cols) == 0 {
		return []string{auditKey}
	}
	if slices.Contains(cols, auditKey) {
		return cols
	}
	return append([]string{auditKey}, cols...)
}

func aliasColumns(alias string, cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, alias+"."+c+" AS "+alias+nestSeparator+c)
	}
	return out
}
