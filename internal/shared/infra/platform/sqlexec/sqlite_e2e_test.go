package sqlexec_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
	userDomain "github.com/davicafu/hexaquery/internal/user/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC)
}

func setupSQLite(t *testing.T) (*sql.DB, *sqlexec.Executor) {
	t.Helper()
	ctx := context.Background()

	conn, dialect, err := db.Open(ctx, db.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.InitSQLite(ctx, conn))

	exec := func(q string, args ...any) {
		_, err := conn.ExecContext(ctx, q, args...)
		require.NoError(t, err, q)
	}
	for i, u := range []struct{ id, email, nombre string }{
		{"u1", "ana@example.com", "Ana"},
		{"u2", "bob@example.com", "Bob"},
		{"u3", "carla@example.com", "Carla"},
		{"u4", "dario@example.com", "Dario"},
	} {
		exec(`INSERT INTO users (id, email, nombre, created_at) VALUES (?, ?, ?, ?)`, u.id, u.email, u.nombre, day(i+1))
	}
	exec(`INSERT INTO users (id, email, nombre, created_at, deleted_at) VALUES (?, ?, ?, ?, ?)`,
		"u5", "eva@example.com", "Eva", day(5), day(20))

	exec(`INSERT INTO levels (id, name, rank) VALUES (1, 'Senior', 3)`)
	exec(`INSERT INTO positions (id, name, level_id) VALUES (1, 'Lead', 1)`)
	exec(`INSERT INTO organizations (id, name, user_id, position_id) VALUES (1, 'Sales', 'u2', 1)`)
	exec(`INSERT INTO organizations (id, name, user_id, position_id) VALUES (2, 'Ops', 'u2', NULL)`)

	exec(`INSERT INTO tasks (id, title, assignee_id, status, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"t1", "Write report", "u1", "pending", "u2", day(10), day(10))
	exec(`INSERT INTO tasks (id, title, assignee_id, status, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"t2", "Review", nil, "done", "u1", day(11), day(11))

	return conn, sqlexec.NewExecutor(conn, dialect, zap.NewNop())
}

func ids(rows []query.Record) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["id"].(string))
	}
	return out
}

func TestSQLite_CursorWalkOverTimestamps(t *testing.T) {
	_, ex := setupSQLite(t)
	ctx := context.Background()
	b := query.New(userDomain.NewUserQuery())

	first, err := ex.Execute(ctx, b.CursorPaginate(3, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"u4", "u3", "u2"}, ids(first.Page.Data))
	require.NotNil(t, first.Page.Pagination.NextCursor)

	second, err := ex.Execute(ctx, b.CursorPaginate(3, *first.Page.Pagination.NextCursor))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(second.Page.Data))
	assert.False(t, second.Page.Pagination.HasMorePages)
	require.NotNil(t, second.Page.Pagination.PrevCursor)

	back, err := ex.Execute(ctx, b.CursorPaginate(3, *second.Page.Pagination.PrevCursor))
	require.NoError(t, err)
	assert.Equal(t, []string{"u4", "u3", "u2"}, ids(back.Page.Data))
	assert.Nil(t, back.Page.Pagination.PrevCursor)
}

func walkCursor(t *testing.T, ex *sqlexec.Executor, b query.Builder, perPage int) []string {
	t.Helper()
	var seen []string
	token := ""
	for i := 0; i < 10; i++ {
		res, err := ex.Execute(context.Background(), b.CursorPaginate(perPage, token))
		require.NoError(t, err)
		seen = append(seen, ids(res.Page.Data)...)
		if res.Page.Pagination.NextCursor == nil {
			return seen
		}
		token = *res.Page.Pagination.NextCursor
	}
	t.Fatal("cursor walk did not end")
	return nil
}

func TestSQLite_CursorWalkOverNullableColumn(t *testing.T) {
	t.Run("todos NULL", func(t *testing.T) {
		_, ex := setupSQLite(t)
		b := query.New(userDomain.NewUserQuery()).OrderBy("birth_date", query.Asc)

		assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, walkCursor(t, ex, b, 2))
	})

	t.Run("mezcla de valores y NULL", func(t *testing.T) {
		conn, ex := setupSQLite(t)
		ctx := context.Background()
		_, err := conn.ExecContext(ctx, `UPDATE users SET birth_date = ? WHERE id = ?`, time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "u2")
		require.NoError(t, err)
		_, err = conn.ExecContext(ctx, `UPDATE users SET birth_date = ? WHERE id = ?`, time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC), "u4")
		require.NoError(t, err)
		users := query.New(userDomain.NewUserQuery())

		assert.Equal(t, []string{"u4", "u2", "u1", "u3"}, walkCursor(t, ex, users.OrderBy("birth_date", query.Asc), 1))
		assert.Equal(t, []string{"u3", "u1", "u2", "u4"}, walkCursor(t, ex, users.OrderByDesc("birth_date"), 1))
	})

	t.Run("vuelta atrás desde NULL", func(t *testing.T) {
		conn, ex := setupSQLite(t)
		ctx := context.Background()
		_, err := conn.ExecContext(ctx, `UPDATE users SET birth_date = ? WHERE id = ?`, time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "u2")
		require.NoError(t, err)
		b := query.New(userDomain.NewUserQuery()).OrderBy("birth_date", query.Asc)

		first, err := ex.Execute(ctx, b.CursorPaginate(2, ""))
		require.NoError(t, err)
		require.Equal(t, []string{"u2", "u1"}, ids(first.Page.Data))
		second, err := ex.Execute(ctx, b.CursorPaginate(2, *first.Page.Pagination.NextCursor))
		require.NoError(t, err)
		require.Equal(t, []string{"u3", "u4"}, ids(second.Page.Data))

		back, err := ex.Execute(ctx, b.CursorPaginate(2, *second.Page.Pagination.PrevCursor))
		require.NoError(t, err)
		assert.Equal(t, []string{"u2", "u1"}, ids(back.Page.Data))
	})
}

func TestSQLite_OffsetWithCaseInsensitiveFilter(t *testing.T) {
	_, ex := setupSQLite(t)
	b := query.New(userDomain.NewUserQuery()).
		Where("nombre", query.OpIContains, query.Single("AR")).
		OrderBy("nombre", query.Asc).
		Paginate(1, 10)

	res, err := ex.Execute(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u4"}, ids(res.Page.Data))
	assert.Equal(t, int64(2), *res.Page.Pagination.Total)
}

func TestSQLite_SoftDeletes(t *testing.T) {
	_, ex := setupSQLite(t)
	ctx := context.Background()
	users := query.New(userDomain.NewUserQuery())

	active, err := ex.ExecuteCount(ctx, users)
	require.NoError(t, err)
	trashed, err := ex.ExecuteCount(ctx, users.OnlyTrashed())
	require.NoError(t, err)
	all, err := ex.ExecuteCount(ctx, users.WithTrashed())
	require.NoError(t, err)

	assert.Equal(t, int64(4), active)
	assert.Equal(t, int64(1), trashed)
	assert.Equal(t, int64(5), all)
}

func TestSQLite_TasksWithJoinAndAuditChain(t *testing.T) {
	_, ex := setupSQLite(t)
	b := query.New(taskDomain.NewTaskQuery()).With("assignee", "createdBy.organizations.position.level")

	rows, err := ex.ExecuteAll(context.Background(), b)

	require.NoError(t, err)
	require.Equal(t, []string{"t2", "t1"}, ids(rows))

	assert.Nil(t, rows[0]["assignee"])
	assert.Equal(t, query.Record{
		"id": "u1", "email": "ana@example.com", "nombre": "Ana",
		"organizations": []query.Record{},
	}, rows[0]["createdBy"])

	assert.Equal(t, query.Record{"id": "u1", "email": "ana@example.com", "nombre": "Ana"}, rows[1]["assignee"])
	creator := rows[1]["createdBy"].(query.Record)
	assert.Equal(t, "u2", creator["id"])
	orgs := creator["organizations"].([]query.Record)
	require.Len(t, orgs, 2)
	assert.Equal(t, query.Record{
		"id":   int64(1),
		"name": "Sales",
		"position": query.Record{
			"id":    int64(1),
			"name":  "Lead",
			"level": query.Record{"id": int64(1), "name": "Senior", "rank": int64(3)},
		},
	}, orgs[0])
	assert.Nil(t, orgs[1]["position"])
}

func TestSQLite_UsersWithBatchedRelations(t *testing.T) {
	_, ex := setupSQLite(t)
	b := query.New(userDomain.NewUserQuery()).
		WhereIn("id", "u1", "u2").
		OrderBy("id", query.Asc).
		With("tasks", "organizations.position.level")

	rows, err := ex.ExecuteAll(context.Background(), b)

	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, ids(rows))

	tasks := rows[0]["tasks"].([]query.Record)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0]["id"])
	assert.Equal(t, []query.Record{}, rows[1]["tasks"])
	assert.Equal(t, []query.Record{}, rows[0]["organizations"])

	orgs := rows[1]["organizations"].([]query.Record)
	require.Len(t, orgs, 2)
	position := orgs[0]["position"].(query.Record)
	assert.Equal(t, "Lead", position["name"])
	assert.Equal(t, query.Record{"id": int64(1), "name": "Senior", "rank": int64(3)}, position["level"])
	assert.Nil(t, orgs[1]["position"])
}

func TestSQLite_FirstByEmailIgnoresCase(t *testing.T) {
	_, ex := setupSQLite(t)
	b := query.New(userDomain.NewUserQuery()).WhereEq("email", "BOB@example.com")

	rec, found, err := ex.ExecuteFirst(context.Background(), b)

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u2", rec["id"])
}
