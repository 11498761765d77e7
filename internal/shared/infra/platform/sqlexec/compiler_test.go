package sqlexec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
)

func compile(t *testing.T, d Dialect, b query.Builder) Plan {
	t.Helper()
	plan, err := NewCompiler(d).Compile(b)
	require.NoError(t, err)
	return plan
}

func TestCompile_SelectFilterSortOffset(t *testing.T) {
	b := query.New(usersEntity()).
		Select("id", "name").
		WhereEq("name", "ana").
		OrderBy("name", query.Asc).
		Paginate(1, 10)

	plan := compile(t, Postgres, b)

	assert.Equal(t, "SELECT id, name FROM users WHERE name = $1 ORDER BY name ASC LIMIT 10 OFFSET 0", plan.Main.SQL)
	assert.Equal(t, []any{"ana"}, plan.Main.Args)
	assert.Equal(t, "SELECT COUNT(*) FROM users WHERE name = $1", plan.Count.SQL)
	assert.Equal(t, []any{"ana"}, plan.Count.Args)
	assert.Equal(t, query.ModeOffset, plan.Mode)
	assert.Equal(t, 1, plan.Page)
	assert.Equal(t, 10, plan.PerPage)
}

func TestCompile_Defaults(t *testing.T) {
	plan := compile(t, Postgres, query.New(newPostQuery()))

	assert.Equal(t, "SELECT "+postColumns+" FROM posts WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT 15 OFFSET 0", plan.Main.SQL)
	assert.Equal(t, []any{}, plan.Main.Args)
	assert.Equal(t, "SELECT COUNT(*) FROM posts WHERE deleted_at IS NULL", plan.Count.SQL)
	assert.Equal(t, query.ModeOffset, plan.Mode)
	assert.Empty(t, plan.Warnings)
}

func TestCompile_OrGroupAndTrashed(t *testing.T) {
	b := query.New(newPostQuery()).
		WhereEq("status", "open").
		OrWhere("title", query.OpIContains, query.Single("go")).
		OrWhere("title", query.OpEq, query.Single("x")).
		WithTrashed()

	plan := compile(t, Postgres, b)

	assert.Equal(t,
		`SELECT `+postColumns+` FROM posts WHERE status = $1 AND (title ILIKE $2 ESCAPE '\' OR title = $3) ORDER BY created_at DESC LIMIT 15 OFFSET 0`,
		plan.Main.SQL)
	assert.Equal(t, []any{"open", "%go%", "x"}, plan.Main.Args)
}

func TestCompile_OnlyTrashed(t *testing.T) {
	plan := compile(t, Postgres, query.New(newPostQuery()).OnlyTrashed())

	assert.Equal(t, "SELECT COUNT(*) FROM posts WHERE deleted_at IS NOT NULL", plan.Count.SQL)
}

func TestCompile_CustomSortAndRawFilter(t *testing.T) {
	b := query.New(newPostQuery()).
		OrderByDesc("title").
		WhereRaw("views % ? = 0", 2).
		WhereIn("id")

	plan := compile(t, Postgres, b)

	assert.Equal(t,
		"SELECT "+postColumns+" FROM posts WHERE (views % $1 = 0) AND 1=0 AND deleted_at IS NULL ORDER BY LOWER(title) DESC LIMIT 15 OFFSET 0",
		plan.Main.SQL)
	assert.Equal(t, []any{2}, plan.Main.Args)
}

func TestCompile_EagerBelongsToIsJoined(t *testing.T) {
	plan := compile(t, Postgres, query.New(newPostQuery()).With("author"))

	assert.Equal(t,
		"SELECT posts.id, posts.title, posts.status, posts.author_id, posts.created_by, posts.created_at, "+
			`rel_author.id AS "author__id", rel_author.name AS "author__name" `+
			"FROM posts LEFT JOIN users AS rel_author ON rel_author.id = posts.author_id "+
			"WHERE posts.deleted_at IS NULL ORDER BY posts.created_at DESC LIMIT 15 OFFSET 0",
		plan.Main.SQL)
	assert.Equal(t, "SELECT COUNT(*) FROM posts WHERE posts.deleted_at IS NULL", plan.Count.SQL)
	assert.Equal(t, []string{"author"}, plan.Joined)
	assert.Empty(t, plan.Batched)
}

func TestCompile_JoinAliasKeepsCase(t *testing.T) {
	q := newPostQuery()
	q.RelationSet = query.RelationSet{
		"mainAuthor": {Kind: query.BelongsTo, Table: "users", ForeignKey: "author_id", Columns: []string{"id"}, Eager: true},
	}
	q.Includes = []string{"mainAuthor"}
	b := query.New(q).With("mainAuthor")

	assert.Contains(t, compile(t, Postgres, b).Main.SQL, `rel_main_author.id AS "mainAuthor__id"`)
	assert.Contains(t, compile(t, SQLite, b).Main.SQL, `rel_main_author.id AS "mainAuthor__id"`)
	assert.Contains(t, compile(t, ClickHouse, b).Main.SQL, "rel_main_author.id AS `mainAuthor__id`")
}

func TestCompile_BatchedIncludesAddKeys(t *testing.T) {
	b := query.New(newPostQuery()).Select("title").With("comments.user", "editor")

	plan := compile(t, Postgres, b)

	assert.Equal(t, "SELECT title, id, editor_id FROM posts WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT 15 OFFSET 0", plan.Main.SQL)
	assert.Equal(t, []query.Include{{Relation: "comments.user"}, {Relation: "editor"}}, plan.Batched)
	assert.Empty(t, plan.Joined)
	assert.Empty(t, plan.Audit)
}

func TestCompile_AuditChainKeepsDeepestRequest(t *testing.T) {
	b := query.New(newPostQuery()).With("createdBy.organizations", "createdBy", "createdBy.organizations.position")

	plan := compile(t, Postgres, b)

	require.Len(t, plan.Audit, 1)
	assert.Equal(t, 3, plan.Audit[0].Depth)
	assert.Equal(t, "createdBy", plan.Audit[0].Chain.Relation)
	assert.Empty(t, plan.Batched)
}

func TestCompile_CursorFirstPage(t *testing.T) {
	plan := compile(t, Postgres, query.New(newPostQuery()).CursorPaginate(10, ""))

	assert.Equal(t, "SELECT "+postColumns+" FROM posts WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC LIMIT 11", plan.Main.SQL)
	assert.Equal(t, "SELECT COUNT(*) FROM posts WHERE deleted_at IS NULL", plan.Count.SQL)
	assert.Equal(t, &CursorPlan{Field: "created_at", Key: "id", Direction: query.Desc}, plan.Cursor)
	assert.Equal(t, query.ModeCursor, plan.Mode)
}

func TestCompile_CursorNextPage(t *testing.T) {
	token := EncodeCursor(Cursor{Value: "m", ID: "p-9"})
	b := query.New(newPostQuery()).OrderBy("title", query.Asc).CursorPaginate(5, token)

	plan := compile(t, Postgres, b)

	assert.Equal(t,
		"SELECT "+postColumns+" FROM posts WHERE deleted_at IS NULL AND (title, id) > ($1, $2) ORDER BY title ASC, id ASC LIMIT 6",
		plan.Main.SQL)
	assert.Equal(t, []any{"m", "p-9"}, plan.Main.Args)
	assert.Equal(t, []any{}, plan.Count.Args)
	assert.True(t, plan.Cursor.HasToken)
	assert.False(t, plan.Cursor.Previous)
}

func TestCompile_CursorPreviousPageReversesOrder(t *testing.T) {
	token := EncodeCursor(Cursor{Value: "m", ID: "p-9", Previous: true})
	b := query.New(newPostQuery()).OrderBy("title", query.Asc).CursorPaginate(5, token)

	plan := compile(t, Postgres, b)

	assert.Equal(t,
		"SELECT "+postColumns+" FROM posts WHERE deleted_at IS NULL AND (title, id) < ($1, $2) ORDER BY title DESC, id DESC LIMIT 6",
		plan.Main.SQL)
	assert.True(t, plan.Cursor.Previous)
	assert.Equal(t, query.Asc, plan.Cursor.Direction)
}

func TestCompile_CursorOnKeyColumn(t *testing.T) {
	token := EncodeCursor(Cursor{ID: 40})
	b := query.New(newPostQuery()).OrderByDesc("id").CursorPaginate(5, token)

	plan := compile(t, Postgres, b)

	assert.Equal(t, "SELECT "+postColumns+" FROM posts WHERE deleted_at IS NULL AND id < $1 ORDER BY id DESC LIMIT 6", plan.Main.SQL)
	assert.Equal(t, []any{int64(40)}, plan.Main.Args)
}

func TestCompile_CursorOnNullableColumn(t *testing.T) {
	b := query.New(usersEntity()).OrderBy("age", query.Asc)

	first := compile(t, Postgres, b.CursorPaginate(2, ""))
	assert.Equal(t, "SELECT id, name, email, age FROM users ORDER BY age ASC NULLS LAST, id ASC LIMIT 3", first.Main.SQL)
	assert.True(t, first.Cursor.Nullable)

	tests := []struct {
		name   string
		cursor Cursor
		sql    string
		args   []any
	}{
		{
			name:   "valor presente",
			cursor: Cursor{Value: 30, ID: 7},
			sql:    "SELECT id, name, email, age FROM users WHERE (age > $1 OR (age = $2 AND id > $3) OR age IS NULL) ORDER BY age ASC NULLS LAST, id ASC LIMIT 3",
			args:   []any{int64(30), int64(30), int64(7)},
		},
		{
			name:   "valor NULL",
			cursor: Cursor{Value: nil, ID: 7},
			sql:    "SELECT id, name, email, age FROM users WHERE (age IS NULL AND id > $1) ORDER BY age ASC NULLS LAST, id ASC LIMIT 3",
			args:   []any{int64(7)},
		},
		{
			name:   "hacia atrás con valor",
			cursor: Cursor{Value: 30, ID: 7, Previous: true},
			sql:    "SELECT id, name, email, age FROM users WHERE (age < $1 OR (age = $2 AND id < $3)) ORDER BY age DESC NULLS FIRST, id DESC LIMIT 3",
			args:   []any{int64(30), int64(30), int64(7)},
		},
		{
			name:   "hacia atrás desde NULL",
			cursor: Cursor{Value: nil, ID: 7, Previous: true},
			sql:    "SELECT id, name, email, age FROM users WHERE (age IS NOT NULL OR id < $1) ORDER BY age DESC NULLS FIRST, id DESC LIMIT 3",
			args:   []any{int64(7)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := compile(t, Postgres, b.CursorPaginate(2, EncodeCursor(tt.cursor)))

			assert.Equal(t, tt.sql, plan.Main.SQL)
			assert.Equal(t, tt.args, plan.Main.Args)
		})
	}
}

func TestCompile_CursorTimeValueIsParsed(t *testing.T) {
	token := EncodeCursor(Cursor{Value: "2024-01-01T00:00:00Z", ID: "p-1"})

	plan := compile(t, Postgres, query.New(newPostQuery()).CursorPaginate(5, token))

	require.Len(t, plan.Main.Args, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), plan.Main.Args[0])
}

func TestCompile_CursorWarnings(t *testing.T) {
	invalid := compile(t, Postgres, query.New(newPostQuery()).CursorPaginate(5, "garbage!"))
	assert.Equal(t, []string{"cursor is invalid and was ignored"}, invalid.Warnings)
	assert.False(t, invalid.Cursor.HasToken)
	assert.NotContains(t, invalid.Main.SQL, "<")

	multi := compile(t, Postgres, query.New(newPostQuery()).OrderBy("title", query.Asc).OrderByDesc("created_at").CursorPaginate(5, ""))
	assert.Equal(t, []string{"cursor pagination orders by the first sort only"}, multi.Warnings)
	assert.Contains(t, multi.Main.SQL, "ORDER BY title ASC, id ASC LIMIT 6")
}

func TestCompile_HugePageKeepsOffsetPositive(t *testing.T) {
	b, err := query.FromParams(usersEntity(), query.QueryParams{Page: "1000000000000000000", PerPage: "15"})
	require.NoError(t, err)

	plan := compile(t, Postgres, b)

	assert.Equal(t, "SELECT id, name, email, age FROM users LIMIT 15 OFFSET 64424509410", plan.Main.SQL)
}

func TestCompile_AllFirstCount(t *testing.T) {
	b := query.New(newPostQuery()).WhereEq("status", "open").Paginate(3, 10)
	c := NewCompiler(Postgres)

	all, err := c.CompileAll(b)
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+postColumns+" FROM posts WHERE status = $1 AND deleted_at IS NULL ORDER BY created_at DESC", all.Main.SQL)
	assert.Equal(t, query.ModeUnset, all.Mode)

	first, err := c.CompileFirst(b)
	require.NoError(t, err)
	assert.Equal(t, all.Main.SQL+" LIMIT 1", first.Main.SQL)
	assert.Equal(t, 1, first.PerPage)

	count, err := c.CompileCount(b)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM posts WHERE status = $1 AND deleted_at IS NULL", count.SQL)
	assert.Equal(t, []any{"open"}, count.Args)
}

func TestCompile_Dialects(t *testing.T) {
	b := query.New(newPostQuery()).WhereContains("title", "go").WithTrashed()

	sqlite := compile(t, SQLite, b)
	assert.Equal(t, `SELECT `+postColumns+` FROM posts WHERE title LIKE ? ESCAPE '\' ORDER BY created_at DESC LIMIT 15 OFFSET 0`, sqlite.Main.SQL)

	ch := compile(t, ClickHouse, b)
	assert.Equal(t, `SELECT `+postColumns+` FROM posts WHERE title ILIKE ? ORDER BY created_at DESC LIMIT 15 OFFSET 0`, ch.Main.SQL)
}

func TestCompile_NoEntity(t *testing.T) {
	_, err := NewCompiler(nil).Compile(query.New(nil))

	assert.ErrorIs(t, err, ErrNoEntity)
}
