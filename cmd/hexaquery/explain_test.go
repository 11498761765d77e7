package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
)

func resetExplainFlags(t *testing.T) {
	t.Helper()
	explainDialect, explainFormat, explainStrict, explainMaxPage = "postgres", "json", false, 100
	t.Cleanup(func() { explainDialect, explainFormat, explainStrict, explainMaxPage = "postgres", "yaml", false, 100 })
}

func TestRunExplain_JSON(t *testing.T) {
	resetExplainFlags(t)
	var out bytes.Buffer

	err := runExplain(&out, "users", "filter[nombre]=Ana&sort=email&page=2&per_page=10")

	require.NoError(t, err)
	var ex sqlexec.Explanation
	require.NoError(t, json.Unmarshal(out.Bytes(), &ex))
	assert.Equal(t, "postgres", ex.Dialect)
	assert.Equal(t,
		"SELECT id, email, nombre, birth_date, created_at FROM users WHERE nombre = $1 AND deleted_at IS NULL ORDER BY email ASC LIMIT 10 OFFSET 10",
		ex.SQL)
	assert.Equal(t, "SELECT COUNT(*) FROM users WHERE nombre = $1 AND deleted_at IS NULL", ex.CountSQL)
}

func TestRunExplain_YAMLSQLite(t *testing.T) {
	resetExplainFlags(t)
	explainFormat, explainDialect = "yaml", "sqlite"
	var out bytes.Buffer

	err := runExplain(&out, "tasks", "filter[title][icontains]=report&per_page=5&pagination_type=cursor")

	require.NoError(t, err)
	var ex sqlexec.Explanation
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &ex))
	assert.Equal(t, "sqlite", ex.Dialect)
	assert.Contains(t, ex.SQL, `title LIKE ? ESCAPE '\'`)
	assert.NotContains(t, ex.SQL, "ILIKE")
	assert.True(t, strings.HasSuffix(ex.SQL, "ORDER BY created_at DESC, id DESC LIMIT 6"))
	assert.Empty(t, ex.CountSQL)
	assert.Equal(t, []any{"%report%"}, ex.Args)
}

func TestRunExplain_StrictRejects(t *testing.T) {
	resetExplainFlags(t)
	explainStrict = true

	err := runExplain(&bytes.Buffer{}, "users", "sort=password")

	assert.Error(t, err)
}

func TestRunExplain_UnknownEntity(t *testing.T) {
	resetExplainFlags(t)

	err := runExplain(&bytes.Buffer{}, "invoices", "")

	assert.ErrorContains(t, err, "available: tasks, users")
}
