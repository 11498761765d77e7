package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want Operator
	}{
		{"", OpEq},
		{"eq", OpEq},
		{" EQ ", OpEq},
		{"=", OpEq},
		{"!=", OpNe},
		{"neq", OpNe},
		{">", OpGt},
		{">=", OpGte},
		{"<", OpLt},
		{"<=", OpLte},
		{"null", OpIsNull},
		{"not_null", OpIsNotNull},
		{"nin", OpNotIn},
		{"icontains", OpIContains},
		{"not_between", OpNotBetween},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOperator(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ParseOperator("soundex")
	assert.False(t, ok)
}

func TestOperator_ShapeAndCategory(t *testing.T) {
	assert.Equal(t, MultipleValue, OpIn.Shape())
	assert.Equal(t, RangeValue, OpNotBetween.Shape())
	assert.Equal(t, NoValue, OpIsNull.Shape())
	assert.Equal(t, SingleValue, OpStartsWith.Shape())

	assert.Equal(t, CategoryPattern, OpIEndsWith.Category())
	assert.Equal(t, CategoryRaw, OpRaw.Category())
	assert.Equal(t, CategoryUnknown, Operator("x").Category())

	assert.True(t, OpILike.CaseInsensitive())
	assert.False(t, OpLike.CaseInsensitive())
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, NewFilter("name", OpEq, Single("x")).Validate())
	assert.ErrorIs(t, NewFilter("", OpEq, Single("x")).Validate(), ErrInvalidParam)
	assert.ErrorIs(t, NewFilter("name", Operator("x"), Single("x")).Validate(), ErrInvalidParam)
	assert.ErrorIs(t, Filter{Operator: OpRaw}.Validate(), ErrInvalidParam)
	assert.NoError(t, Filter{Operator: OpRaw, Raw: "a = ?", Value: Multiple(1)}.Validate())
}

func TestFilterValue_Reshape(t *testing.T) {
	assert.Equal(t, Multiple("a"), NewFilter("f", OpIn, Single("a")).Value)
	assert.Equal(t, Single("a"), NewFilter("f", OpEq, Multiple("a", "b")).Value)
	assert.Equal(t, Single(nil), NewFilter("f", OpEq, Multiple()).Value)
	assert.Equal(t, None(), NewFilter("f", OpIsNull, Single("a")).Value)
	assert.Nil(t, Single(nil).List())
}

func TestFilter_String(t *testing.T) {
	f := NewFilter("name", OpEq, Single("x"))
	f.Or = true
	assert.Equal(t, "or:name eq", f.String())
	assert.Equal(t, "raw(a = 1)", Filter{Operator: OpRaw, Raw: "a = 1"}.String())
}
