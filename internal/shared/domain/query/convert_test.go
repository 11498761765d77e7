package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ft   FieldType
		want any
		ok   bool
	}{
		{"int", " 42 ", FieldInt, int64(42), true},
		{"int mal formado", "4x", FieldInt, int64(0), false},
		{"float", "1.5", FieldFloat, 1.5, true},
		{"float mal formado", "uno", FieldFloat, float64(0), false},
		{"bool true", "YES", FieldBool, true, true},
		{"bool false", "0", FieldBool, false, true},
		{"bool mal formado", "maybe", FieldBool, false, false},
		{"texto", "ana", FieldString, "ana", true},
		{"texto nulo", "NULL", FieldString, nil, true},
		{"fecha", "2024-03-01", FieldTime, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"fecha rfc3339", "2024-03-01T10:00:00+02:00", FieldTime, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), true},
		{"fecha inválida", "ayer", FieldTime, "ayer", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.raw, tt.ft)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeValue(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	got, ok := TimeValue("2024-03-01 10:30:00")
	assert.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = TimeValue([]byte("2024-03-01T10:30:00Z"))
	assert.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = TimeValue(want)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = TimeValue((*time.Time)(nil))
	assert.False(t, ok)
	_, ok = TimeValue(nil)
	assert.False(t, ok)
	_, ok = TimeValue(12)
	assert.False(t, ok)
}
