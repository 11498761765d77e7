package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyed struct {
	Table string `json:"table"`
}

func (k keyed) PartitionKey() string { return k.Table }

func TestEncode(t *testing.T) {
	key, payload, err := Encode(keyed{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, []byte("users"), key)
	assert.JSONEq(t, `{"table":"users"}`, string(payload))

	key, _, err = Encode(keyed{})
	require.NoError(t, err)
	assert.Nil(t, key)

	key, payload, err = Encode(map[string]int{"rows": 3})
	require.NoError(t, err)
	assert.Nil(t, key)
	assert.JSONEq(t, `{"rows":3}`, string(payload))
}

func TestEncode_Unsupported(t *testing.T) {
	_, _, err := Encode(make(chan int))

	assert.ErrorContains(t, err, "encode event chan int")
}
