package triage

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSON(t *testing.T) {
	var body struct {
		Values []Value `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"values":[true, 38.5, "Feminino", null, -2]}`), &body))

	require.Len(t, body.Values, 5)
	assert.True(t, body.Values[0].Equal(Bool(true)))
	assert.True(t, body.Values[1].Equal(Number(38.5)))
	assert.True(t, body.Values[2].Equal(Choice("Feminino")))
	assert.True(t, body.Values[3].IsUnknown())
	assert.True(t, body.Values[4].Equal(Number(-2)))

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"values":[true,38.5,"Feminino",null,-2]}`, string(out))
}

func TestValueJSONRejects(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &v))

	_, err := json.Marshal(Number(math.NaN()))
	assert.Error(t, err)
}

func TestValueEqualAndString(t *testing.T) {
	assert.True(t, Value{}.Equal(Unknown()))
	assert.False(t, Bool(true).Equal(Choice("true")))
	assert.False(t, Number(1).Equal(Bool(true)))
	assert.Equal(t, "sim", Bool(true).String())
	assert.Equal(t, "não", Bool(false).String())
	assert.Equal(t, "37.8", Number(37.8).String())
	assert.Equal(t, "não sabe", Unknown().String())
}
