package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeJSON_PrimitiveTypes(t *testing.T) {
	// primitive.M / primitive.A từ mongo driver phải về map/slice thuần
	in := primitive.M{
		"name":  "visa",
		"rules": primitive.A{primitive.M{"limit": int32(5)}, "plain"},
	}

	out, err := NormalizeJSON(in)
	require.NoError(t, err)

	m, ok := out.(map[string]interface{})
	require.True(t, ok, "kết quả phải là map[string]interface{}")
	assert.Equal(t, "visa", m["name"])

	rules, ok := m["rules"].([]interface{})
	require.True(t, ok, "rules phải là []interface{}")
	require.Len(t, rules, 2)

	first, ok := rules[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(5), first["limit"])
}

func TestNormalizeJSON_Nil(t *testing.T) {
	out, err := NormalizeJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestNormalizeJSONArray(t *testing.T) {
	out, err := NormalizeJSONArray([]interface{}{primitive.M{"a": int64(1)}, "x", nil})
	require.NoError(t, err)
	require.Len(t, out, 3)

	m, ok := out[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), m["a"])
	assert.Equal(t, "x", out[1])
	assert.Nil(t, out[2])

	out, err = NormalizeJSONArray(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}
