package configtree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustDecode parse một literal JSON thành giá trị Go như engine sẽ nhận
func mustDecode(t *testing.T, text string) any {
	t.Helper()
	var value any
	require.NoError(t, json.Unmarshal([]byte(text), &value))
	return value
}

func TestClassify_PriorityOrder(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expectedPattern ElementPattern
		expectedName    string
	}{
		{"name field", `{"name":"alpha","v":1}`, PatternNameField, "alpha"},
		{"name được trim", `{"name":"  alpha  "}`, PatternNameField, "alpha"},
		{"name thắng id", `{"name":"alpha","id":7}`, PatternNameField, "alpha"},
		{"name không phải chuỗi rơi xuống id", `{"name":123,"id":7}`, PatternIDField, "7"},
		{"name toàn khoảng trắng rơi xuống id", `{"name":"   ","id":7}`, PatternIDField, "7"},
		{"id field", `{"id":123,"k":"v"}`, PatternIDField, "123"},
		{"id null vẫn là id field", `{"id":null,"k":"v"}`, PatternIDField, "null"},
		{"id thắng type", `{"id":1,"type":"card"}`, PatternIDField, "1"},
		{"type field", `{"type":"card","a":1}`, PatternTypeField, "card"},
		{"plain string", `"visa"`, PatternPlainString, "visa"},
		{"plain string được trim tên", `"  visa  "`, PatternPlainString, "visa"},
		{"số nguyên", `42`, PatternPrimitive, "42"},
		{"số thập phân", `12.5`, PatternPrimitive, "12.5"},
		{"boolean", `false`, PatternPrimitive, "false"},
		{"single key object", `{"wrap":{"inner":1}}`, PatternSingleKeyObject, "wrap"},
		{"single key giá trị scalar", `{"k":5}`, PatternSingleKeyObject, "k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Classify(mustDecode(t, tt.input), 0, "group_0")
			require.Len(t, results, 1)
			assert.Equal(t, tt.expectedPattern, results[0].Pattern)
			assert.Equal(t, tt.expectedName, results[0].Name)
			assert.Empty(t, results[0].Group)
		})
	}
}

func TestClassify_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"chuỗi rỗng", `""`},
		{"chuỗi toàn khoảng trắng", `"   "`},
		{"null", `null`},
		{"array lồng", `[1,2,3]`},
		{"object rỗng", `{}`},
		{"multi-key có giá trị primitive", `{"p":1,"q":2}`},
		{"multi-key lẫn primitive và container", `{"p":{"a":1},"q":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := mustDecode(t, tt.input)
			results := Classify(input, 3, "group_0")
			require.Len(t, results, 1)
			assert.Equal(t, PatternFallback, results[0].Pattern)
			assert.Equal(t, "item_3", results[0].Name)
			assert.Equal(t, input, results[0].Value)
		})
	}
}

func TestClassify_MultiKeyExplode(t *testing.T) {
	input := mustDecode(t, `{"y":{"q":2},"x":{"p":1},"z":[1,2]}`)
	results := Classify(input, 0, "group_7")
	require.Len(t, results, 3)

	// Key duyệt theo thứ tự alphabet để kết quả ổn định
	assert.Equal(t, "x", results[0].Name)
	assert.Equal(t, "y", results[1].Name)
	assert.Equal(t, "z", results[2].Name)
	for _, r := range results {
		assert.Equal(t, PatternMultiKeyExplode, r.Pattern)
		assert.Equal(t, "group_7", r.Group)
	}
	assert.Equal(t, mustDecode(t, `{"p":1}`), results[0].Value)
	assert.Equal(t, mustDecode(t, `{"q":2}`), results[1].Value)
	assert.Equal(t, mustDecode(t, `[1,2]`), results[2].Value)
}

// SINGLE_KEY_OBJECT lưu giá trị bên trong, không lưu cả object
func TestClassify_SingleKeyStoresInnerValue(t *testing.T) {
	results := Classify(mustDecode(t, `{"wrap":{"inner":[1,2]}}`), 0, "g")
	require.Len(t, results, 1)
	assert.Equal(t, mustDecode(t, `{"inner":[1,2]}`), results[0].Value)
}

// PLAIN_STRING giữ nguyên chuỗi gốc (kể cả khoảng trắng), chỉ tên bị trim
func TestClassify_PlainStringKeepsOriginal(t *testing.T) {
	results := Classify("  visa  ", 0, "g")
	require.Len(t, results, 1)
	assert.Equal(t, "visa", results[0].Name)
	assert.Equal(t, "  visa  ", results[0].Value)
}

func TestElementPattern_Decode(t *testing.T) {
	value := mustDecode(t, `{"inner":1}`)

	// SINGLE_KEY_OBJECT bọc lại giá trị dưới tên element
	wrapped := PatternSingleKeyObject.Decode("wrap", value)
	assert.Equal(t, mustDecode(t, `{"wrap":{"inner":1}}`), wrapped)

	// Các pattern còn lại trả về giá trị nguyên vẹn
	for _, p := range []ElementPattern{
		PatternNameField, PatternIDField, PatternTypeField,
		PatternPlainString, PatternPrimitive, PatternMultiKeyExplode, PatternFallback,
	} {
		assert.Equal(t, value, p.Decode("x", value), "pattern %s", p)
	}
}

func TestElementPattern_IsValid(t *testing.T) {
	for _, p := range []ElementPattern{
		PatternNameField, PatternIDField, PatternTypeField, PatternPlainString,
		PatternPrimitive, PatternSingleKeyObject, PatternMultiKeyExplode, PatternFallback,
	} {
		assert.True(t, p.IsValid(), "pattern %s", p)
	}
	assert.False(t, ElementPattern("SOMETHING_ELSE").IsValid())
	assert.False(t, ElementPattern("").IsValid())
}
