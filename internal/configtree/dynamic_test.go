package configtree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
)

func TestDynamicResolver_Resolve(t *testing.T) {
	source := StaticEnvSource{
		"uat": {
			"foo":      float64(42),
			"endpoint": "https://uat.example.com",
			"nested":   map[string]any{"a": float64(1)},
		},
	}
	resolver := NewDynamicResolver(source)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"thay placeholder bằng số", `{"a":"$.foo"}`, `{"a":42}`},
		{"thay placeholder bằng chuỗi", `{"url":"$.endpoint"}`, `{"url":"https://uat.example.com"}`},
		{"thay placeholder bằng object", `{"cfg":"$.nested"}`, `{"cfg":{"a":1}}`},
		{"đệ quy trong array", `[{"a":"$.foo"},"$.endpoint"]`, `[{"a":42},"https://uat.example.com"]`},
		{"chuỗi thường đi qua nguyên vẹn", `{"a":"plain","b":"$x"}`, `{"a":"plain","b":"$x"}`},
		{"scalar đi qua nguyên vẹn", `[1,true,null,"x"]`, `[1,true,null,"x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := resolver.Resolve(mustDecode(t, tt.input), "uat")
			require.NoError(t, err)
			assert.Equal(t, mustDecode(t, tt.expected), resolved)
		})
	}
}

func TestDynamicResolver_MissingKey(t *testing.T) {
	resolver := NewDynamicResolver(StaticEnvSource{"uat": {}})

	_, err := resolver.Resolve(mustDecode(t, `{"a":"$.foo"}`), "uat")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOperationFailure)
	assert.Contains(t, err.Error(), "Missing env variable: foo")
}

// Giá trị thay thế là deep copy: sửa kết quả không ảnh hưởng bảng gốc
func TestDynamicResolver_DeepCopy(t *testing.T) {
	table := map[string]any{"nested": map[string]any{"a": float64(1)}}
	resolver := NewDynamicResolver(StaticEnvSource{"uat": table})

	resolved, err := resolver.Resolve(mustDecode(t, `{"cfg":"$.nested"}`), "uat")
	require.NoError(t, err)

	resolved.(map[string]any)["cfg"].(map[string]any)["a"] = float64(999)
	assert.Equal(t, float64(1), table["nested"].(map[string]any)["a"])
}

// Value gốc không bị resolver sửa tại chỗ
func TestDynamicResolver_InputUntouched(t *testing.T) {
	resolver := NewDynamicResolver(StaticEnvSource{"uat": {"foo": "resolved"}})

	input := mustDecode(t, `{"a":"$.foo"}`)
	_, err := resolver.Resolve(input, "uat")
	require.NoError(t, err)
	assert.Equal(t, "$.foo", input.(map[string]any)["a"])
}

func TestFileEnvSource_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uat.json"), []byte(`{"foo":42}`), 0o644))

	source := NewFileEnvSource(dir)

	table, err := source.Load("uat")
	require.NoError(t, err)
	assert.Equal(t, float64(42), table["foo"])

	// Env viết hoa đọc cùng file
	table, err = source.Load("UAT")
	require.NoError(t, err)
	assert.Equal(t, float64(42), table["foo"])

	// Env chưa có bảng: map rỗng, không lỗi
	table, err = source.Load("prod")
	require.NoError(t, err)
	assert.Empty(t, table)
}

// Bảng được cache: thay đổi file sau lần đọc đầu không thấy ở lần đọc sau
func TestFileEnvSource_Cached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uat.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"foo":1}`), 0o644))

	source := NewFileEnvSource(dir)
	table, err := source.Load("uat")
	require.NoError(t, err)
	assert.Equal(t, float64(1), table["foo"])

	require.NoError(t, os.WriteFile(path, []byte(`{"foo":2}`), 0o644))
	table, err = source.Load("uat")
	require.NoError(t, err)
	assert.Equal(t, float64(1), table["foo"])
}
