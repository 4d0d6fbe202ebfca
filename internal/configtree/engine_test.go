package configtree

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
)

// mustArray parse một literal JSON array như engine sẽ nhận từ HTTP layer
func mustArray(t *testing.T, text string) []any {
	t.Helper()
	var arr []any
	require.NoError(t, json.Unmarshal([]byte(text), &arr))
	return arr
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(t.TempDir(), StaticEnvSource{})
}

// Deconstruct rồi Reconstruct phải trả lại đúng array gốc với các pattern
// tự đảo ngược được (NAME/ID/TYPE/PLAIN_STRING/PRIMITIVE/SINGLE_KEY)
func TestEngine_RoundTrip(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `[
		{"name":"alpha","weight":1},
		{"id":7,"k":"x"},
		{"type":"card","limit":500},
		"visa",
		42,
		true,
		{"wrap":{"inner":[1,2]}}
	]`)

	config, err := engine.Deconstruct("default", "payments", "methods", input, "uat")
	require.NoError(t, err)
	assert.Equal(t, ActionInsert, config.Action)
	assert.Equal(t, 7, config.ElementCount())

	result, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, input, result.JSONArray)
	assert.Equal(t, 7, result.ElementCount)
}

// Trùng tên: phần tử thứ hai trở đi nhận hậu tố _1, _2 theo thứ tự gặp
func TestEngine_DuplicateNames(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `[{"name":"a","v":1},{"name":"a","v":2},{"name":"a","v":3}]`)

	config, err := engine.Deconstruct("default", "d", "t", input, "uat")
	require.NoError(t, err)
	require.Equal(t, 3, config.ElementCount())
	assert.Equal(t, "a", config.Elements[0].Name)
	assert.Equal(t, "a_1", config.Elements[1].Name)
	assert.Equal(t, "a_2", config.Elements[2].Name)

	// Meta trên đĩa giữ đúng thứ tự và tên đã chống trùng
	meta, err := engine.Store().ReadMeta(engine.Path().WithDomain("d", "t").MetaPath())
	require.NoError(t, err)
	require.Len(t, meta.Elements, 3)
	assert.Equal(t, "a_1", meta.Elements[1].Name)

	// Reconstruct giữ nguyên giá trị từng phần tử
	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.Equal(t, input, result.JSONArray)
}

// Object nhiều key toàn container: tách mỗi key một element cùng group,
// reconstruct gộp lại thành đúng object ban đầu
func TestEngine_MultiKeyExplodeGrouping(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `[{"x":{"p":1},"y":{"q":2}}]`)

	config, err := engine.Deconstruct("default", "d", "t", input, "uat")
	require.NoError(t, err)
	require.Equal(t, 2, config.ElementCount())
	assert.Equal(t, "x", config.Elements[0].Name)
	assert.Equal(t, "y", config.Elements[1].Name)
	assert.Equal(t, config.Elements[0].Group, config.Elements[1].Group)
	assert.NotEmpty(t, config.Elements[0].Group)

	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.Equal(t, input, result.JSONArray)
}

// Hai object explode LIỀN NHAU phải mang group khác nhau để reconstruct
// không gộp nhầm thành một object
func TestEngine_AdjacentExplodesStaySeparate(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `[{"x":{"p":1},"y":{"q":2}},{"m":{"a":3},"n":{"b":4}}]`)

	config, err := engine.Deconstruct("default", "d", "t", input, "uat")
	require.NoError(t, err)
	require.Equal(t, 4, config.ElementCount())
	assert.NotEqual(t, config.Elements[0].Group, config.Elements[2].Group)

	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.Equal(t, input, result.JSONArray)
}

// Ví dụ phân loại hỗn hợp: PLAIN_STRING, ID_FIELD, FALLBACK item_0
// (object {"p":1,"q":2} trượt MULTI_KEY_EXPLODE vì giá trị là primitive)
func TestEngine_FallbackExample(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `["visa", {"id":123,"k":"v"}, {"p":1,"q":2}]`)

	config, err := engine.Deconstruct("default", "d", "t", input, "uat")
	require.NoError(t, err)
	require.Equal(t, 3, config.ElementCount())

	assert.Equal(t, "visa", config.Elements[0].Name)
	assert.Equal(t, PatternPlainString, config.Elements[0].Pattern)
	assert.Equal(t, "123", config.Elements[1].Name)
	assert.Equal(t, PatternIDField, config.Elements[1].Pattern)
	assert.Equal(t, "item_0", config.Elements[2].Name)
	assert.Equal(t, PatternFallback, config.Elements[2].Pattern)
	assert.Equal(t, mustDecode(t, `{"p":1,"q":2}`), config.Elements[2].Value)

	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.Equal(t, input, result.JSONArray)
}

// Fallback counter chỉ tăng khi FALLBACK được chọn
func TestEngine_FallbackCounterOnlyAdvancesOnFallback(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `[null, "visa", 42, null]`)

	config, err := engine.BuildConfig("default", "d", "t", input, "uat")
	require.NoError(t, err)
	require.Equal(t, 4, config.ElementCount())
	assert.Equal(t, "item_0", config.Elements[0].Name)
	assert.Equal(t, "visa", config.Elements[1].Name)
	assert.Equal(t, "42", config.Elements[2].Name)
	assert.Equal(t, "item_1", config.Elements[3].Name)
}

// BuildConfig thuần: không ghi gì ra đĩa
func TestEngine_BuildConfigDoesNotWrite(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.BuildConfig("default", "d", "t", mustArray(t, `["visa"]`), "uat")
	require.NoError(t, err)
	assert.False(t, engine.Exists("default", "d", "t"))
}

// env "ALL" mở rộng thành {uat, demo, prod}; dev chỉ ghi khi nhắm trực tiếp
func TestEngine_AllEnvExpansion(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["visa"]`), "ALL")
	require.NoError(t, err)

	elementDir := engine.Path().WithDomain("d", "t").WithElement("visa")
	for _, env := range []string{"uat", "demo", "prod"} {
		assert.True(t, engine.Store().FileExists(elementDir.WithEnv(env).EnvFile()), "env %s", env)
	}
	assert.False(t, engine.Store().FileExists(elementDir.WithEnv("dev").EnvFile()))
}

func TestEngine_UnsupportedEnv(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["visa"]`), "staging")
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}

// Sanitize áp cho domainName/domainType và tên element
func TestEngine_SanitizesNames(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `[{"name":"Thẻ tín dụng / Credit"}]`)

	config, err := engine.Deconstruct("default", "pay ments", "me/thods", input, "uat")
	require.NoError(t, err)
	assert.Equal(t, "pay_ments", config.DomainName)
	assert.Equal(t, "me_thods", config.DomainType)
	assert.Equal(t, "Thẻ_tín_dụng_Credit", config.Elements[0].Name)
}

// Dynamic values: mỗi env nhận giá trị resolve riêng, file lưu giá trị đã resolve
func TestEngine_DynamicValuesPerEnv(t *testing.T) {
	source := StaticEnvSource{
		"uat":  {"endpoint": "https://uat.example.com"},
		"demo": {"endpoint": "https://demo.example.com"},
		"prod": {"endpoint": "https://prod.example.com"},
	}
	engine := NewEngine(t.TempDir(), source)

	input := mustArray(t, `[{"name":"svc","url":"$.endpoint"}]`)
	_, err := engine.Deconstruct("default", "services", "http", input, "ALL")
	require.NoError(t, err)

	for env, expected := range map[string]string{
		"uat":  "https://uat.example.com",
		"prod": "https://prod.example.com",
	} {
		result, err := engine.Reconstruct("default", "services", "http", env)
		require.NoError(t, err)
		element := result.JSONArray[0].(map[string]any)
		assert.Equal(t, expected, element["url"], "env %s", env)
	}
}

func TestEngine_DynamicValueMissingKey(t *testing.T) {
	engine := NewEngine(t.TempDir(), StaticEnvSource{"uat": {}})

	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `[{"name":"svc","url":"$.missing"}]`), "uat")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOperationFailure)
	assert.Contains(t, err.Error(), "Missing env variable: missing")
}

func TestEngine_ReconstructNotFound(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Reconstruct("default", "missing", "domain", "uat")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// Element thiếu file env: warning mềm, bỏ qua phần tử, vẫn success
func TestEngine_MissingElementFileWarning(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["visa","master"]`), "uat")
	require.NoError(t, err)

	missing := engine.Path().WithDomain("d", "t").WithElement("master").WithEnv("uat").EnvFile()
	require.NoError(t, os.Remove(missing))

	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Element folder missing: master")
	assert.Equal(t, mustArray(t, `["visa"]`), result.JSONArray)
}

// Thư mục không có trong meta: warning "orphan", không fail
func TestEngine_OrphanFolderWarning(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["visa"]`), "uat")
	require.NoError(t, err)

	orphan := filepath.Join(engine.Path().WithDomain("d", "t").DomainTypeDir(), "stale_element")
	require.NoError(t, os.MkdirAll(orphan, 0o755))

	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Orphan folder found: stale_element")
}

func TestEngine_ReconstructAll(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["visa"]`), "ALL")
	require.NoError(t, err)

	results := engine.ReconstructAll("default", "d", "t")
	require.Len(t, results, len(SupportedEnvs))

	byEnv := make(map[string]*ReconstructResult)
	for _, r := range results {
		byEnv[r.Env] = r
	}
	for _, env := range []string{"uat", "demo", "prod"} {
		require.True(t, byEnv[env].Success, "env %s", env)
		assert.Equal(t, mustArray(t, `["visa"]`), byEnv[env].JSONArray)
	}
	// dev không được ghi khi env=ALL: meta có nhưng file thiếu -> warning
	require.True(t, byEnv["dev"].Success)
	assert.NotEmpty(t, byEnv["dev"].Warnings)
}

// Domain chưa tồn tại: mỗi env báo lỗi riêng, không panic
func TestEngine_ReconstructAllMissingDomain(t *testing.T) {
	engine := newTestEngine(t)
	results := engine.ReconstructAll("default", "missing", "domain")
	require.Len(t, results, len(SupportedEnvs))
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, "Config not found for env: "+r.Env, r.ErrorMessage)
	}
}

func TestEngine_ReconstructElement(t *testing.T) {
	engine := newTestEngine(t)
	input := mustArray(t, `[{"wrap":{"inner":[1,2]}},"visa"]`)
	_, err := engine.Deconstruct("default", "d", "t", input, "uat")
	require.NoError(t, err)

	// SINGLE_KEY_OBJECT được bọc lại dưới tên element
	value, err := engine.ReconstructElement("default", "d", "t", "wrap", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustDecode(t, `{"wrap":{"inner":[1,2]}}`), value)

	value, err = engine.ReconstructElement("default", "d", "t", "visa", "uat")
	require.NoError(t, err)
	assert.Equal(t, "visa", value)

	_, err = engine.ReconstructElement("default", "d", "t", "missing", "uat")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)

	// Element có trong meta nhưng thiếu file env
	_, err = engine.ReconstructElement("default", "d", "t", "visa", "dev")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

func TestEngine_DeleteDomain(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["visa"]`), "uat")
	require.NoError(t, err)
	require.True(t, engine.Exists("default", "d", "t"))

	require.NoError(t, engine.DeleteDomain("default", "d", "t"))
	assert.False(t, engine.Exists("default", "d", "t"))

	err = engine.DeleteDomain("default", "d", "t")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// Xóa theo env: chỉ file env đó mất, meta và env khác còn nguyên
func TestEngine_DeleteEnvFiles(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["visa","master"]`), "ALL")
	require.NoError(t, err)

	require.NoError(t, engine.DeleteEnvFiles("default", "d", "t", "uat"))

	assert.True(t, engine.Exists("default", "d", "t"))
	base := engine.Path().WithDomain("d", "t")
	for _, name := range []string{"visa", "master"} {
		assert.False(t, engine.Store().FileExists(base.WithElement(name).WithEnv("uat").EnvFile()))
		assert.True(t, engine.Store().FileExists(base.WithElement(name).WithEnv("prod").EnvFile()))
	}

	// Env đã xóa: reconstruct success với warnings cho từng element
	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Warnings, 2)
	assert.Empty(t, result.JSONArray)
}

// ReplaceConfig xóa sạch domain cũ trước khi ghi: element cũ không còn sót lại
func TestEngine_ReplaceConfig(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["old_element"]`), "uat")
	require.NoError(t, err)

	replacement, err := engine.BuildConfig("default", "d", "t", mustArray(t, `["new_element"]`), "uat")
	require.NoError(t, err)
	require.NoError(t, engine.ReplaceConfig(replacement))

	result, err := engine.Reconstruct("default", "d", "t", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `["new_element"]`), result.JSONArray)
	assert.Empty(t, result.Warnings)

	base := engine.Path().WithDomain("d", "t")
	assert.False(t, engine.Store().DirectoryExists(base.WithElement("old_element").ElementDir()))
}

// Meta ghi sau cùng: lỗi dynamic value giữa chừng không để lại meta
func TestEngine_FailedWriteLeavesNoMeta(t *testing.T) {
	engine := NewEngine(t.TempDir(), StaticEnvSource{"uat": {}})

	_, err := engine.Deconstruct("default", "d", "t", mustArray(t, `["ok", {"name":"svc","url":"$.missing"}]`), "uat")
	require.Error(t, err)
	assert.False(t, engine.Exists("default", "d", "t"))
}
