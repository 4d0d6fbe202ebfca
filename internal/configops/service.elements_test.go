package configops

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
)

// mustArray parse một literal JSON array giống payload engine nhận từ HTTP layer
func mustArray(t *testing.T, text string) []any {
	t.Helper()
	var arr []any
	require.NoError(t, json.Unmarshal([]byte(text), &arr))
	return arr
}

func newTestEngine(t *testing.T) *configtree.Engine {
	t.Helper()
	return configtree.NewEngine(t.TempDir(), configtree.StaticEnvSource{})
}

// seedDomain phân rã một mảng JSON làm dữ liệu nền cho test
func seedDomain(t *testing.T, engine *configtree.Engine, lob, domainName, domainType, jsonText string) {
	t.Helper()
	_, err := engine.Deconstruct(lob, domainName, domainType, mustArray(t, jsonText), configtree.EnvAll)
	require.NoError(t, err)
}

func readMeta(t *testing.T, engine *configtree.Engine, lob, domainName, domainType string) *configtree.MetaFile {
	t.Helper()
	meta, err := engine.Store().ReadMeta(engine.Path().WithLob(lob).WithDomain(domainName, domainType).MetaPath())
	require.NoError(t, err)
	return meta
}

// Thêm element vào domain chưa tồn tại phải tự khởi tạo meta
func TestElementService_InsertIntoNewDomain(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)

	created, err := svc.InsertElement("default", "payments", "methods",
		map[string]any{"name": "visa", "fee": float64(1)}, configtree.EnvAll)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "visa", created[0].Name)
	assert.Equal(t, configtree.PatternNameField, created[0].Pattern)

	meta := readMeta(t, engine, "default", "payments", "methods")
	require.Len(t, meta.Elements, 1)

	result, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "visa", "fee": float64(1)}}, result.JSONArray)
}

// Tên trùng với element đã có trong meta phải nhận hậu tố _n
func TestElementService_InsertDuplicateName(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `[{"name":"visa","fee":1}]`)

	created, err := svc.InsertElement("default", "payments", "methods",
		map[string]any{"name": "visa", "fee": float64(2)}, configtree.EnvAll)
	require.NoError(t, err)
	assert.Equal(t, "visa_1", created[0].Name)

	meta := readMeta(t, engine, "default", "payments", "methods")
	assert.True(t, meta.HasElement("visa"))
	assert.True(t, meta.HasElement("visa_1"))
}

// Tên tường minh được ưu tiên thay cho tên suy ra từ pattern
func TestElementService_InsertWithName(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)

	created, err := svc.InsertElementWithName("default", "payments", "methods",
		"custom name", map[string]any{"name": "visa"}, configtree.EnvAll)
	require.NoError(t, err)
	assert.Equal(t, "custom_name", created[0].Name) // tên tường minh cũng qua sanitize

	_, err = svc.InsertElementWithName("default", "payments", "methods",
		"", map[string]any{"name": "x"}, configtree.EnvAll)
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}

// Giá trị nhiều key toàn container tách thành một nhóm element chung group;
// gán tên tường minh cho giá trị như vậy là không hợp lệ
func TestElementService_InsertExplodeValue(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)

	created, err := svc.InsertElement("default", "routing", "rules",
		mustArray(t, `[{"x":{"a":1},"y":{"b":2}}]`)[0], configtree.EnvAll)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "x", created[0].Name)
	assert.Equal(t, "y", created[1].Name)
	assert.NotEmpty(t, created[0].Group)
	assert.Equal(t, created[0].Group, created[1].Group)

	_, err = svc.InsertElementWithName("default", "routing", "rules",
		"named", mustArray(t, `[{"p":{"a":1},"q":{"b":2}}]`)[0], configtree.EnvAll)
	assert.ErrorIs(t, err, common.ErrOperationFailure)
}

// Bộ đếm fallback tiếp tục từ số element item_ đang có trong meta
func TestElementService_FallbackCounterFromMeta(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "misc", "values", `[null]`) // item_0

	created, err := svc.InsertElement("default", "misc", "values", nil, configtree.EnvAll)
	require.NoError(t, err)
	assert.Equal(t, "item_1", created[0].Name)
	assert.Equal(t, configtree.PatternFallback, created[0].Pattern)
}

// Group mới không được trùng với group đang có trong meta
func TestElementService_InsertExplodeAfterSeededGroup(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "routing", "rules", `[{"x":{"a":1},"y":{"b":2}}]`)

	seeded := readMeta(t, engine, "default", "routing", "rules")
	existingGroup := seeded.Elements[0].Group

	created, err := svc.InsertElement("default", "routing", "rules",
		mustArray(t, `[{"p":{"c":3},"q":{"d":4}}]`)[0], configtree.EnvAll)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEqual(t, existingGroup, created[0].Group)

	// hai nhóm phải tái tạo thành hai object riêng
	result, err := engine.Reconstruct("default", "routing", "rules", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[{"x":{"a":1},"y":{"b":2}},{"p":{"c":3},"q":{"d":4}}]`), result.JSONArray)
}

// Update ghi đè giá trị và cập nhật pattern trong meta khi phân loại thay đổi
func TestElementService_UpdateElement(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	err := svc.UpdateElement("default", "payments", "methods", "visa",
		map[string]any{"name": "visa", "fee": float64(9)}, configtree.EnvAll)
	require.NoError(t, err)

	meta := readMeta(t, engine, "default", "payments", "methods")
	el := meta.FindElement("visa")
	require.NotNil(t, el)
	assert.Equal(t, configtree.PatternNameField, el.Pattern)

	result, err := engine.Reconstruct("default", "payments", "methods", "prod")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "visa", "fee": float64(9)}}, result.JSONArray)
}

// Update một env không được chạm file của env khác
func TestElementService_UpdateSingleEnvOnly(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	require.NoError(t, svc.UpdateElement("default", "payments", "methods", "visa", "mastercard", "uat"))

	uat, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"mastercard"}, uat.JSONArray)

	prod, err := engine.Reconstruct("default", "payments", "methods", "prod")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, prod.JSONArray)
}

// Các chuyển đổi pattern không hỗ trợ phải bị chặn trước khi ghi file
func TestElementService_UpdateRejectedTransitions(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `[{"wrap":{"inner":1}}]`)

	// single-key có key khác tên element
	err := svc.UpdateElement("default", "payments", "methods", "wrap",
		map[string]any{"other": float64(1)}, configtree.EnvAll)
	assert.ErrorIs(t, err, common.ErrOperationFailure)

	// giá trị tách thành nhiều element
	err = svc.UpdateElement("default", "payments", "methods", "wrap",
		mustArray(t, `[{"x":{"a":1},"y":{"b":2}}]`)[0], configtree.EnvAll)
	assert.ErrorIs(t, err, common.ErrOperationFailure)

	// element không tồn tại
	err = svc.UpdateElement("default", "payments", "methods", "missing", "v", configtree.EnvAll)
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// Element thuộc nhóm explode nhận lại giá trị dạng đã decode {tên: giá_trị}
// phải giữ nguyên pattern nhóm để tái tạo còn gộp được
func TestElementService_UpdateGroupedElementKeepsPattern(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "routing", "rules", `[{"x":{"a":1},"y":{"b":2}}]`)

	err := svc.UpdateElement("default", "routing", "rules", "x",
		mustArray(t, `[{"x":{"a":99}}]`)[0], "uat")
	require.NoError(t, err)

	meta := readMeta(t, engine, "default", "routing", "rules")
	el := meta.FindElement("x")
	require.NotNil(t, el)
	assert.Equal(t, configtree.PatternMultiKeyExplode, el.Pattern)

	result, err := engine.Reconstruct("default", "routing", "rules", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[{"x":{"a":99},"y":{"b":2}}]`), result.JSONArray)
}

// Xóa element gỡ khỏi meta lẫn thư mục; xóa lần hai là NotFound
func TestElementService_DeleteElement(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa","mastercard"]`)

	require.NoError(t, svc.DeleteElement("default", "payments", "methods", "visa"))

	meta := readMeta(t, engine, "default", "payments", "methods")
	assert.False(t, meta.HasElement("visa"))
	assert.True(t, meta.HasElement("mastercard"))
	assert.False(t, engine.Store().DirectoryExists(
		engine.Path().WithLob("default").WithDomain("payments", "methods").WithElement("visa").ElementDir()))

	err := svc.DeleteElement("default", "payments", "methods", "visa")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

func TestElementService_UnsupportedEnv(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewElementService(engine)

	_, err := svc.InsertElement("default", "payments", "methods", "visa", "staging")
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}
