package configops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
)

func TestOperationService_InsertConfig(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewOperationService(engine)

	cfg, err := engine.BuildConfig("default", "payments", "methods",
		mustArray(t, `["visa","mastercard"]`), configtree.EnvAll)
	require.NoError(t, err)
	require.NoError(t, svc.InsertConfig(cfg))

	assert.True(t, svc.Exists("default", "payments", "methods"))
	result, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa", "mastercard"}, result.JSONArray)
}

// INSERT trên domain đã tồn tại là no-op: không lỗi, không ghi đè
func TestOperationService_InsertExistingIsNoOp(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewOperationService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	cfg, err := engine.BuildConfig("default", "payments", "methods",
		mustArray(t, `["mastercard"]`), configtree.EnvAll)
	require.NoError(t, err)
	require.NoError(t, svc.InsertConfig(cfg))

	result, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, result.JSONArray)
}

// UPDATE thay thế toàn bộ domain: element cũ không còn trên đĩa
func TestOperationService_UpdateConfigReplaces(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewOperationService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa","mastercard"]`)

	cfg, err := engine.BuildConfig("default", "payments", "methods",
		mustArray(t, `["amex"]`), configtree.EnvAll)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateConfig(cfg))

	result, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"amex"}, result.JSONArray)

	oldDir := engine.Path().WithLob("default").WithDomain("payments", "methods").WithElement("visa").ElementDir()
	assert.False(t, engine.Store().DirectoryExists(oldDir))
}

func TestOperationService_DeleteConfigWholeDomain(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewOperationService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	require.NoError(t, svc.DeleteConfig("default", "payments", "methods", ""))
	assert.False(t, svc.Exists("default", "payments", "methods"))

	err := svc.DeleteConfig("default", "payments", "methods", "")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// DELETE với env cụ thể chỉ xóa file env đó, meta và các env khác giữ nguyên
func TestOperationService_DeleteConfigSingleEnv(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewOperationService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	require.NoError(t, svc.DeleteConfig("default", "payments", "methods", "uat"))

	path := engine.Path().WithLob("default").WithDomain("payments", "methods").WithElement("visa")
	assert.False(t, engine.Store().FileExists(path.WithEnv("uat").EnvFile()))
	assert.True(t, engine.Store().FileExists(path.WithEnv("demo").EnvFile()))
	assert.True(t, svc.Exists("default", "payments", "methods"))
}

func TestOperationService_ApplyDispatch(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewOperationService(engine)

	cfg, err := engine.BuildConfig("default", "payments", "methods",
		mustArray(t, `["visa"]`), configtree.EnvAll)
	require.NoError(t, err)

	cfg.Action = configtree.ActionInsert
	require.NoError(t, svc.Apply(cfg))
	assert.True(t, svc.Exists("default", "payments", "methods"))

	cfg.Action = configtree.Action("RENAME")
	err = svc.Apply(cfg)
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}
