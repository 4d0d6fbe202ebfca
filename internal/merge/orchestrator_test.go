package merge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
)

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

func buildConfig(t *testing.T, engine *configtree.Engine, lob, domainName, domainType, jsonText, env string) *configtree.DomainConfig {
	t.Helper()
	cfg, err := engine.BuildConfig(lob, domainName, domainType, mustArray(t, jsonText), env)
	require.NoError(t, err)
	return cfg
}

func TestMergeState(t *testing.T) {
	assert.True(t, StatePending.CanApprove())
	assert.False(t, StatePending.CanApply())
	assert.True(t, StateApproved.CanApply())
	assert.False(t, StateApproved.CanApprove())
	assert.False(t, StateMerged.CanApply())
	assert.False(t, StateFailed.CanApply())
	assert.True(t, StateMerged.IsMerged())
	assert.False(t, MergeState("UNKNOWN").IsValid())
}

// Batch hợp lệ: baseline default nằm trong chính batch, mục LOB khác dựa vào đó
func TestOrchestrator_ApplyBatch(t *testing.T) {
	engine := newTestEngine(t)
	orch := NewOrchestrator(engine)

	batch := []*configtree.DomainConfig{
		// cố tình đưa mục vn lên trước: orchestrator phải tự sắp default trước
		buildConfig(t, engine, "vn", "payments", "methods", `["mastercard"]`, "uat"),
		buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat"),
	}

	report, err := orch.Apply(batch)
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.AppliedCount)
	assert.Equal(t, []string{"default/payments/methods", "vn/payments/methods"}, report.Successes)

	defaultResult, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, defaultResult.JSONArray)

	vnResult, err := engine.Reconstruct("vn", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"mastercard"}, vnResult.JSONArray)
}

// DELETE luôn xuống cuối, default luôn lên đầu, thứ tự còn lại giữ ổn định
func TestOrchestrator_OrderBatch(t *testing.T) {
	vn1 := &configtree.DomainConfig{Lob: "vn", DomainName: "a", DomainType: "x", Action: configtree.ActionInsert, Env: "uat"}
	del := &configtree.DomainConfig{Lob: "default", DomainName: "b", DomainType: "y", Action: configtree.ActionDelete}
	def := &configtree.DomainConfig{Lob: "default", DomainName: "c", DomainType: "z", Action: configtree.ActionInsert, Env: "uat"}
	vn2 := &configtree.DomainConfig{Lob: "vn", DomainName: "d", DomainType: "w", Action: configtree.ActionUpdate, Env: "uat"}

	ordered := orderBatch([]*configtree.DomainConfig{vn1, del, nil, def, vn2})
	require.Len(t, ordered, 4)
	assert.Same(t, def, ordered[0])
	assert.Same(t, vn1, ordered[1])
	assert.Same(t, vn2, ordered[2])
	assert.Same(t, del, ordered[3])
}

// Validate chặn cả batch trước khi ghi: một mục lỗi là không mục nào được áp
func TestOrchestrator_ValidationBlocksAllWrites(t *testing.T) {
	engine := newTestEngine(t)
	orch := NewOrchestrator(engine)

	batch := []*configtree.DomainConfig{
		buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat"),
		{
			Lob: "vn", DomainName: "payments", DomainType: "methods",
			Action: configtree.ActionUpdate, Env: "", // env trống
			Elements: []configtree.ConfigElement{
				{Name: "visa", Pattern: configtree.PatternPlainString, Value: "visa"},
			},
		},
	}

	report, err := orch.Apply(batch)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, common.ErrValidationFailure)
	assert.False(t, engine.Exists("default", "payments", "methods"), "validate lỗi thì không được ghi gì")
}

// Mục ngoài LOB default không có baseline default (trên đĩa lẫn trong batch)
func TestOrchestrator_MissingBaseline(t *testing.T) {
	engine := newTestEngine(t)
	orch := NewOrchestrator(engine)

	batch := []*configtree.DomainConfig{
		buildConfig(t, engine, "vn", "payments", "methods", `["visa"]`, "uat"),
	}
	_, err := orch.Apply(batch)
	require.ErrorIs(t, err, common.ErrValidationFailure)
	assert.Contains(t, err.Error(), "baseline")
}

// Baseline đã có trên đĩa thì mục LOB khác đứng một mình vẫn hợp lệ
func TestOrchestrator_BaselineOnDisk(t *testing.T) {
	engine := newTestEngine(t)
	orch := NewOrchestrator(engine)
	_, err := engine.Deconstruct("default", "payments", "methods", mustArray(t, `["visa"]`), configtree.EnvAll)
	require.NoError(t, err)

	report, err := orch.Apply([]*configtree.DomainConfig{
		buildConfig(t, engine, "vn", "payments", "methods", `["mastercard"]`, "uat"),
	})
	require.NoError(t, err)
	assert.True(t, report.Success)
}

// Qua được validate thì áp best-effort: mục lỗi không chặn mục sau
func TestOrchestrator_BestEffortApply(t *testing.T) {
	engine := newTestEngine(t)
	orch := NewOrchestrator(engine)

	batch := []*configtree.DomainConfig{
		{Lob: "default", DomainName: "ghost", DomainType: "cfg", Action: configtree.ActionDelete},
		buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat"),
	}

	report, err := orch.Apply(batch)
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, 1, report.AppliedCount)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "default/ghost/cfg: ")
	assert.True(t, engine.Exists("default", "payments", "methods"))
}

// DELETE với env cụ thể chỉ gỡ file env đó, giữ meta và các env khác
func TestOrchestrator_DeleteSingleEnv(t *testing.T) {
	engine := newTestEngine(t)
	orch := NewOrchestrator(engine)
	_, err := engine.Deconstruct("default", "payments", "methods", mustArray(t, `["visa"]`), configtree.EnvAll)
	require.NoError(t, err)

	report, err := orch.Apply([]*configtree.DomainConfig{
		{Lob: "default", DomainName: "payments", DomainType: "methods", Action: configtree.ActionDelete, Env: "uat"},
	})
	require.NoError(t, err)
	assert.True(t, report.Success)

	uat, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Empty(t, uat.JSONArray)
	assert.True(t, uat.HasWarnings())

	prod, err := engine.Reconstruct("default", "payments", "methods", "prod")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, prod.JSONArray)
}

// Action lạ bị chặn từ validate
func TestOrchestrator_UnknownAction(t *testing.T) {
	engine := newTestEngine(t)
	orch := NewOrchestrator(engine)

	_, err := orch.Apply([]*configtree.DomainConfig{
		{Lob: "default", DomainName: "a", DomainType: "b", Action: configtree.Action("MERGE"), Env: "uat"},
	})
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}
