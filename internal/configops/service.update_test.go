package configops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/configtree"
)

func buildConfig(t *testing.T, engine *configtree.Engine, lob, domainName, domainType, jsonText, env string) *configtree.DomainConfig {
	t.Helper()
	cfg, err := engine.BuildConfig(lob, domainName, domainType, mustArray(t, jsonText), env)
	require.NoError(t, err)
	return cfg
}

// Cấu hình mới không có bản cũ đối ứng được insert nguyên domain
func TestUpdateService_InsertNewConfig(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewUpdateService(engine)

	newCfg := buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat")
	report := svc.Execute(nil, []*configtree.DomainConfig{newCfg})

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, []string{"default/payments/methods"}, report.Successes)
	assert.False(t, report.HasErrors())

	result, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, result.JSONArray)
}

// Diff element theo tên: chung-không-đổi bỏ qua, chung-đổi ghi đè,
// chỉ-mới thêm, chỉ-cũ xóa
func TestUpdateService_ElementDiff(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewUpdateService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa","mastercard"]`)

	oldCfg := buildConfig(t, engine, "default", "payments", "methods", `["visa","mastercard"]`, "uat")
	newCfg := buildConfig(t, engine, "default", "payments", "methods", `[{"name":"visa","fee":9},"amex"]`, "uat")

	report := svc.Execute([]*configtree.DomainConfig{oldCfg}, []*configtree.DomainConfig{newCfg})

	assert.Equal(t, 1, report.Processed)
	assert.False(t, report.HasErrors())
	assert.ElementsMatch(t, []string{
		"default/payments/methods/visa",       // giá trị đổi -> update
		"default/payments/methods/amex",       // chỉ có ở bản mới -> insert
		"default/payments/methods/mastercard", // chỉ có ở bản cũ -> delete
	}, report.Successes)

	result, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[{"name":"visa","fee":9},"amex"]`), result.JSONArray)

	meta := readMeta(t, engine, "default", "payments", "methods")
	assert.False(t, meta.HasElement("mastercard"))
}

// Element không đổi giữa hai bản không được ghi lại
func TestUpdateService_UnchangedElementSkipped(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewUpdateService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	oldCfg := buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat")
	newCfg := buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat")

	report := svc.Execute([]*configtree.DomainConfig{oldCfg}, []*configtree.DomainConfig{newCfg})
	assert.Equal(t, 1, report.Processed)
	assert.Empty(t, report.Successes)
	assert.False(t, report.HasErrors())
}

// Cấu hình chỉ có ở danh sách cũ là ngữ cảnh nền, không bị xóa
func TestUpdateService_OldOnlyConfigIgnored(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewUpdateService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	oldCfg := buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat")
	report := svc.Execute([]*configtree.DomainConfig{oldCfg}, nil)

	assert.Equal(t, 0, report.Processed)
	assert.True(t, engine.Exists("default", "payments", "methods"))
}

// Lỗi của một mục không chặn các mục còn lại
func TestUpdateService_ErrorsDoNotAbort(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewUpdateService(engine)

	bad := &configtree.DomainConfig{
		Lob: "default", DomainName: "broken", DomainType: "cfg",
		Action: configtree.ActionInsert, Env: "",
		Elements: []configtree.ConfigElement{
			{Name: "x", Pattern: configtree.PatternPlainString, Value: "x"},
		},
	}
	good := buildConfig(t, engine, "default", "payments", "methods", `["visa"]`, "uat")

	report := svc.Execute(nil, []*configtree.DomainConfig{bad, good})

	assert.Equal(t, 2, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "default/broken/cfg: ")
	assert.Equal(t, []string{"default/payments/methods"}, report.Successes)
	assert.True(t, engine.Exists("default", "payments", "methods"))
	assert.False(t, engine.Exists("default", "broken", "cfg"))
}
