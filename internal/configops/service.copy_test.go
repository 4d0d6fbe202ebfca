package configops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
)

// Copy element sang LOB chưa có domain phải tự khởi tạo meta đích
// và copy đủ file của các env cụ thể
func TestCopyService_CopyElement(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `[{"name":"visa","fee":1}]`)

	newName, err := svc.CopyElement("default", "vn", "payments", "methods", "visa")
	require.NoError(t, err)
	assert.Equal(t, "visa", newName)

	store := engine.Store()
	dst := engine.Path().WithLob("vn").WithDomain("payments", "methods")
	for _, env := range configtree.ConcreteEnvs {
		assert.True(t, store.FileExists(dst.WithElement("visa").WithEnv(env).EnvFile()), env)
	}

	result, err := engine.Reconstruct("vn", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[{"name":"visa","fee":1}]`), result.JSONArray)
}

// Element trùng tên ở đích nhận hậu tố _n, pattern và group nguồn được giữ
func TestCopyService_CopyElementDuplicateName(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)
	seedDomain(t, engine, "vn", "payments", "methods", `["visa"]`)

	newName, err := svc.CopyElement("default", "vn", "payments", "methods", "visa")
	require.NoError(t, err)
	assert.Equal(t, "visa_1", newName)

	meta := readMeta(t, engine, "vn", "payments", "methods")
	el := meta.FindElement("visa_1")
	require.NotNil(t, el)
	assert.Equal(t, configtree.PatternPlainString, el.Pattern)
}

func TestCopyService_CopyElementNotFound(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	_, err := svc.CopyElement("default", "vn", "payments", "methods", "missing")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)

	_, err = svc.CopyElement("default", "vn", "nosuch", "domain", "visa")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// Copy danh sách dừng ở lỗi đầu tiên, giữ lại các element đã copy trước đó
func TestCopyService_CopyElementsAbortsOnError(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa","mastercard"]`)

	copied, err := svc.CopyElements("default", "vn", "payments", "methods",
		[]string{"visa", "missing", "mastercard"})
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
	assert.Equal(t, []string{"visa"}, copied)
}

// Copy nguyên domain ghi đè đích: element cũ ở đích không còn sau khi copy
func TestCopyService_CopyDomainTypeOverwrites(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)
	seedDomain(t, engine, "vn", "payments", "methods", `["mastercard","amex"]`)

	require.NoError(t, svc.CopyDomainType("default", "vn", "payments", "methods"))

	result, err := engine.Reconstruct("vn", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, result.JSONArray)
	assert.False(t, engine.Store().DirectoryExists(
		engine.Path().WithLob("vn").WithDomain("payments", "methods").WithElement("mastercard").ElementDir()))
}

func TestCopyService_CopyDomainTypeNotFound(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)

	err := svc.CopyDomainType("default", "vn", "nosuch", "domain")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// Copy cả LOB mang theo mọi domain name / domain type
func TestCopyService_CopyLob(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)
	seedDomain(t, engine, "default", "payments", "limits", `[100]`)
	seedDomain(t, engine, "default", "routing", "rules", `[{"name":"r1"}]`)

	require.NoError(t, svc.CopyLob("default", "vn"))

	for _, tc := range []struct {
		domainName, domainType string
		want                   string
	}{
		{"payments", "methods", `["visa"]`},
		{"payments", "limits", `[100]`},
		{"routing", "rules", `[{"name":"r1"}]`},
	} {
		result, err := engine.Reconstruct("vn", tc.domainName, tc.domainType, "demo")
		require.NoError(t, err)
		assert.Equal(t, mustArray(t, tc.want), result.JSONArray)
	}

	err := svc.CopyLob("nosuch", "vn")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// Copy theo env chỉ mang meta + file của env đó; env khác ở đích không có file
func TestCopyService_CopyLobEnv(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	require.NoError(t, svc.CopyLobEnv("default", "vn", "uat"))

	store := engine.Store()
	dst := engine.Path().WithLob("vn").WithDomain("payments", "methods")
	assert.True(t, store.FileExists(dst.MetaPath()))
	assert.True(t, store.FileExists(dst.WithElement("visa").WithEnv("uat").EnvFile()))
	assert.False(t, store.FileExists(dst.WithElement("visa").WithEnv("prod").EnvFile()))

	uat, err := engine.Reconstruct("vn", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, uat.JSONArray)

	// env chưa copy tái tạo ra mảng rỗng kèm cảnh báo thiếu file
	prod, err := engine.Reconstruct("vn", "payments", "methods", "prod")
	require.NoError(t, err)
	assert.Empty(t, prod.JSONArray)
	assert.True(t, prod.HasWarnings())
}

// env ALL tương đương copy nguyên LOB
func TestCopyService_CopyLobEnvAll(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewCopyService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)

	require.NoError(t, svc.CopyLobEnv("default", "vn", configtree.EnvAll))

	for _, env := range configtree.ConcreteEnvs {
		result, err := engine.Reconstruct("vn", "payments", "methods", env)
		require.NoError(t, err)
		assert.Equal(t, []any{"visa"}, result.JSONArray, env)
	}
}
