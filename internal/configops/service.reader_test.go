package configops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
)

// ListLobs bỏ qua thư mục bảng biến môi trường nằm chung basePath
func TestReaderService_ListLobs(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewReaderService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)
	seedDomain(t, engine, "vn", "payments", "methods", `["visa"]`)
	require.NoError(t, engine.Store().EnsureDirectory(filepath.Join(engine.BasePath(), "dynamicValues")))

	lobs, err := svc.ListLobs()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "vn"}, lobs)
}

// Chỉ thư mục type có _meta.json mới được tính là domain
func TestReaderService_GetDomainsAndTypes(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewReaderService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)
	seedDomain(t, engine, "default", "payments", "limits", `[100]`)
	seedDomain(t, engine, "default", "routing", "rules", `[{"name":"r1"}]`)

	// thư mục type không có meta phải bị bỏ qua
	orphan := engine.Path().WithLob("default").WithDomain("payments", "draft").DomainTypeDir()
	require.NoError(t, engine.Store().EnsureDirectory(orphan))

	domains, err := svc.GetDomainsAndTypes("default")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"payments": {"limits", "methods"},
		"routing":  {"rules"},
	}, domains)

	empty, err := svc.GetDomainsAndTypes("nosuch")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// Summaries đếm element theo meta; domain có meta hỏng bị loại khỏi danh sách
func TestReaderService_Summaries(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewReaderService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa","mastercard"]`)
	seedDomain(t, engine, "default", "routing", "rules", `[{"name":"r1"}]`)

	// meta hỏng
	broken := engine.Path().WithLob("default").WithDomain("routing", "broken")
	require.NoError(t, engine.Store().EnsureDirectory(broken.DomainTypeDir()))
	require.NoError(t, os.WriteFile(broken.MetaPath(), []byte("{not json"), 0o644))

	summaries, err := svc.Summaries("default")
	require.NoError(t, err)
	assert.Equal(t, []ConfigSummary{
		{DomainName: "payments", DomainType: "methods", ElementCount: 2},
		{DomainName: "routing", DomainType: "rules", ElementCount: 1},
	}, summaries)
}

// Payload đẩy hạ nguồn: mỗi domain một mảng JSON đã tái tạo cho env yêu cầu
func TestReaderService_ConfigsByLobAndEnv(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewReaderService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa"]`)
	seedDomain(t, engine, "default", "routing", "rules", `[{"name":"r1","w":1}]`)

	values, err := svc.ConfigsByLobAndEnv("default", "uat")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "payments", values[0].DomainName)
	assert.Equal(t, []any{"visa"}, values[0].DomainValues)
	assert.Equal(t, "routing", values[1].DomainName)
	assert.Equal(t, mustArray(t, `[{"name":"r1","w":1}]`), values[1].DomainValues)

	_, err = svc.ConfigsByLobAndEnv("default", "staging")
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}

// Chi tiết domain trả về giá trị đã decode cho mọi env đang có file
func TestReaderService_GetDomainDetail(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewReaderService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `[{"wrap":{"inner":1}}]`)

	detail, err := svc.GetDomainDetail("default", "payments", "methods")
	require.NoError(t, err)
	assert.Equal(t, "payments", detail.DomainName)
	require.Len(t, detail.Elements, 1)

	el := detail.Elements[0]
	assert.Equal(t, "wrap", el.Name)
	assert.Equal(t, configtree.PatternSingleKeyObject, el.Pattern)
	// seed với ALL ghi uat/demo/prod, không ghi dev
	assert.Len(t, el.Values, 3)
	assert.Equal(t, mustArray(t, `[{"wrap":{"inner":1}}]`)[0], el.Values["uat"])
	assert.NotContains(t, el.Values, "dev")

	_, err = svc.GetDomainDetail("default", "nosuch", "domain")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

// Tra giá trị element: trúng env yêu cầu, rơi về env khác cùng LOB,
// rồi rơi về LOB default
func TestReaderService_GetElementValue(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewReaderService(engine)
	seedDomain(t, engine, "default", "payments", "methods", `["visa",{"wrap":{"inner":1}}]`)

	// trúng trực tiếp
	value, err := svc.GetElementValue("default", "payments", "methods", "visa", "uat")
	require.NoError(t, err)
	assert.Equal(t, "visa", value)

	// single-key được bọc lại khi decode
	value, err = svc.GetElementValue("default", "payments", "methods", "wrap", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[{"wrap":{"inner":1}}]`)[0], value)

	// env yêu cầu thiếu file: rơi về env khác đang có trong cùng LOB
	require.NoError(t, engine.DeleteEnvFiles("default", "payments", "methods", "uat"))
	value, err = svc.GetElementValue("default", "payments", "methods", "visa", "uat")
	require.NoError(t, err)
	assert.Equal(t, "visa", value)

	// LOB không có domain: rơi về LOB default
	value, err = svc.GetElementValue("vn", "payments", "methods", "visa", "demo")
	require.NoError(t, err)
	assert.Equal(t, "visa", value)

	// không đâu có
	_, err = svc.GetElementValue("vn", "payments", "methods", "missing", "demo")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)

	_, err = svc.GetElementValue("default", "payments", "methods", "visa", "staging")
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}
