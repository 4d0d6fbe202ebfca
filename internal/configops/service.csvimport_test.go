package configops

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/common"
)

// Tên file tách LOB/env tại dấu gạch dưới cuối cùng
func TestParseFileName(t *testing.T) {
	tests := []struct {
		fileName string
		wantLob  string
		wantEnv  string
		wantErr  bool
	}{
		{"vn_uat.csv", "vn", "uat", false},
		{"my_lob_prod.csv", "my_lob", "prod", false},
		{"default_ALL.csv", "default", "ALL", false},
		{"upper_UAT.CSV", "upper", "UAT", false},
		{"nounderscore.csv", "", "", true},
		{"vn_staging.csv", "", "", true}, // env không hỗ trợ
		{"_uat.csv", "", "", true},       // lob rỗng
		{"vn_.csv", "", "", true},        // env rỗng
	}
	for _, tt := range tests {
		lob, env, err := ParseFileName(tt.fileName)
		if tt.wantErr {
			assert.ErrorIs(t, err, common.ErrValidationFailure, tt.fileName)
			continue
		}
		require.NoError(t, err, tt.fileName)
		assert.Equal(t, tt.wantLob, lob, tt.fileName)
		assert.Equal(t, tt.wantEnv, env, tt.fileName)
	}
}

// Parser CSV khoan dung: ngoặc kép bao cột chứa dấu phẩy, "" là nháy literal
func TestParseCSVLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`a,b,c`, []string{"a", "b", "c"}},
		{`a,"b,c",d`, []string{"a", "b,c", "d"}},
		{`a,"say ""hi""",c`, []string{"a", `say "hi"`, "c"}},
		{`payments,methods,"[{""name"":""visa""}]"`, []string{"payments", "methods", `[{"name":"visa"}]`}},
		{`a,,c`, []string{"a", "", "c"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCSVLine(tt.line), tt.line)
	}
}

// Domain chưa có trên đĩa được phân rã mới từ dòng CSV
func TestImportService_NewDomains(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewImportService(engine)

	content := strings.Join([]string{
		"domainName,domainType,json",
		`payments,methods,"[{""name"":""visa"",""fee"":1}]"`,
		`routing,rules,[1,2,3]`, // JSON không bọc ngoặc kép: các cột được ghép lại
	}, "\n")

	report, err := svc.ImportCSV("default_ALL.csv", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsProcessed)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Empty(t, report.Errors)

	methods, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[{"name":"visa","fee":1}]`), methods.JSONArray)

	rules, err := engine.Reconstruct("default", "routing", "rules", "prod")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[1,2,3]`), rules.JSONArray)
}

// Domain đã có chỉ được bổ sung file env thiếu, không ghi đè dữ liệu hiện hữu
func TestImportService_AddsMissingEnvFilesOnly(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewImportService(engine)

	// chỉ có file uat trên đĩa
	_, err := engine.Deconstruct("default", "payments", "methods", mustArray(t, `["visa"]`), "uat")
	require.NoError(t, err)

	content := "header\n" + `payments,methods,"[""mastercard""]"`
	report, err := svc.ImportCSV("default_prod.csv", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Created)

	// prod nhận giá trị import theo vị trí, uat giữ nguyên giá trị cũ
	prod, err := engine.Reconstruct("default", "payments", "methods", "prod")
	require.NoError(t, err)
	assert.Equal(t, []any{"mastercard"}, prod.JSONArray)

	uat, err := engine.Reconstruct("default", "payments", "methods", "uat")
	require.NoError(t, err)
	assert.Equal(t, []any{"visa"}, uat.JSONArray)

	// import lần nữa với giá trị khác: file prod đã có nên không bị ghi đè
	content = "header\n" + `payments,methods,"[""amex""]"`
	_, err = svc.ImportCSV("default_prod.csv", []byte(content))
	require.NoError(t, err)

	prod, err = engine.Reconstruct("default", "payments", "methods", "prod")
	require.NoError(t, err)
	assert.Equal(t, []any{"mastercard"}, prod.JSONArray)
}

// Nhóm explode tiêu thụ một dãy element liên tiếp trong meta
func TestImportService_AddEnvFilesGroupedElements(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewImportService(engine)
	_, err := engine.Deconstruct("default", "routing", "rules",
		mustArray(t, `[{"x":{"a":1},"y":{"b":2}}]`), "uat")
	require.NoError(t, err)

	err = svc.AddEnvFiles("default", "routing", "rules",
		mustArray(t, `[{"x":{"a":5},"y":{"b":6}}]`), "prod")
	require.NoError(t, err)

	prod, err := engine.Reconstruct("default", "routing", "rules", "prod")
	require.NoError(t, err)
	assert.Equal(t, mustArray(t, `[{"x":{"a":5},"y":{"b":6}}]`), prod.JSONArray)
}

// Mảng không khớp cấu trúc meta phải bị từ chối
func TestImportService_AddEnvFilesMismatch(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewImportService(engine)
	_, err := engine.Deconstruct("default", "payments", "methods", mustArray(t, `["visa"]`), "uat")
	require.NoError(t, err)

	// thừa phần tử so với meta
	err = svc.AddEnvFiles("default", "payments", "methods", mustArray(t, `["a","b"]`), "prod")
	assert.ErrorIs(t, err, common.ErrOperationFailure)

	// số key không khớp nhóm explode
	_, err = engine.Deconstruct("default", "routing", "rules",
		mustArray(t, `[{"x":{"a":1},"y":{"b":2}}]`), "uat")
	require.NoError(t, err)
	err = svc.AddEnvFiles("default", "routing", "rules",
		mustArray(t, `[{"x":{"a":1},"y":{"b":2},"z":{"c":3}}]`), "prod")
	assert.ErrorIs(t, err, common.ErrOperationFailure)
}

// Lỗi một dòng không chặn các dòng sau và được ghi kèm số dòng
func TestImportService_RowErrors(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewImportService(engine)

	content := strings.Join([]string{
		"header",
		`payments,methods,not-json`,
		`shortrow`,
		`routing,rules,"[""ok""]"`,
	}, "\n")

	report, err := svc.ImportCSV("default_uat.csv", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 3, report.RowsProcessed)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "dòng 2")
	assert.Contains(t, report.Errors[1], "dòng 3")
	assert.True(t, engine.Exists("default", "routing", "rules"))
}

// Tên file sai định dạng chặn cả phiên import
func TestImportService_BadFileName(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewImportService(engine)

	_, err := svc.ImportCSV("noenv.csv", []byte("header\na,b,[1]"))
	assert.ErrorIs(t, err, common.ErrValidationFailure)
}
