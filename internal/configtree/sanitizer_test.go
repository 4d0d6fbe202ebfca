package configtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"chuỗi rỗng", "", "unnamed"},
		{"toàn khoảng trắng", "   ", "unnamed"},
		{"toàn ký tự cấm", `\/:*?"<>|`, "unnamed"},
		{"tên sạch giữ nguyên", "payment_methods", "payment_methods"},
		{"giữ dấu chấm và gạch ngang", "v1.2-beta", "v1.2-beta"},
		{"khoảng trắng thành gạch dưới", "a b  c", "a_b_c"},
		{"ký tự cấm thành gạch dưới", `a/b\c:d`, "a_b_c_d"},
		{"gộp gạch dưới liên tiếp", "a***b", "a_b"},
		{"cắt gạch dưới đầu cuối", "**a**", "a"},
		{"tab và newline", "a\tb\nc", "a_b_c"},
		{"unicode giữ nguyên", "cấu hình chung", "cấu_hình_chung"},
		{"hỗn hợp", ` <config>: "main" `, "config_main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

// Sanitize phải idempotent: sanitize hai lần cho cùng kết quả với sanitize một lần
func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "   ", "a b c", `x/y:z`, "**a**", "already_safe",
		`\/:*?"<>|`, "mixed *string* here", "a\t\n b",
	}
	for _, input := range inputs {
		once := Sanitize(input)
		assert.Equal(t, once, Sanitize(once), "input: %q", input)
	}
}
