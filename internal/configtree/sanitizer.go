package configtree

import (
	"regexp"
	"strings"
)

// UnnamedElement tên thay thế khi input rỗng hoặc sanitize xong không còn ký tự nào
const UnnamedElement = "unnamed"

var (
	invalidFileChars = regexp.MustCompile(`[\\/:*?"<>|]`) // Các ký tự cấm trong tên file/thư mục
	whitespaceRun    = regexp.MustCompile(`\s+`)          // Chuỗi khoảng trắng liên tiếp
	underscoreRun    = regexp.MustCompile(`_+`)           // Chuỗi gạch dưới liên tiếp
)

// Sanitize chuyển một chuỗi bất kỳ thành tên an toàn cho filesystem.
// Quy tắc: thay các ký tự cấm (\ / : * ? " < > |) và mọi chuỗi khoảng trắng bằng "_",
// gộp các "_" liên tiếp thành một, cắt "_" ở đầu/cuối. Chuỗi rỗng (hoặc sanitize
// xong thành rỗng) trả về "unnamed".
//
// Hàm có tính idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
//
// Parameters:
//   - name: chuỗi đầu vào bất kỳ
//
// Returns:
//   - string: tên an toàn, không bao giờ rỗng
func Sanitize(name string) string {
	if name == "" {
		return UnnamedElement
	}

	safe := invalidFileChars.ReplaceAllString(name, "_")
	safe = whitespaceRun.ReplaceAllString(safe, "_")
	safe = underscoreRun.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")

	if safe == "" {
		return UnnamedElement
	}
	return safe
}
