package configtree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ElementPattern phân loại cách một phần tử JSON được đặt tên, lưu trữ và tái tạo.
// Đây là enum đóng: mỗi pattern có đúng một quy tắc encode (trong Classify)
// và một quy tắc decode (trong Decode). Giá trị chuỗi được serialize vào _meta.json.
type ElementPattern string

const (
	PatternNameField       ElementPattern = "NAME_FIELD"        // Object có field "name" dạng chuỗi không rỗng
	PatternIDField         ElementPattern = "ID_FIELD"          // Object có field "id"
	PatternTypeField       ElementPattern = "TYPE_FIELD"        // Object có field "type"
	PatternPlainString     ElementPattern = "PLAIN_STRING"      // Chuỗi không rỗng
	PatternPrimitive       ElementPattern = "PRIMITIVE"         // Số hoặc boolean
	PatternSingleKeyObject ElementPattern = "SINGLE_KEY_OBJECT" // Object đúng 1 key, lưu giá trị bên trong
	PatternMultiKeyExplode ElementPattern = "MULTI_KEY_EXPLODE" // Object nhiều key toàn container, tách mỗi key một element
	PatternFallback        ElementPattern = "FALLBACK"          // Mọi trường hợp còn lại, tên item_{n}
)

// IsValid kiểm tra pattern có thuộc tập giá trị hợp lệ không (dùng khi validate meta file)
func (p ElementPattern) IsValid() bool {
	switch p {
	case PatternNameField, PatternIDField, PatternTypeField,
		PatternPlainString, PatternPrimitive, PatternSingleKeyObject,
		PatternMultiKeyExplode, PatternFallback:
		return true
	}
	return false
}

// Decode đảo ngược quy tắc lưu trữ của pattern cho MỘT element đơn lẻ.
// Chỉ SINGLE_KEY_OBJECT cần biến đổi (bọc lại giá trị dưới key là tên element);
// việc gộp các element MULTI_KEY_EXPLODE cùng group do engine đảm nhiệm
// vì nó cần nhìn thấy cả dãy element liên tiếp.
func (p ElementPattern) Decode(name string, value any) any {
	switch p {
	case PatternSingleKeyObject:
		return map[string]any{name: value}
	case PatternNameField, PatternIDField, PatternTypeField,
		PatternPlainString, PatternPrimitive, PatternMultiKeyExplode,
		PatternFallback:
		return value
	}
	return value
}

// Classified kết quả phân loại một giá trị JSON: tên đề xuất (chưa sanitize),
// pattern, group id (chỉ có với MULTI_KEY_EXPLODE) và giá trị cần lưu.
type Classified struct {
	Name    string
	Pattern ElementPattern
	Group   string
	Value   any
}

// Classify phân loại một giá trị JSON theo thứ tự ưu tiên cố định:
// NAME_FIELD > ID_FIELD > TYPE_FIELD > PLAIN_STRING > PRIMITIVE >
// SINGLE_KEY_OBJECT > MULTI_KEY_EXPLODE > FALLBACK (match đầu tiên thắng).
//
// Hàm thuần, không side effect. MULTI_KEY_EXPLODE trả về nhiều phần tử
// (một per key, duyệt key theo thứ tự alphabet để kết quả ổn định giữa các lần chạy)
// và tất cả cùng mang groupID. Caller chỉ tăng fallbackIndex khi kết quả là FALLBACK.
//
// Parameters:
//   - value: giá trị JSON đã decode (map[string]any, []any, string, float64, bool, nil)
//   - fallbackIndex: số thứ tự hiện tại cho tên item_{n}
//   - groupID: group id gán cho các element MULTI_KEY_EXPLODE sinh ra từ giá trị này
//
// Returns:
//   - []Classified: ít nhất một phần tử; nhiều phần tử chỉ khi MULTI_KEY_EXPLODE
func Classify(value any, fallbackIndex int, groupID string) []Classified {
	switch v := value.(type) {
	case map[string]any:
		return classifyObject(v, fallbackIndex, groupID)

	case string:
		if strings.TrimSpace(v) != "" {
			// Tên lấy từ chuỗi đã trim nhưng giá trị lưu nguyên bản
			return []Classified{{Name: strings.TrimSpace(v), Pattern: PatternPlainString, Value: v}}
		}

	case bool, float64, json.Number, int, int32, int64:
		return []Classified{{Name: scalarName(v), Pattern: PatternPrimitive, Value: v}}
	}

	return []Classified{fallback(value, fallbackIndex)}
}

// classifyObject xử lý nhánh object của Classify theo cùng thứ tự ưu tiên
func classifyObject(obj map[string]any, fallbackIndex int, groupID string) []Classified {
	// NAME_FIELD: field "name" phải là chuỗi và không rỗng sau khi trim
	if name, ok := obj["name"].(string); ok && strings.TrimSpace(name) != "" {
		return []Classified{{Name: strings.TrimSpace(name), Pattern: PatternNameField, Value: obj}}
	}

	if id, ok := obj["id"]; ok {
		return []Classified{{Name: scalarName(id), Pattern: PatternIDField, Value: obj}}
	}

	if typ, ok := obj["type"]; ok {
		return []Classified{{Name: scalarName(typ), Pattern: PatternTypeField, Value: obj}}
	}

	if len(obj) == 1 {
		for key, inner := range obj {
			return []Classified{{Name: key, Pattern: PatternSingleKeyObject, Value: inner}}
		}
	}

	// MULTI_KEY_EXPLODE: chỉ khi MỌI giá trị đều là object hoặc array
	if len(obj) > 1 && allValuesAreContainers(obj) {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		results := make([]Classified, 0, len(keys))
		for _, key := range keys {
			results = append(results, Classified{
				Name:    key,
				Pattern: PatternMultiKeyExplode,
				Group:   groupID,
				Value:   obj[key],
			})
		}
		return results
	}

	return []Classified{fallback(obj, fallbackIndex)}
}

func fallback(value any, fallbackIndex int) Classified {
	return Classified{
		Name:    fmt.Sprintf("item_%d", fallbackIndex),
		Pattern: PatternFallback,
		Value:   value,
	}
}

// allValuesAreContainers kiểm tra mọi giá trị của object đều là object/array
func allValuesAreContainers(obj map[string]any) bool {
	for _, v := range obj {
		switch v.(type) {
		case map[string]any, []any:
		default:
			return false
		}
	}
	return true
}

// scalarName chuyển giá trị scalar thành chuỗi dùng làm tên element.
// Số nguyên không mang phần thập phân thừa (1.0 -> "1").
func scalarName(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return "null"
	}
	return fmt.Sprintf("%v", value)
}
