package utility

import (
	"encoding/json"
	"fmt"
)

// NormalizeJSON đưa giá trị về dạng JSON thuần (map[string]interface{}, []interface{},
// string, float64, bool, nil) qua một vòng marshal/unmarshal.
// Dữ liệu decode từ MongoDB mang kiểu primitive.M/primitive.A nên các type switch
// trên map[string]interface{} và []interface{} không nhận ra — chuẩn hóa trước khi
// đưa vào tầng xử lý cây cấu hình.
func NormalizeJSON(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize marshal failed: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize unmarshal failed: %w", err)
	}
	return out, nil
}

// NormalizeJSONArray chuẩn hóa một mảng giá trị, giữ nguyên độ dài.
func NormalizeJSONArray(values []interface{}) ([]interface{}, error) {
	if values == nil {
		return nil, nil
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		n, err := NormalizeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("phần tử %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
