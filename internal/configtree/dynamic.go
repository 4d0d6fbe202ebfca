package configtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/registry"
)

// DynamicValuePrefix prefix đánh dấu một chuỗi là placeholder cần thay thế theo môi trường
const DynamicValuePrefix = "$."

// EnvironmentVariableSource cung cấp bảng key -> giá trị JSON cho một môi trường.
// Tách thành interface để resolver thuần túy và test được; implementation mặc định
// đọc từ file, caller khác có thể inject map cứng.
type EnvironmentVariableSource interface {
	// Load trả về bảng giá trị của một môi trường. Môi trường chưa có bảng
	// trả về map rỗng, không lỗi.
	Load(env string) (map[string]any, error)
}

// FileEnvSource đọc bảng dynamic values từ {dir}/{env}.json (env lowercase).
// Bảng được cache theo env qua Registry nên mỗi file chỉ đọc từ đĩa một lần.
type FileEnvSource struct {
	dir   string
	cache *registry.Registry[map[string]any]
}

// NewFileEnvSource tạo source đọc bảng dynamic values từ thư mục dir
func NewFileEnvSource(dir string) *FileEnvSource {
	return &FileEnvSource{
		dir:   dir,
		cache: registry.NewRegistry[map[string]any](),
	}
}

// Load đọc (hoặc lấy từ cache) bảng giá trị của env
func (s *FileEnvSource) Load(env string) (map[string]any, error) {
	key := strings.ToLower(env)
	return s.cache.GetOrCreate(key, func() (map[string]any, error) {
		return s.readTable(key)
	})
}

// readTable đọc file bảng từ đĩa; file không tồn tại coi như bảng rỗng
func (s *FileEnvSource) readTable(env string) (map[string]any, error) {
	path := filepath.Join(s.dir, env+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, common.NewOperationError(fmt.Sprintf("Không đọc được bảng dynamic values %s", path), err)
	}

	var table map[string]any
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, common.NewOperationError(fmt.Sprintf("Bảng dynamic values %s không phải JSON object hợp lệ", path), err)
	}
	return table, nil
}

// StaticEnvSource bảng dynamic values cố định trong memory, dùng cho test
// và cho trường hợp caller đã có sẵn bảng.
type StaticEnvSource map[string]map[string]any

// Load trả về bảng của env (map rỗng nếu chưa khai báo)
func (s StaticEnvSource) Load(env string) (map[string]any, error) {
	if table, ok := s[strings.ToLower(env)]; ok {
		return table, nil
	}
	return map[string]any{}, nil
}

// DynamicResolver thay thế các placeholder "$.<key>" trong một giá trị JSON
// bằng giá trị tương ứng của môi trường đích. Chạy ở thời điểm GHI: file element
// trên đĩa luôn chứa giá trị đã resolve, đọc lại không cần resolve nữa.
type DynamicResolver struct {
	source EnvironmentVariableSource
}

// NewDynamicResolver tạo resolver với source được inject
func NewDynamicResolver(source EnvironmentVariableSource) *DynamicResolver {
	return &DynamicResolver{source: source}
}

// Resolve duyệt đệ quy value, thay mọi chuỗi có dạng đúng "$.<key>" bằng
// deep copy giá trị của key trong bảng env. Chuỗi thường, số, boolean, null
// đi qua nguyên vẹn. Value gốc không bị sửa.
//
// Returns:
//   - any: bản sao đã resolve
//   - error: OperationFailure "Missing env variable: <key>" nếu bảng thiếu key
func (r *DynamicResolver) Resolve(value any, env string) (any, error) {
	table, err := r.source.Load(env)
	if err != nil {
		return nil, err
	}
	return resolveValue(value, table)
}

func resolveValue(value any, table map[string]any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		resolved := make(map[string]any, len(v))
		for key, inner := range v {
			rv, err := resolveValue(inner, table)
			if err != nil {
				return nil, err
			}
			resolved[key] = rv
		}
		return resolved, nil

	case []any:
		resolved := make([]any, len(v))
		for i, inner := range v {
			rv, err := resolveValue(inner, table)
			if err != nil {
				return nil, err
			}
			resolved[i] = rv
		}
		return resolved, nil

	case string:
		if strings.HasPrefix(v, DynamicValuePrefix) {
			key := strings.TrimPrefix(v, DynamicValuePrefix)
			replacement, ok := table[key]
			if !ok {
				return nil, common.NewOperationError("Missing env variable: "+key, nil)
			}
			return deepCopy(replacement), nil
		}
		return v, nil
	}

	return value, nil
}

// deepCopy sao chép sâu một giá trị JSON để bản thay thế độc lập với bảng gốc
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, inner := range v {
			copied[key] = deepCopy(inner)
		}
		return copied
	case []any:
		copied := make([]any, len(v))
		for i, inner := range v {
			copied[i] = deepCopy(inner)
		}
		return copied
	}
	return value
}
