package configtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/siddharth-2510/cofman/internal/common"
)

// FileStore cung cấp các thao tác thô trên file JSON và thư mục của cây cấu hình.
// Đây là component duy nhất chạm vào storage; mọi đường dẫn do ConfigPath sinh ra.
// Ghi file đi qua temp-file + os.Rename để một reader đồng thời không bao giờ
// thấy file viết dở.
type FileStore struct{}

// NewFileStore tạo FileStore mới
func NewFileStore() *FileStore {
	return &FileStore{}
}

// EnsureDirectory tạo thư mục (kèm các cấp cha) nếu chưa tồn tại
func (s *FileStore) EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.NewOperationError(fmt.Sprintf("Không tạo được thư mục %s", dir), err)
	}
	return nil
}

// FileExists kiểm tra đường dẫn tồn tại và là file
func (s *FileStore) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirectoryExists kiểm tra đường dẫn tồn tại và là thư mục
func (s *FileStore) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReadJSON đọc một file chứa đúng một giá trị JSON.
//
// Returns:
//   - any: giá trị đã decode (map[string]any, []any, string, float64, bool hoặc nil)
//   - error: NotFound nếu file không tồn tại, OperationFailure nếu đọc/parse lỗi
func (s *FileStore) ReadJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewNotFoundError(fmt.Sprintf("File không tồn tại: %s", path))
		}
		return nil, common.NewOperationError(fmt.Sprintf("Không đọc được file %s", path), err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, common.NewOperationError(fmt.Sprintf("File %s không phải JSON hợp lệ", path), err)
	}
	return value, nil
}

// WriteJSON ghi một giá trị JSON ra file (pretty-printed), tạo thư mục cha nếu cần.
// Ghi vào temp file cùng thư mục rồi rename để thay thế nguyên tử.
func (s *FileStore) WriteJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return common.NewOperationError(fmt.Sprintf("Không serialize được giá trị cho file %s", path), err)
	}
	return s.writeAtomic(path, append(data, '\n'))
}

// ReadMeta đọc và validate file _meta.json của một domain.
//
// Returns:
//   - *MetaFile: metadata đã parse
//   - error: NotFound nếu file không tồn tại, InvalidMeta nếu parse/validate thất bại
func (s *FileStore) ReadMeta(path string) (*MetaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewNotFoundError(fmt.Sprintf("Meta file không tồn tại: %s", path))
		}
		return nil, common.NewInvalidMetaError(fmt.Sprintf("Không đọc được meta file %s", path), err)
	}

	var meta MetaFile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, common.NewInvalidMetaError(fmt.Sprintf("Meta file %s không phải JSON hợp lệ", path), err)
	}

	if meta.Version == "" || meta.Elements == nil {
		return nil, common.NewInvalidMetaError(fmt.Sprintf("Meta file %s thiếu version hoặc elements", path), nil)
	}
	for _, el := range meta.Elements {
		if !el.Pattern.IsValid() {
			return nil, common.NewInvalidMetaError(
				fmt.Sprintf("Meta file %s chứa pattern không hợp lệ: %s", path, el.Pattern), nil)
		}
	}
	return &meta, nil
}

// WriteMeta ghi file _meta.json (temp + rename như WriteJSON)
func (s *FileStore) WriteMeta(path string, meta *MetaFile) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return common.NewOperationError(fmt.Sprintf("Không serialize được meta file %s", path), err)
	}
	return s.writeAtomic(path, append(data, '\n'))
}

// DeleteFile xóa một file; file không tồn tại không phải lỗi
func (s *FileStore) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return common.NewOperationError(fmt.Sprintf("Không xóa được file %s", path), err)
	}
	return nil
}

// DeleteDirectory xóa thư mục và toàn bộ nội dung bên trong
func (s *FileStore) DeleteDirectory(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return common.NewOperationError(fmt.Sprintf("Không xóa được thư mục %s", dir), err)
	}
	return nil
}

// CopyFile sao chép một file (đích cũng ghi qua temp + rename)
func (s *FileStore) CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.NewNotFoundError(fmt.Sprintf("File nguồn không tồn tại: %s", src))
		}
		return common.NewOperationError(fmt.Sprintf("Không đọc được file nguồn %s", src), err)
	}
	return s.writeAtomic(dst, data)
}

// CopyDirectory sao chép đệ quy toàn bộ cây thư mục src sang dst
func (s *FileStore) CopyDirectory(src, dst string) error {
	if !s.DirectoryExists(src) {
		return common.NewNotFoundError(fmt.Sprintf("Thư mục nguồn không tồn tại: %s", src))
	}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return s.writeAtomic(target, data)
	})
	if err != nil {
		return common.NewOperationError(fmt.Sprintf("Không sao chép được thư mục %s -> %s", src, dst), err)
	}
	return nil
}

// ListSubdirectories liệt kê tên các thư mục con trực tiếp (đã sort để ổn định).
// Thư mục không tồn tại trả về danh sách rỗng.
func (s *FileStore) ListSubdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, common.NewOperationError(fmt.Sprintf("Không đọc được thư mục %s", dir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// writeAtomic ghi data vào temp file cùng thư mục rồi rename sang đích
func (s *FileStore) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.EnsureDirectory(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return common.NewOperationError(fmt.Sprintf("Không tạo được temp file trong %s", dir), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.NewOperationError(fmt.Sprintf("Không ghi được temp file cho %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return common.NewOperationError(fmt.Sprintf("Không đóng được temp file cho %s", path), err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return common.NewOperationError(fmt.Sprintf("Không ghi được file %s", path), err)
	}
	return nil
}
