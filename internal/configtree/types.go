// Package configtree là engine lõi của hệ thống: phân rã (deconstruct) một JSON array
// thành cây thư mục các file JSON nhỏ theo từng môi trường, và tái tạo (reconstruct)
// lại array gốc từ cây đó dựa trên metadata trong file _meta.json.
//
// Cấu trúc cây: {basePath}/{lob}/{domainName}/{domainType}/_meta.json
// và {basePath}/{lob}/{domainName}/{domainType}/{elementName}/{env}.json
package configtree

import "strings"

// MetaVersion phiên bản hiện tại của file _meta.json
const MetaVersion = "1.0"

// MetaFileName tên file metadata nằm trong thư mục domain type
const MetaFileName = "_meta.json"

// Các môi trường được hỗ trợ. EnvAll là giá trị đặc biệt:
// khi ghi sẽ được mở rộng thành tập các môi trường cụ thể.
const (
	EnvAll  = "ALL"
	EnvUAT  = "uat"
	EnvDev  = "dev"
	EnvDemo = "demo"
	EnvProd = "prod"
)

// SupportedEnvs danh sách môi trường hợp lệ cho tham số env
var SupportedEnvs = []string{EnvAll, EnvUAT, EnvDev, EnvDemo, EnvProd}

// ConcreteEnvs các môi trường cụ thể được ghi ra khi env == "ALL"
var ConcreteEnvs = []string{EnvUAT, EnvDemo, EnvProd}

// EnvsToWrite trả về danh sách môi trường cần ghi file cho một giá trị env.
// "ALL" (không phân biệt hoa thường) mở rộng thành ConcreteEnvs, còn lại giữ nguyên.
func EnvsToWrite(env string) []string {
	if strings.EqualFold(env, EnvAll) {
		return ConcreteEnvs
	}
	return []string{env}
}

// IsSupportedEnv kiểm tra env có nằm trong danh sách hỗ trợ không (không phân biệt hoa thường)
func IsSupportedEnv(env string) bool {
	for _, e := range SupportedEnvs {
		if strings.EqualFold(env, e) {
			return true
		}
	}
	return false
}

// Action hành động áp dụng cho một DomainConfig trong batch merge
type Action string

const (
	ActionInsert Action = "INSERT" // Tạo mới domain (no-op nếu đã tồn tại)
	ActionUpdate Action = "UPDATE" // Xóa toàn bộ thư mục domain rồi ghi lại
	ActionDelete Action = "DELETE" // Xóa domain, hoặc chỉ file của một env cụ thể
)

// MetaElement một entry trong _meta.json: chỉ chứa metadata (tên, pattern, group),
// KHÔNG chứa giá trị. Giá trị nằm trong các file {env}.json của từng element.
type MetaElement struct {
	Name    string         `json:"name" bson:"name"`                       // Tên element (đã sanitize, duy nhất trong domain)
	Pattern ElementPattern `json:"pattern" bson:"pattern"`                 // Pattern dùng khi tái tạo
	Group   string         `json:"group,omitempty" bson:"group,omitempty"` // Group id cho MULTI_KEY_EXPLODE
}

// MetaFile cấu trúc file _meta.json. Lưu thứ tự và pattern của các element
// để tái tạo lại đúng JSON array gốc.
type MetaFile struct {
	Version    string        `json:"version" bson:"version"`
	DomainName string        `json:"domain_name" bson:"domain_name"`
	DomainType string        `json:"domain_type" bson:"domain_type"`
	Elements   []MetaElement `json:"elements" bson:"elements"`
}

// NewMetaFile tạo MetaFile rỗng với version hiện tại
func NewMetaFile(domainName, domainType string) *MetaFile {
	return &MetaFile{
		Version:    MetaVersion,
		DomainName: domainName,
		DomainType: domainType,
		Elements:   []MetaElement{},
	}
}

// AddElement thêm một element vào cuối danh sách
func (m *MetaFile) AddElement(element MetaElement) {
	m.Elements = append(m.Elements, element)
}

// RemoveElement xóa element theo tên (tất cả các entry trùng tên)
func (m *MetaFile) RemoveElement(name string) {
	kept := m.Elements[:0]
	for _, e := range m.Elements {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	m.Elements = kept
}

// FindElement tìm element theo tên, trả về nil nếu không có
func (m *MetaFile) FindElement(name string) *MetaElement {
	for i := range m.Elements {
		if m.Elements[i].Name == name {
			return &m.Elements[i]
		}
	}
	return nil
}

// HasElement kiểm tra element có tồn tại trong meta không
func (m *MetaFile) HasElement(name string) bool {
	return m.FindElement(name) != nil
}

// ConfigElement một element cấu hình kèm giá trị thực. Đây là object trung gian
// khi xử lý, kết hợp metadata (từ _meta.json) với giá trị (từ file {env}.json).
// Không dùng để serialize trực tiếp ra file.
type ConfigElement struct {
	Name    string         `json:"name" bson:"name"`
	Pattern ElementPattern `json:"pattern" bson:"pattern"`
	Group   string         `json:"group,omitempty" bson:"group,omitempty"`
	Value   any            `json:"value" bson:"value"`
}

// ElementFromMeta tạo ConfigElement từ MetaElement kèm giá trị
func ElementFromMeta(meta MetaElement, value any) ConfigElement {
	return ConfigElement{
		Name:    meta.Name,
		Pattern: meta.Pattern,
		Group:   meta.Group,
		Value:   value,
	}
}

// ToMetaElement chuyển về MetaElement (bỏ giá trị)
func (e ConfigElement) ToMetaElement() MetaElement {
	return MetaElement{
		Name:    e.Name,
		Pattern: e.Pattern,
		Group:   e.Group,
	}
}

// HasGroup kiểm tra element có thuộc một group không
func (e ConfigElement) HasGroup() bool {
	return e.Group != ""
}

// DomainConfig mô tả một domain cấu hình đầy đủ: định danh, hành động,
// môi trường đích và danh sách element theo thứ tự. Đây là đơn vị công việc
// của batch merge và là kết quả trả về của Deconstruct.
type DomainConfig struct {
	Lob        string          `json:"lob" bson:"lob"`
	DomainName string          `json:"domainName" bson:"domainName"`
	DomainType string          `json:"domainType" bson:"domainType"`
	Action     Action          `json:"action" bson:"action"`
	Env        string          `json:"env" bson:"env"`
	Elements   []ConfigElement `json:"elements" bson:"elements"`
}

// Key trả về định danh "lob/domainName/domainType" dùng trong log và báo cáo lỗi
func (d *DomainConfig) Key() string {
	return d.Lob + "/" + d.DomainName + "/" + d.DomainType
}

// AddElement thêm element vào cuối danh sách
func (d *DomainConfig) AddElement(element ConfigElement) {
	d.Elements = append(d.Elements, element)
}

// FindElement tìm element theo tên, trả về nil nếu không có
func (d *DomainConfig) FindElement(name string) *ConfigElement {
	for i := range d.Elements {
		if d.Elements[i].Name == name {
			return &d.Elements[i]
		}
	}
	return nil
}

// HasElement kiểm tra element có tồn tại không
func (d *DomainConfig) HasElement(name string) bool {
	return d.FindElement(name) != nil
}

// ElementCount số element hiện có
func (d *DomainConfig) ElementCount() int {
	return len(d.Elements)
}

// ToMetaFile sinh MetaFile từ danh sách element hiện tại (giữ nguyên thứ tự)
func (d *DomainConfig) ToMetaFile() *MetaFile {
	meta := NewMetaFile(d.DomainName, d.DomainType)
	for _, e := range d.Elements {
		meta.AddElement(e.ToMetaElement())
	}
	return meta
}

// ReconstructResult kết quả tái tạo một domain cho một môi trường.
// Warnings chứa các cảnh báo mềm (thiếu file env, thư mục mồ côi)
// không làm fail kết quả.
type ReconstructResult struct {
	Lob          string   `json:"lob"`
	DomainName   string   `json:"domainName"`
	DomainType   string   `json:"domainType"`
	Env          string   `json:"env"`
	JSONArray    []any    `json:"jsonArray"`
	ElementCount int      `json:"elementCount"`
	Warnings     []string `json:"warnings,omitempty"`
	Success      bool     `json:"success"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// AddWarning ghi nhận một cảnh báo mềm
func (r *ReconstructResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// HasWarnings kiểm tra có cảnh báo nào không
func (r *ReconstructResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}
