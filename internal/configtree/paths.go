package configtree

import (
	"path/filepath"
	"strings"
)

// Các giá trị mặc định của ConfigPath
const (
	DefaultBasePath = "configs" // Thư mục gốc của cây cấu hình
	DefaultLob      = "default" // LOB baseline
)

// ConfigPath ánh xạ bộ định danh (basePath, lob, domainName, domainType, element, env)
// sang các đường dẫn trên cây cấu hình. Là value type bất biến: các hàm With* trả về
// bản sao đã gán trường tương ứng, không sửa receiver.
//
// Các dạng đường dẫn:
//
//	{basePath}/{lob}                                             LobDir
//	{basePath}/{lob}/{domainName}                                DomainNameDir
//	{basePath}/{lob}/{domainName}/{domainType}                   DomainTypeDir
//	{basePath}/{lob}/{domainName}/{domainType}/_meta.json        MetaPath
//	{basePath}/{lob}/{domainName}/{domainType}/{element}         ElementDir
//	{basePath}/{lob}/{domainName}/{domainType}/{element}/{env}.json  EnvFile
type ConfigPath struct {
	BasePath   string
	Lob        string
	DomainName string
	DomainType string
	Element    string
	Env        string
}

// NewConfigPath tạo ConfigPath với giá trị mặc định cho các trường bỏ trống:
// basePath = "configs", lob = "default", env = "ALL".
func NewConfigPath(basePath string) ConfigPath {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return ConfigPath{
		BasePath: basePath,
		Lob:      DefaultLob,
		Env:      EnvAll,
	}
}

// WithLob trả về bản sao với LOB mới (giữ default nếu lob rỗng)
func (p ConfigPath) WithLob(lob string) ConfigPath {
	if lob != "" {
		p.Lob = lob
	}
	return p
}

// WithDomain trả về bản sao với domainName/domainType mới
func (p ConfigPath) WithDomain(domainName, domainType string) ConfigPath {
	p.DomainName = domainName
	p.DomainType = domainType
	return p
}

// WithElement trả về bản sao trỏ đến một element cụ thể
func (p ConfigPath) WithElement(element string) ConfigPath {
	p.Element = element
	return p
}

// WithEnv trả về bản sao với môi trường mới (giữ nguyên nếu env rỗng)
func (p ConfigPath) WithEnv(env string) ConfigPath {
	if env != "" {
		p.Env = env
	}
	return p
}

// LobDir đường dẫn thư mục LOB
func (p ConfigPath) LobDir() string {
	return filepath.Join(p.BasePath, p.Lob)
}

// DomainNameDir đường dẫn thư mục domain name
func (p ConfigPath) DomainNameDir() string {
	return filepath.Join(p.BasePath, p.Lob, p.DomainName)
}

// DomainTypeDir đường dẫn thư mục domain type (chứa _meta.json và các element)
func (p ConfigPath) DomainTypeDir() string {
	return filepath.Join(p.BasePath, p.Lob, p.DomainName, p.DomainType)
}

// MetaPath đường dẫn file _meta.json của domain
func (p ConfigPath) MetaPath() string {
	return filepath.Join(p.DomainTypeDir(), MetaFileName)
}

// ElementDir đường dẫn thư mục của element hiện tại
func (p ConfigPath) ElementDir() string {
	return filepath.Join(p.DomainTypeDir(), p.Element)
}

// EnvFile đường dẫn file giá trị của element cho môi trường hiện tại.
// Tên file luôn lowercase để đọc/ghi nhất quán bất kể caller truyền "UAT" hay "uat".
func (p ConfigPath) EnvFile() string {
	return filepath.Join(p.ElementDir(), strings.ToLower(p.Env)+".json")
}
