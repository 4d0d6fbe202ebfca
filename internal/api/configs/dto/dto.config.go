// Package configdto chứa DTO cho domain configs (các thao tác trên cây cấu hình).
// File: dto.config.go
package configdto

import (
	"github.com/siddharth-2510/cofman/internal/configtree"
)

// TransformInput là input cho build (preview) và deconstruct (ghi xuống cây)
type TransformInput struct {
	Lob        string        `json:"lob" validate:"omitempty,lob_name"` // LOB đích, rỗng = default
	DomainName string        `json:"domainName" validate:"required"`
	DomainType string        `json:"domainType" validate:"required"`
	JSONArray  []interface{} `json:"jsonArray" validate:"required"`      // Mảng JSON nguồn
	Env        string        `json:"env" validate:"required,config_env"` // Môi trường đích, "ALL" ghi uat/demo/prod
}

// DomainQuery định danh một domain qua query string (reconstruct-all, detail)
type DomainQuery struct {
	Lob        string `query:"lob" validate:"omitempty,lob_name"`
	DomainName string `query:"domainName" validate:"required"`
	DomainType string `query:"domainType" validate:"required"`
}

// ReconstructQuery định danh domain + môi trường cần tái tạo
type ReconstructQuery struct {
	Lob        string `query:"lob" validate:"omitempty,lob_name"`
	DomainName string `query:"domainName" validate:"required"`
	DomainType string `query:"domainType" validate:"required"`
	Env        string `query:"env" validate:"required,config_env"`
}

// ElementValueQuery tra giá trị một element qua query string
type ElementValueQuery struct {
	Lob         string `query:"lob" validate:"omitempty,lob_name"`
	DomainName  string `query:"domainName" validate:"required"`
	DomainType  string `query:"domainType" validate:"required"`
	ElementName string `query:"elementName" validate:"required"`
	Env         string `query:"env" validate:"omitempty,config_env"`
}

// LobQuery chọn LOB qua query string (domains, summaries)
type LobQuery struct {
	Lob string `query:"lob" validate:"omitempty,lob_name"`
}

// LobEnvQuery chọn LOB và môi trường qua query string (values)
type LobEnvQuery struct {
	Lob string `query:"lob" validate:"omitempty,lob_name"`
	Env string `query:"env" validate:"required,config_env"`
}

// ElementInsertInput thêm element mới, tên do hệ thống phân loại đặt
type ElementInsertInput struct {
	Lob        string      `json:"lob" validate:"omitempty,lob_name"`
	DomainName string      `json:"domainName" validate:"required"`
	DomainType string      `json:"domainType" validate:"required"`
	Value      interface{} `json:"value"` // Giá trị JSON bất kỳ (kể cả null)
	Env        string      `json:"env" validate:"required,config_env"`
}

// ElementInsertWithNameInput thêm element mới với tên do caller chỉ định
type ElementInsertWithNameInput struct {
	Lob         string      `json:"lob" validate:"omitempty,lob_name"`
	DomainName  string      `json:"domainName" validate:"required"`
	DomainType  string      `json:"domainType" validate:"required"`
	ElementName string      `json:"elementName" validate:"required"`
	Value       interface{} `json:"value"`
	Env         string      `json:"env" validate:"required,config_env"`
}

// ElementUpdateInput ghi giá trị mới cho một element đã có
type ElementUpdateInput struct {
	Lob         string      `json:"lob" validate:"omitempty,lob_name"`
	DomainName  string      `json:"domainName" validate:"required"`
	DomainType  string      `json:"domainType" validate:"required"`
	ElementName string      `json:"elementName" validate:"required"`
	Value       interface{} `json:"value"`
	Env         string      `json:"env" validate:"required,config_env"`
}

// ElementDeleteInput xóa một element khỏi domain
type ElementDeleteInput struct {
	Lob         string `json:"lob" validate:"omitempty,lob_name"`
	DomainName  string `json:"domainName" validate:"required"`
	DomainType  string `json:"domainType" validate:"required"`
	ElementName string `json:"elementName" validate:"required"`
}

// DomainDeleteInput xóa một domain; env rỗng hoặc "ALL" xóa cả thư mục,
// env cụ thể chỉ xóa file của env đó
type DomainDeleteInput struct {
	Lob        string `json:"lob" validate:"omitempty,lob_name"`
	DomainName string `json:"domainName" validate:"required"`
	DomainType string `json:"domainType" validate:"required"`
	Env        string `json:"env" validate:"omitempty,config_env"`
}

// CopyElementInput sao chép một element giữa hai LOB (cùng domain)
type CopyElementInput struct {
	FromLob     string `json:"fromLob" validate:"required,lob_name"`
	ToLob       string `json:"toLob" validate:"required,lob_name"`
	DomainName  string `json:"domainName" validate:"required"`
	DomainType  string `json:"domainType" validate:"required"`
	ElementName string `json:"elementName" validate:"required"`
}

// CopyElementsInput sao chép một danh sách element giữa hai LOB
type CopyElementsInput struct {
	FromLob      string   `json:"fromLob" validate:"required,lob_name"`
	ToLob        string   `json:"toLob" validate:"required,lob_name"`
	DomainName   string   `json:"domainName" validate:"required"`
	DomainType   string   `json:"domainType" validate:"required"`
	ElementNames []string `json:"elementNames" validate:"required,min=1"`
}

// CopyDomainTypeInput sao chép nguyên một domain giữa hai LOB
type CopyDomainTypeInput struct {
	FromLob    string `json:"fromLob" validate:"required,lob_name"`
	ToLob      string `json:"toLob" validate:"required,lob_name"`
	DomainName string `json:"domainName" validate:"required"`
	DomainType string `json:"domainType" validate:"required"`
}

// CopyDomainNameInput sao chép mọi domain type dưới một domain name
type CopyDomainNameInput struct {
	FromLob    string `json:"fromLob" validate:"required,lob_name"`
	ToLob      string `json:"toLob" validate:"required,lob_name"`
	DomainName string `json:"domainName" validate:"required"`
}

// CopyLobInput sao chép toàn bộ cây của một LOB
type CopyLobInput struct {
	FromLob string `json:"fromLob" validate:"required,lob_name"`
	ToLob   string `json:"toLob" validate:"required,lob_name"`
}

// CopyLobEnvInput sao chép một LOB nhưng chỉ file của một môi trường
type CopyLobEnvInput struct {
	FromLob string `json:"fromLob" validate:"required,lob_name"`
	ToLob   string `json:"toLob" validate:"required,lob_name"`
	Env     string `json:"env" validate:"required,config_env"`
}

// AddEnvFilesInput bổ sung file env còn thiếu cho một domain đã có
type AddEnvFilesInput struct {
	Lob        string        `json:"lob" validate:"omitempty,lob_name"`
	DomainName string        `json:"domainName" validate:"required"`
	DomainType string        `json:"domainType" validate:"required"`
	JSONArray  []interface{} `json:"jsonArray" validate:"required"`
	Env        string        `json:"env" validate:"required,config_env"`
}

// UpdateBatchInput là cặp danh sách cấu hình trước/sau khi sửa trên UI.
// Dùng thẳng DomainConfig của configtree: đây là value type thuần JSON
// và các element bên trong giữ đúng pattern/group đã có.
type UpdateBatchInput struct {
	OldConfigs []configtree.DomainConfig `json:"oldConfigs"`
	NewConfigs []configtree.DomainConfig `json:"newConfigs" validate:"required,min=1"`
}

// PushDomainInput đẩy một domain sang môi trường đích
type PushDomainInput struct {
	Lob        string `json:"lob" validate:"omitempty,lob_name"`
	DomainName string `json:"domainName" validate:"required"`
	DomainType string `json:"domainType" validate:"required"`
	Env        string `json:"env" validate:"required,config_env"`
}

// PushLobInput đẩy toàn bộ domain của một LOB sang môi trường đích
type PushLobInput struct {
	Lob string `json:"lob" validate:"omitempty,lob_name"`
	Env string `json:"env" validate:"required,config_env"`
}
