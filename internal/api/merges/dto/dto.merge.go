// Package mergedto chứa DTO cho domain merges.
// File: dto.merge.go
package mergedto

import (
	"github.com/siddharth-2510/cofman/internal/configtree"
)

// DomainConfigInput là một mục thay đổi trong batch merge
type DomainConfigInput struct {
	Lob        string                     `json:"lob" validate:"omitempty,lob_name"`             // LOB đích, rỗng = default
	DomainName string                     `json:"domainName" validate:"required"`                // Tên domain
	DomainType string                     `json:"domainType" validate:"required"`                // Loại domain
	Action     string                     `json:"action" validate:"required,merge_action"`       // INSERT | UPDATE | DELETE
	Env        string                     `json:"env" validate:"omitempty,config_env"`           // Môi trường đích ("ALL" = uat+demo+prod)
	Elements   []configtree.ConfigElement `json:"elements"`                                      // Danh sách element (đã classify) cho INSERT/UPDATE
}

// MergeCreateInput là input để tạo một yêu cầu merge
type MergeCreateInput struct {
	FromBranch    string              `json:"fromBranch" validate:"required"` // Nhánh nguồn
	ToBranch      string              `json:"toBranch" validate:"required"`   // Nhánh đích
	Requester     string              `json:"requester" validate:"required"`  // Người tạo yêu cầu
	RepoURL       string              `json:"repoUrl,omitempty"`              // Link PR/repo tham chiếu
	DomainConfigs []DomainConfigInput `json:"domainConfigs" validate:"required,min=1,dive"` // Batch thay đổi
}

// MergeUpdateInput là input để cập nhật một yêu cầu merge (chỉ khi còn PENDING)
type MergeUpdateInput struct {
	FromBranch    *string              `json:"fromBranch,omitempty"`
	ToBranch      *string              `json:"toBranch,omitempty"`
	RepoURL       *string              `json:"repoUrl,omitempty"`
	DomainConfigs *[]DomainConfigInput `json:"domainConfigs,omitempty" validate:"omitempty,min=1,dive"`
}

// MergeApproveInput là input cho action duyệt merge
type MergeApproveInput struct {
	Merger string `json:"merger" validate:"required"` // Người duyệt
}
