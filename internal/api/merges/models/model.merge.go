// Package models - Merge thuộc domain merges.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/merge"
)

// Merge là một yêu cầu merge cấu hình giữa hai nhánh.
// DomainConfigs chứa batch các thay đổi; Response lưu báo cáo sau khi áp dụng.
// Vòng đời: PENDING (mới tạo) -> APPROVED (đã duyệt) -> MERGED/FAILED (đã áp dụng).
type Merge struct {
	ID            primitive.ObjectID        `json:"id,omitempty" bson:"_id,omitempty"`
	FromBranch    string                    `json:"fromBranch" bson:"fromBranch"`
	ToBranch      string                    `json:"toBranch" bson:"toBranch"`
	Requester     string                    `json:"requester" bson:"requester"`
	Merger        string                    `json:"merger,omitempty" bson:"merger,omitempty"`
	RepoURL       string                    `json:"repoUrl,omitempty" bson:"repoUrl,omitempty"`
	State         merge.MergeState          `json:"state,omitempty" bson:"state,omitempty" default:"PENDING"`
	DomainConfigs []configtree.DomainConfig `json:"domainConfigs" bson:"domainConfigs"`
	Response      *merge.Report             `json:"response,omitempty" bson:"response,omitempty"`
	CreatedAt     int64                     `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt     int64                     `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
