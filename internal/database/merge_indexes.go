// Package database - Index cho collection merges.
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/siddharth-2510/cofman/internal/global"
)

// CreateMergeIndexes tạo các index cho collection merges.
// Gọi một lần khi khởi động server, index đã tồn tại không phải lỗi.
func CreateMergeIndexes(ctx context.Context, db *mongo.Database) error {
	merges := db.Collection(global.MongoDB_ColNames.Merges)

	// state — màn hình liệt kê lọc theo trạng thái (PENDING/APPROVED/...)
	if _, err := merges.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "state", Value: 1}},
		Options: options.Index().SetName("merge_state"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// (fromBranch, toBranch) — tra cứu merge theo cặp nhánh
	if _, err := merges.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "fromBranch", Value: 1},
			{Key: "toBranch", Value: 1},
		},
		Options: options.Index().SetName("merge_branches"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// createdAt giảm dần — danh sách merge mới nhất trước
	if _, err := merges.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("merge_created_desc"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
