package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/siddharth-2510/cofman/config"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Merges string // Tên collection cho merge request
}

// Các biến toàn cục
var Validate *validator.Validate       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client      // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration // Cấu hình của server
var ConfigEngine *configtree.Engine    // Engine cây cấu hình (khởi tạo một lần, chia sẻ lock table)
var MongoDB_ColNames = MongoDB_CollectionName{
	Merges: "merges",
}

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
