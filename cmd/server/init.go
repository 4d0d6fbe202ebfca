package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/config"
	"github.com/siddharth-2510/cofman/internal/api/events"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/database"
	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initConfigEngine()     // Khởi tạo engine cây cấu hình
	initDataChangeAudit()  // Đăng ký audit log cho sự kiện CRUD
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: config_env, lob_name, merge_action)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các index cho collection merge request
	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.CreateMergeIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create merge indexes: %v", err)
	}
	logrus.Info("Created merge collection indexes")
}

// Hàm khởi tạo engine cây cấu hình. Engine được tạo đúng một lần và chia sẻ
// qua global để mọi handler dùng chung bảng lock theo LOB.
func initConfigEngine() {
	cfg := global.ServerConfig
	global.ConfigEngine = configtree.NewEngine(cfg.ConfigBasePath, configtree.NewFileEnvSource(cfg.DynamicValuesPath))
	logrus.Infof("Initialized config engine (base path: %s)", cfg.ConfigBasePath)
}

// Hàm đăng ký audit log cho các sự kiện thay đổi dữ liệu phát ra từ tầng CRUD
func initDataChangeAudit() {
	auditLog := logger.GetAuditLogger()
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		auditLog.WithFields(logrus.Fields{
			"collection": e.CollectionName,
			"operation":  e.Operation,
		}).Info("Data changed")
	})
	logrus.Info("Registered data change audit handler")
}
