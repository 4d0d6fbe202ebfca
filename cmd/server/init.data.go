package main

import (
	"path/filepath"

	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
)

func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	cfg := global.ServerConfig
	store := global.ConfigEngine.Store()

	// 1. Đảm bảo thư mục gốc của cây cấu hình tồn tại
	log.Info("🔄 [INIT] Step 1: Ensuring config base directory...")
	if err := store.EnsureDirectory(cfg.ConfigBasePath); err != nil {
		log.Fatalf("Failed to create config base directory: %v", err)
	}
	log.Info("✅ [INIT] Step 1: Config base directory ready")

	// 2. Đảm bảo thư mục LOB mặc định (baseline) tồn tại
	log.Info("🔄 [INIT] Step 2: Ensuring default LOB directory...")
	if err := store.EnsureDirectory(filepath.Join(cfg.ConfigBasePath, cfg.DefaultLob)); err != nil {
		log.Fatalf("Failed to create default LOB directory: %v", err)
	}
	log.Info("✅ [INIT] Step 2: Default LOB directory ready")

	// 3. Đảm bảo thư mục dynamic values tồn tại
	log.Info("🔄 [INIT] Step 3: Ensuring dynamic values directory...")
	if err := store.EnsureDirectory(cfg.DynamicValuesPath); err != nil {
		// Không fatal, resolver sẽ coi thiếu bảng như bảng rỗng
		log.Warnf("Failed to create dynamic values directory: %v", err)
	} else {
		log.Info("✅ [INIT] Step 3: Dynamic values directory ready")
	}
}
