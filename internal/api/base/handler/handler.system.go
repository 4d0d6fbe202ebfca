package basehdl

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/global"
)

// SystemHandler xử lý các route liên quan đến system operations
type SystemHandler struct {
	*BaseHandler[interface{}, interface{}, interface{}]
}

// NewSystemHandler tạo một instance mới của SystemHandler
func NewSystemHandler() (*SystemHandler, error) {
	baseHandler := &BaseHandler[interface{}, interface{}, interface{}]{}
	handler := &SystemHandler{
		BaseHandler: baseHandler,
	}
	return handler, nil
}

// HandleHealth kiểm tra tình trạng hệ thống
// @Summary Kiểm tra tình trạng hệ thống
// @Description Kiểm tra trạng thái của API, database connection và cây cấu hình
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Hệ thống hoạt động bình thường"
// @Failure 503 {object} map[string]interface{} "Hệ thống đang gặp sự cố"
// @Router /system/health [get]
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	// Kiểm tra database connection
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": fiber.Map{
			"api": "ok",
		},
	}

	degraded := false

	// Kiểm tra MongoDB connection
	if global.MongoDB_Session != nil {
		err := global.MongoDB_Session.Ping(ctx, nil)
		if err != nil {
			degraded = true
			healthData["services"].(fiber.Map)["database"] = "error"
			healthData["database_error"] = err.Error()
		} else {
			healthData["services"].(fiber.Map)["database"] = "ok"
		}
	} else {
		degraded = true
		healthData["services"].(fiber.Map)["database"] = "not_initialized"
	}

	// Kiểm tra thư mục gốc của cây cấu hình
	if global.ServerConfig != nil && global.ServerConfig.ConfigBasePath != "" {
		if info, err := os.Stat(global.ServerConfig.ConfigBasePath); err != nil || !info.IsDir() {
			degraded = true
			healthData["services"].(fiber.Map)["config_store"] = "error"
		} else {
			healthData["services"].(fiber.Map)["config_store"] = "ok"
		}
	} else {
		degraded = true
		healthData["services"].(fiber.Map)["config_store"] = "not_initialized"
	}

	if degraded {
		healthData["status"] = "degraded"
		// Trả về format chuẩn với status code 503
		return c.Status(common.StatusServiceUnavailable).JSON(fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    healthData,
			"status":  "error",
		})
	}

	// Trả về format chuẩn
	return c.Status(common.StatusOK).JSON(fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    healthData,
		"status":  "success",
	})
}
