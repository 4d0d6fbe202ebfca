// Package router đăng ký các route thao tác trực tiếp trên cây cấu hình:
// transform/reconstruct, element CRUD, copy, đọc, import CSV, update hàng
// loạt và push sang môi trường đích.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	confighdl "github.com/siddharth-2510/cofman/internal/api/configs/handler"
	apirouter "github.com/siddharth-2510/cofman/internal/api/router"
)

// Register đăng ký tất cả route configs lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(v1); err != nil {
		return err
	}

	transformHandler, err := confighdl.NewConfigTransformHandler()
	if err != nil {
		return fmt.Errorf("create transform handler: %w", err)
	}
	elementHandler, err := confighdl.NewConfigElementHandler()
	if err != nil {
		return fmt.Errorf("create element handler: %w", err)
	}
	copyHandler, err := confighdl.NewConfigCopyHandler()
	if err != nil {
		return fmt.Errorf("create copy handler: %w", err)
	}
	readerHandler, err := confighdl.NewConfigReaderHandler()
	if err != nil {
		return fmt.Errorf("create reader handler: %w", err)
	}
	importHandler, err := confighdl.NewConfigImportHandler()
	if err != nil {
		return fmt.Errorf("create import handler: %w", err)
	}
	updateHandler, err := confighdl.NewConfigUpdateHandler()
	if err != nil {
		return fmt.Errorf("create update handler: %w", err)
	}
	pushHandler, err := confighdl.NewConfigPushHandler()
	if err != nil {
		return fmt.Errorf("create push handler: %w", err)
	}

	// Transform: build preview, phân rã xuống cây, tái tạo
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/transform", nil, transformHandler.HandleTransform)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/deconstruct", nil, transformHandler.HandleDeconstruct)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/reconstruct", nil, transformHandler.HandleReconstruct)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/reconstruct-all", nil, transformHandler.HandleReconstructAll)

	// Element CRUD
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/element-insert", nil, elementHandler.HandleInsertElement)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/element-insert-with-name", nil, elementHandler.HandleInsertElementWithName)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "PUT", "/element-update", nil, elementHandler.HandleUpdateElement)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/element-delete", nil, elementHandler.HandleDeleteElement)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/domain-delete", nil, elementHandler.HandleDeleteDomain)

	// Copy giữa các LOB
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/copy-element", nil, copyHandler.HandleCopyElement)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/copy-elements", nil, copyHandler.HandleCopyElements)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/copy-domain-type", nil, copyHandler.HandleCopyDomainType)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/copy-domain-name", nil, copyHandler.HandleCopyDomainName)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/copy-lob", nil, copyHandler.HandleCopyLob)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/copy-lob-env", nil, copyHandler.HandleCopyLobEnv)

	// Mặt đọc
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/lobs", nil, readerHandler.HandleListLobs)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/domains", nil, readerHandler.HandleListDomains)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/summaries", nil, readerHandler.HandleSummaries)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/values", nil, readerHandler.HandleValues)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/detail", nil, readerHandler.HandleDetail)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "GET", "/element-value", nil, readerHandler.HandleElementValue)

	// Import và cập nhật hàng loạt
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/import-csv", nil, importHandler.HandleImportCSV)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/add-env-files", nil, importHandler.HandleAddEnvFiles)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/update-batch", nil, updateHandler.HandleUpdateBatch)

	// Push sang môi trường đích
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/push", nil, pushHandler.HandlePushDomain)
	apirouter.RegisterRouteWithMiddleware(v1, "/configs", "POST", "/push-lob", nil, pushHandler.HandlePushLob)

	return nil
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("failed to create system handler: %w", err)
	}
	router.Get("/system/health", systemHandler.HandleHealth)
	return nil
}
