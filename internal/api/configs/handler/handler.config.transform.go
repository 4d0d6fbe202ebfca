// Package confighdl chứa các Fiber handler cho cây cấu hình: transform,
// element CRUD, copy, đọc, import CSV, update hàng loạt và push.
// Mọi handler dùng chung engine toàn cục (global.ConfigEngine).
package confighdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	configdto "github.com/siddharth-2510/cofman/internal/api/configs/dto"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
	"github.com/siddharth-2510/cofman/internal/utility"
)

// ConfigTransformHandler xử lý build/deconstruct/reconstruct của cây cấu hình
type ConfigTransformHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	ops *configops.OperationService
}

// NewConfigTransformHandler tạo mới ConfigTransformHandler
func NewConfigTransformHandler() (*ConfigTransformHandler, error) {
	if global.ConfigEngine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}
	return &ConfigTransformHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		ops:         configops.NewOperationService(global.ConfigEngine),
	}, nil
}

// HandleTransform build thử một JSON array thành DomainConfig (preview,
// không ghi gì xuống đĩa) — dùng để xem trước phân loại pattern/tên element
func (h *ConfigTransformHandler) HandleTransform(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.TransformInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		jsonArray, err := utility.NormalizeJSONArray(input.JSONArray)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		config, err := h.ops.Engine().BuildConfig(input.Lob, input.DomainName, input.DomainType, jsonArray, input.Env)
		h.HandleResponse(c, config, err)
		return nil
	})
}

// HandleDeconstruct build một JSON array và ghi xuống cây file
// (mỗi element một thư mục, mỗi env một file, meta ghi sau cùng)
func (h *ConfigTransformHandler) HandleDeconstruct(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.TransformInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		jsonArray, err := utility.NormalizeJSONArray(input.JSONArray)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		config, err := h.ops.Engine().Deconstruct(input.Lob, input.DomainName, input.DomainType, jsonArray, input.Env)
		if err == nil {
			logger.LogConfigChange("deconstruct", config.Lob, config.DomainName, config.DomainType, c, map[string]interface{}{
				"env":      input.Env,
				"elements": len(config.Elements),
			})
		}
		h.HandleResponse(c, config, err)
		return nil
	})
}

// HandleReconstruct tái tạo JSON array của một domain cho một môi trường
func (h *ConfigTransformHandler) HandleReconstruct(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query configdto.ReconstructQuery
		if err := h.ParseQueryParams(c, &query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.ops.Engine().Reconstruct(query.Lob, query.DomainName, query.DomainType, query.Env)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleReconstructAll tái tạo một domain cho tất cả các môi trường,
// môi trường lỗi trả về entry Success=false thay vì làm hỏng cả danh sách
func (h *ConfigTransformHandler) HandleReconstructAll(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query configdto.DomainQuery
		if err := h.ParseQueryParams(c, &query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		results := h.ops.Engine().ReconstructAll(query.Lob, query.DomainName, query.DomainType)
		h.HandleResponse(c, results, nil)
		return nil
	})
}
