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

// ConfigElementHandler xử lý CRUD ở mức element của cây cấu hình
type ConfigElementHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	elements *configops.ElementService
	ops      *configops.OperationService
}

// NewConfigElementHandler tạo mới ConfigElementHandler
func NewConfigElementHandler() (*ConfigElementHandler, error) {
	if global.ConfigEngine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}
	return &ConfigElementHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		elements:    configops.NewElementService(global.ConfigEngine),
		ops:         configops.NewOperationService(global.ConfigEngine),
	}, nil
}

// HandleInsertElement thêm một element mới vào domain, tên do hệ thống
// phân loại từ giá trị (object một key lấy tên key, object nhiều key sinh
// một element mỗi key, giá trị lẻ rơi vào item_{n})
func (h *ConfigElementHandler) HandleInsertElement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.ElementInsertInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		value, err := utility.NormalizeJSON(input.Value)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		inserted, err := h.elements.InsertElement(input.Lob, input.DomainName, input.DomainType, value, input.Env)
		if err == nil {
			logger.LogConfigChange("element_insert", input.Lob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"env":      input.Env,
				"elements": len(inserted),
			})
		}
		h.HandleResponse(c, inserted, err)
		return nil
	})
}

// HandleInsertElementWithName thêm element với tên do caller chỉ định
// (giá trị nhiều key bị từ chối vì không gán được một tên cho nhiều element)
func (h *ConfigElementHandler) HandleInsertElementWithName(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.ElementInsertWithNameInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		value, err := utility.NormalizeJSON(input.Value)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		inserted, err := h.elements.InsertElementWithName(input.Lob, input.DomainName, input.DomainType, input.ElementName, value, input.Env)
		if err == nil {
			logger.LogConfigChange("element_insert", input.Lob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"env":         input.Env,
				"elementName": input.ElementName,
			})
		}
		h.HandleResponse(c, inserted, err)
		return nil
	})
}

// HandleUpdateElement ghi giá trị mới cho một element (pattern được phân
// loại lại khi hình dạng giá trị thay đổi)
func (h *ConfigElementHandler) HandleUpdateElement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.ElementUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		value, err := utility.NormalizeJSON(input.Value)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.elements.UpdateElement(input.Lob, input.DomainName, input.DomainType, input.ElementName, value, input.Env)
		if err == nil {
			logger.LogConfigChange("element_update", input.Lob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"env":         input.Env,
				"elementName": input.ElementName,
			})
		}
		h.HandleResponse(c, fiber.Map{
			"elementName": input.ElementName,
			"env":         input.Env,
		}, err)
		return nil
	})
}

// HandleDeleteElement xóa một element khỏi domain (meta cập nhật trước,
// thư mục element xóa sau)
func (h *ConfigElementHandler) HandleDeleteElement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.ElementDeleteInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.elements.DeleteElement(input.Lob, input.DomainName, input.DomainType, input.ElementName)
		if err == nil {
			logger.LogConfigChange("element_delete", input.Lob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"elementName": input.ElementName,
			})
		}
		h.HandleResponse(c, fiber.Map{
			"elementName": input.ElementName,
		}, err)
		return nil
	})
}

// HandleDeleteDomain xóa một domain: env rỗng hoặc "ALL" xóa cả thư mục
// domain, env cụ thể chỉ xóa các file {env}.json của từng element
func (h *ConfigElementHandler) HandleDeleteDomain(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.DomainDeleteInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.ops.DeleteConfig(input.Lob, input.DomainName, input.DomainType, input.Env)
		if err == nil {
			logger.LogConfigChange("delete", input.Lob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"env": input.Env,
			})
		}
		h.HandleResponse(c, fiber.Map{
			"domainName": input.DomainName,
			"domainType": input.DomainType,
			"env":        input.Env,
		}, err)
		return nil
	})
}
