package confighdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	configdto "github.com/siddharth-2510/cofman/internal/api/configs/dto"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// ConfigCopyHandler xử lý các thao tác sao chép giữa hai LOB
type ConfigCopyHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	copy *configops.CopyService
}

// NewConfigCopyHandler tạo mới ConfigCopyHandler
func NewConfigCopyHandler() (*ConfigCopyHandler, error) {
	if global.ConfigEngine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}
	return &ConfigCopyHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		copy:        configops.NewCopyService(global.ConfigEngine),
	}, nil
}

// HandleCopyElement sao chép một element sang LOB đích (tên được chống
// trùng bằng hậu tố _1, _2... nếu LOB đích đã có element cùng tên)
func (h *ConfigCopyHandler) HandleCopyElement(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.CopyElementInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		newName, err := h.copy.CopyElement(input.FromLob, input.ToLob, input.DomainName, input.DomainType, input.ElementName)
		if err == nil {
			logger.LogConfigChange("copy_element", input.ToLob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"fromLob":     input.FromLob,
				"elementName": input.ElementName,
				"newName":     newName,
			})
		}
		h.HandleResponse(c, fiber.Map{"newName": newName}, err)
		return nil
	})
}

// HandleCopyElements sao chép một danh sách element sang LOB đích
func (h *ConfigCopyHandler) HandleCopyElements(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.CopyElementsInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		newNames, err := h.copy.CopyElements(input.FromLob, input.ToLob, input.DomainName, input.DomainType, input.ElementNames)
		if err == nil {
			logger.LogConfigChange("copy_elements", input.ToLob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"fromLob":  input.FromLob,
				"elements": len(newNames),
			})
		}
		h.HandleResponse(c, fiber.Map{"newNames": newNames}, err)
		return nil
	})
}

// HandleCopyDomainType sao chép nguyên một domain sang LOB đích (ghi đè)
func (h *ConfigCopyHandler) HandleCopyDomainType(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.CopyDomainTypeInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.copy.CopyDomainType(input.FromLob, input.ToLob, input.DomainName, input.DomainType)
		if err == nil {
			logger.LogConfigChange("copy_domain_type", input.ToLob, input.DomainName, input.DomainType, c, map[string]interface{}{
				"fromLob": input.FromLob,
			})
		}
		h.HandleResponse(c, fiber.Map{
			"fromLob":    input.FromLob,
			"toLob":      input.ToLob,
			"domainName": input.DomainName,
			"domainType": input.DomainType,
		}, err)
		return nil
	})
}

// HandleCopyDomainName sao chép mọi domain type dưới một domain name
func (h *ConfigCopyHandler) HandleCopyDomainName(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.CopyDomainNameInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.copy.CopyDomainName(input.FromLob, input.ToLob, input.DomainName)
		if err == nil {
			logger.LogConfigChange("copy_domain_name", input.ToLob, input.DomainName, "", c, map[string]interface{}{
				"fromLob": input.FromLob,
			})
		}
		h.HandleResponse(c, fiber.Map{
			"fromLob":    input.FromLob,
			"toLob":      input.ToLob,
			"domainName": input.DomainName,
		}, err)
		return nil
	})
}

// HandleCopyLob sao chép toàn bộ cây cấu hình của một LOB
func (h *ConfigCopyHandler) HandleCopyLob(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.CopyLobInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.copy.CopyLob(input.FromLob, input.ToLob)
		if err == nil {
			logger.LogConfigChange("copy_lob", input.ToLob, "", "", c, map[string]interface{}{
				"fromLob": input.FromLob,
			})
		}
		h.HandleResponse(c, fiber.Map{
			"fromLob": input.FromLob,
			"toLob":   input.ToLob,
		}, err)
		return nil
	})
}

// HandleCopyLobEnv sao chép một LOB nhưng chỉ các file của một môi trường
// ("ALL" tương đương sao chép đủ mọi env)
func (h *ConfigCopyHandler) HandleCopyLobEnv(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.CopyLobEnvInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.copy.CopyLobEnv(input.FromLob, input.ToLob, input.Env)
		if err == nil {
			logger.LogConfigChange("copy_lob_env", input.ToLob, "", "", c, map[string]interface{}{
				"fromLob": input.FromLob,
				"env":     input.Env,
			})
		}
		h.HandleResponse(c, fiber.Map{
			"fromLob": input.FromLob,
			"toLob":   input.ToLob,
			"env":     input.Env,
		}, err)
		return nil
	})
}
