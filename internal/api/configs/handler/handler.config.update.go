package confighdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	configdto "github.com/siddharth-2510/cofman/internal/api/configs/dto"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
	"github.com/siddharth-2510/cofman/internal/utility"
)

// ConfigUpdateHandler xử lý cập nhật hàng loạt theo cặp danh sách cũ/mới
type ConfigUpdateHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	update *configops.UpdateService
}

// NewConfigUpdateHandler tạo mới ConfigUpdateHandler
func NewConfigUpdateHandler() (*ConfigUpdateHandler, error) {
	if global.ConfigEngine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}
	return &ConfigUpdateHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		update:      configops.NewUpdateService(global.ConfigEngine),
	}, nil
}

// HandleUpdateBatch nhận trạng thái trước/sau của một nhóm cấu hình và áp
// từng khác biệt lên cây (best-effort, lỗi từng mục nằm trong report)
func (h *ConfigUpdateHandler) HandleUpdateBatch(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.UpdateBatchInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		oldConfigs, err := normalizeConfigs(input.OldConfigs)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		newConfigs, err := normalizeConfigs(input.NewConfigs)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		report := h.update.Execute(oldConfigs, newConfigs)
		logger.LogAction("config_update_batch", c, map[string]interface{}{
			"processed": report.Processed,
			"successes": len(report.Successes),
			"errors":    len(report.Errors),
		})
		h.HandleResponse(c, report, nil)
		return nil
	})
}

// normalizeConfigs chuẩn hóa giá trị element về JSON thuần (body được parse
// với UseNumber nên số đang ở dạng json.Number) và chuyển sang slice con trỏ
// cho update service
func normalizeConfigs(configs []configtree.DomainConfig) ([]*configtree.DomainConfig, error) {
	out := make([]*configtree.DomainConfig, 0, len(configs))
	for i := range configs {
		cfg := configs[i]
		for j := range cfg.Elements {
			value, err := utility.NormalizeJSON(cfg.Elements[j].Value)
			if err != nil {
				return nil, fmt.Errorf("cấu hình %s/%s element %s: %w",
					cfg.DomainName, cfg.DomainType, cfg.Elements[j].Name, err)
			}
			cfg.Elements[j].Value = value
		}
		out = append(out, &cfg)
	}
	return out, nil
}
