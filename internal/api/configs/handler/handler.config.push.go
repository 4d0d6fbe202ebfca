package confighdl

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	configdto "github.com/siddharth-2510/cofman/internal/api/configs/dto"
	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
	"github.com/siddharth-2510/cofman/internal/push"
)

// ConfigPushHandler xử lý đẩy cấu hình đã tái tạo sang môi trường đích
type ConfigPushHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	pushSvc *push.Service
}

// NewConfigPushHandler tạo mới ConfigPushHandler. Push client được dựng từ
// cấu hình server; thiếu cấu hình push không phải là lỗi — client ở trạng
// thái disabled và request push sẽ bị từ chối khi gọi.
func NewConfigPushHandler() (*ConfigPushHandler, error) {
	if global.ConfigEngine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}
	cfg := global.ServerConfig
	if cfg == nil {
		return nil, fmt.Errorf("server config chưa được khởi tạo")
	}

	client, err := push.NewClient(
		cfg.PushLoginID,
		cfg.PushPassword,
		cfg.PushPublicKeyPEM,
		cfg.PushEnvURLs,
		time.Duration(cfg.PushTimeout)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create push client: %w", err)
	}

	return &ConfigPushHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		pushSvc:     push.NewService(global.ConfigEngine, client),
	}, nil
}

// HandlePushDomain tái tạo một domain cho môi trường đích rồi đẩy sang
// endpoint metadata của môi trường đó (signin lấy token trước khi đẩy)
func (h *ConfigPushHandler) HandlePushDomain(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.PushDomainInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.pushSvc.PushDomain(c.Context(), input.Lob, input.DomainName, input.DomainType, input.Env)
		if err == nil {
			logger.LogConfigChange("push", input.Lob, input.DomainName, input.DomainType, c, map[string]interface{}{
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

// HandlePushLob đẩy toàn bộ domain của một LOB sang môi trường đích.
// Kết quả là map "domainName:domainType" -> thành công/thất bại; signin
// chỉ thực hiện một lần cho cả đợt.
func (h *ConfigPushHandler) HandlePushLob(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.PushLobInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		results, err := h.pushSvc.PushLob(c.Context(), input.Lob, input.Env)
		if err == nil {
			logger.LogConfigChange("push_lob", input.Lob, "", "", c, map[string]interface{}{
				"env":     input.Env,
				"domains": len(results),
			})
		}
		h.HandleResponse(c, results, err)
		return nil
	})
}
