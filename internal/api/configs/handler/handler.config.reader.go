package confighdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	configdto "github.com/siddharth-2510/cofman/internal/api/configs/dto"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/global"
)

// ConfigReaderHandler xử lý mặt đọc của cây cấu hình (không có audit log
// vì không thao tác nào làm thay đổi dữ liệu)
type ConfigReaderHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	reader *configops.ReaderService
}

// NewConfigReaderHandler tạo mới ConfigReaderHandler
func NewConfigReaderHandler() (*ConfigReaderHandler, error) {
	if global.ConfigEngine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}
	return &ConfigReaderHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		reader:      configops.NewReaderService(global.ConfigEngine),
	}, nil
}

// HandleListLobs liệt kê các LOB hiện có trên cây
func (h *ConfigReaderHandler) HandleListLobs(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		lobs, err := h.reader.ListLobs()
		h.HandleResponse(c, lobs, err)
		return nil
	})
}

// HandleListDomains trả về map domainName -> danh sách domainType của một LOB
func (h *ConfigReaderHandler) HandleListDomains(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query configdto.LobQuery
		if err := h.ParseQueryParams(c, &query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		domains, err := h.reader.GetDomainsAndTypes(query.Lob)
		h.HandleResponse(c, domains, err)
		return nil
	})
}

// HandleSummaries liệt kê tóm tắt (tên + số element) mọi domain trong LOB
func (h *ConfigReaderHandler) HandleSummaries(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query configdto.LobQuery
		if err := h.ParseQueryParams(c, &query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		summaries, err := h.reader.Summaries(query.Lob)
		h.HandleResponse(c, summaries, err)
		return nil
	})
}

// HandleValues tái tạo mọi domain của một LOB cho một môi trường —
// đây là payload dạng đẩy hạ nguồn, domain lỗi được bỏ qua (best-effort)
func (h *ConfigReaderHandler) HandleValues(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query configdto.LobEnvQuery
		if err := h.ParseQueryParams(c, &query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		values, err := h.reader.ConfigsByLobAndEnv(query.Lob, query.Env)
		h.HandleResponse(c, values, err)
		return nil
	})
}

// HandleDetail trả về toàn cảnh một domain: meta + giá trị từng element
// theo từng môi trường đang có file trên đĩa
func (h *ConfigReaderHandler) HandleDetail(c fiber.Ctx) error {
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

		detail, err := h.reader.GetDomainDetail(query.Lob, query.DomainName, query.DomainType)
		h.HandleResponse(c, detail, err)
		return nil
	})
}

// HandleElementValue tra giá trị một element với chuỗi fallback: env yêu cầu
// -> env bất kỳ đang có -> LOB default. Giá trị được bọc trong object để
// phân biệt null hợp lệ với không có dữ liệu.
func (h *ConfigReaderHandler) HandleElementValue(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query configdto.ElementValueQuery
		if err := h.ParseQueryParams(c, &query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		value, err := h.reader.GetElementValue(query.Lob, query.DomainName, query.DomainType, query.ElementName, query.Env)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{
			"elementName": query.ElementName,
			"value":       value,
		}, nil)
		return nil
	})
}
