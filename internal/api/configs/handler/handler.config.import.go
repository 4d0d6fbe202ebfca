package confighdl

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	configdto "github.com/siddharth-2510/cofman/internal/api/configs/dto"
	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
	"github.com/siddharth-2510/cofman/internal/utility"
)

// ConfigImportHandler xử lý nạp cấu hình hàng loạt từ file CSV
type ConfigImportHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	importSvc *configops.ImportService
}

// NewConfigImportHandler tạo mới ConfigImportHandler
func NewConfigImportHandler() (*ConfigImportHandler, error) {
	if global.ConfigEngine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}
	return &ConfigImportHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		importSvc:   configops.NewImportService(global.ConfigEngine),
	}, nil
}

// HandleImportCSV nhận file CSV upload (multipart field "file") và nạp vào
// cây. Tên file phải có dạng {lob}_{env}.csv; lỗi từng dòng nằm trong report,
// không làm fail cả request.
func (h *ConfigImportHandler) HandleImportCSV(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu file upload (multipart field 'file')",
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		file, err := fileHeader.Open()
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeConfigOperation,
				fmt.Sprintf("Không đọc được file upload: %v", err),
				common.StatusInternalServerError,
				err,
			))
			return nil
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeConfigOperation,
				fmt.Sprintf("Không đọc được file upload: %v", err),
				common.StatusInternalServerError,
				err,
			))
			return nil
		}

		report, err := h.importSvc.ImportCSV(fileHeader.Filename, content)
		if err == nil {
			logger.LogConfigChange("import", report.Lob, "", "", c, map[string]interface{}{
				"file":    fileHeader.Filename,
				"env":     report.Env,
				"rows":    report.RowsProcessed,
				"created": report.Created,
				"updated": report.Updated,
				"errors":  len(report.Errors),
			})
		}
		h.HandleResponse(c, report, err)
		return nil
	})
}

// HandleAddEnvFiles bổ sung file env còn thiếu cho một domain đã có trên
// cây — dữ liệu hiện hữu không bị ghi đè, chỉ file thiếu được tạo
func (h *ConfigImportHandler) HandleAddEnvFiles(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input configdto.AddEnvFilesInput
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

		err = h.importSvc.AddEnvFiles(input.Lob, input.DomainName, input.DomainType, jsonArray, input.Env)
		if err == nil {
			logger.LogConfigChange("add_env_files", input.Lob, input.DomainName, input.DomainType, c, map[string]interface{}{
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
