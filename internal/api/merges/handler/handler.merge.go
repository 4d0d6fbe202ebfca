// Package mergehdl xử lý HTTP request cho domain merges.
// CRUD chuẩn đi qua base handler; hai action vòng đời (approve, apply)
// là route riêng.
// File: handler.merge.go
package mergehdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "github.com/siddharth-2510/cofman/internal/api/base/handler"
	mergedto "github.com/siddharth-2510/cofman/internal/api/merges/dto"
	"github.com/siddharth-2510/cofman/internal/api/merges/models"
	mergesvc "github.com/siddharth-2510/cofman/internal/api/merges/service"
	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// MergeHandler xử lý các route cho merge request
type MergeHandler struct {
	*basehdl.BaseHandler[models.Merge, mergedto.MergeCreateInput, mergedto.MergeUpdateInput]
	MergeService *mergesvc.MergeService
}

// NewMergeHandler tạo mới MergeHandler
func NewMergeHandler() (*MergeHandler, error) {
	service, err := mergesvc.NewMergeService()
	if err != nil {
		return nil, fmt.Errorf("failed to create merge service: %w", err)
	}
	hdl := &MergeHandler{MergeService: service}
	hdl.BaseHandler = basehdl.NewBaseHandler[models.Merge, mergedto.MergeCreateInput, mergedto.MergeUpdateInput](service.BaseServiceMongoImpl)
	return hdl, nil
}

// InsertOne tạo merge request mới. Đi qua service.Create thay vì base CRUD
// để state mặc định và thông báo phê duyệt được xử lý một chỗ.
func (h *MergeHandler) InsertOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input mergedto.MergeCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.TransformCreateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Không chuyển được dữ liệu merge request: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		inserted, err := h.MergeService.Create(c.Context(), *model)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogMergeAction("create", inserted.ID.Hex(), c, map[string]interface{}{
			"fromBranch": inserted.FromBranch,
			"toBranch":   inserted.ToBranch,
			"requester":  inserted.Requester,
			"entries":    len(inserted.DomainConfigs),
		})
		h.HandleResponse(c, inserted, nil)
		return nil
	})
}

// UpdateById chỉ cho sửa merge request còn ở trạng thái PENDING,
// sau đó ủy quyền cho base handler xử lý phần update
func (h *MergeHandler) UpdateById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseMergeID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.MergeService.EnsurePending(c.Context(), id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		return h.BaseHandler.UpdateById(c)
	})
}

// HandleApprove duyệt một merge request: POST /merges/approve/:id
// Body: {"merger": "tên người duyệt"}
func (h *MergeHandler) HandleApprove(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseMergeID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input mergedto.MergeApproveInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		approved, err := h.MergeService.Approve(c.Context(), id, input.Merger)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogMergeAction("approve", approved.ID.Hex(), c, map[string]interface{}{
			"merger": input.Merger,
		})
		h.HandleResponse(c, approved, nil)
		return nil
	})
}

// HandleApply áp dụng batch của một merge request đã duyệt lên cây cấu hình:
// POST /merges/apply/:id
func (h *MergeHandler) HandleApply(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseMergeID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		applied, err := h.MergeService.Apply(c.Context(), id)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		details := map[string]interface{}{"state": string(applied.State)}
		if applied.Response != nil {
			details["applied"] = applied.Response.AppliedCount
			details["errors"] = len(applied.Response.Errors)
		}
		logger.LogMergeAction("apply", applied.ID.Hex(), c, details)
		h.HandleResponse(c, applied, nil)
		return nil
	})
}

// parseMergeID lấy và kiểm tra ObjectID từ URL params
func (h *MergeHandler) parseMergeID(c fiber.Ctx) (primitive.ObjectID, error) {
	idStr := h.GetIDFromContext(c)
	if idStr == "" {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationInput,
			"ID không được để trống trong URL params",
			common.StatusBadRequest,
			nil,
		)
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", idStr),
			common.StatusBadRequest,
			err,
		)
	}
	return id, nil
}
