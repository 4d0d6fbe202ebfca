// Package configops cung cấp các thao tác nghiệp vụ trên cây cấu hình:
// insert/update/delete domain, CRUD element, sao chép giữa các LOB, đọc tổng hợp,
// thực thi batch update và import CSV. Tất cả xây trên Engine của configtree.
package configops

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// OperationService thao tác domain-level trên cây cấu hình.
// Đây là lớp mà merge orchestrator gọi khi áp dụng từng change request.
type OperationService struct {
	engine *configtree.Engine
	log    *logrus.Logger
}

// NewOperationService tạo service trên engine đã có
func NewOperationService(engine *configtree.Engine) *OperationService {
	return &OperationService{
		engine: engine,
		log:    logger.GetTransformLogger(),
	}
}

// Engine trả về engine bên dưới
func (s *OperationService) Engine() *configtree.Engine {
	return s.engine
}

// Exists kiểm tra domain đã tồn tại trên cây chưa
func (s *OperationService) Exists(lob, domainName, domainType string) bool {
	return s.engine.Exists(lob, domainName, domainType)
}

// InsertConfig ghi một domain MỚI. Domain đã tồn tại là no-op: chỉ log conflict,
// không ghi đè và không trả lỗi (hành vi của batch merge — INSERT trùng không
// được phá baseline đang chạy).
func (s *OperationService) InsertConfig(config *configtree.DomainConfig) error {
	if s.engine.Exists(config.Lob, config.DomainName, config.DomainType) {
		s.log.WithFields(logrus.Fields{
			"lob":        config.Lob,
			"domainName": config.DomainName,
			"domainType": config.DomainType,
		}).Warn("⚠️ [CONFIG] Config đã tồn tại, bỏ qua insert")
		return nil
	}
	return s.engine.WriteConfig(config)
}

// UpdateConfig thay thế toàn bộ một domain: xóa thư mục cũ (nếu có) rồi ghi lại
// trong cùng critical section của domain lock.
func (s *OperationService) UpdateConfig(config *configtree.DomainConfig) error {
	return s.engine.ReplaceConfig(config)
}

// DeleteConfig xóa một domain. env rỗng hoặc "ALL" xóa cả thư mục domain;
// env cụ thể chỉ xóa file của env đó trên từng element, meta giữ nguyên.
//
// Returns:
//   - error: NotFound nếu domain không tồn tại
func (s *OperationService) DeleteConfig(lob, domainName, domainType, env string) error {
	if env == "" || strings.EqualFold(env, configtree.EnvAll) {
		return s.engine.DeleteDomain(lob, domainName, domainType)
	}
	return s.engine.DeleteEnvFiles(lob, domainName, domainType, env)
}

// WriteConfig ghi toàn bộ một DomainConfig xuống cây (element files rồi meta)
func (s *OperationService) WriteConfig(config *configtree.DomainConfig) error {
	return s.engine.WriteConfig(config)
}

// Apply thực thi một change request theo Action của nó.
//
// Returns:
//   - error: ValidationFailure với action lạ; lỗi của thao tác tương ứng
func (s *OperationService) Apply(config *configtree.DomainConfig) error {
	switch config.Action {
	case configtree.ActionInsert:
		return s.InsertConfig(config)
	case configtree.ActionUpdate:
		return s.UpdateConfig(config)
	case configtree.ActionDelete:
		return s.DeleteConfig(config.Lob, config.DomainName, config.DomainType, config.Env)
	}
	return common.NewValidationError("Action không được hỗ trợ: " + string(config.Action))
}
