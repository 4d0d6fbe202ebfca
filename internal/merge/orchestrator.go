package merge

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// Report tổng hợp kết quả áp một batch merge
type Report struct {
	Success      bool     `json:"success" bson:"success"`
	AppliedCount int      `json:"appliedCount" bson:"appliedCount"`
	Successes    []string `json:"successes" bson:"successes"`
	Errors       []string `json:"errors" bson:"errors"`
}

// Orchestrator áp một batch DomainConfig lên cây cấu hình theo ba bước:
// sắp thứ tự (LOB default trước để làm baseline, DELETE sau cùng),
// validate toàn bộ batch trước khi chạm đĩa, rồi áp từng mục best-effort —
// mục lỗi được ghi nhận và không chặn các mục còn lại.
type Orchestrator struct {
	ops *configops.OperationService
	log *logrus.Logger
}

// NewOrchestrator tạo orchestrator trên engine đã có
func NewOrchestrator(engine *configtree.Engine) *Orchestrator {
	return &Orchestrator{
		ops: configops.NewOperationService(engine),
		log: logger.GetMergeLogger(),
	}
}

// Apply áp một batch đã duyệt.
//
// Returns:
//   - *Report: số mục áp thành công và lỗi dạng "lob/domainName/domainType: msg"
//   - error: ValidationFailure nếu batch không qua được validate — khi đó
//     chưa có gì được ghi xuống đĩa
func (o *Orchestrator) Apply(batch []*configtree.DomainConfig) (*Report, error) {
	ordered := orderBatch(batch)
	if err := o.Validate(ordered); err != nil {
		return nil, err
	}

	o.log.WithField("entries", len(ordered)).Info("🔀 [MERGE] Bắt đầu áp dụng batch")

	report := &Report{
		Successes: make([]string, 0, len(ordered)),
		Errors:    make([]string, 0),
	}
	for _, cfg := range ordered {
		label := entryLabel(cfg)
		if err := o.ops.Apply(cfg); err != nil {
			report.Errors = append(report.Errors, label+": "+err.Error())
			o.log.WithFields(logrus.Fields{
				"entry": label, "action": string(cfg.Action),
			}).Warn("🔀 [MERGE] Mục thất bại: ", err)
			continue
		}
		report.AppliedCount++
		report.Successes = append(report.Successes, label)
	}
	report.Success = len(report.Errors) == 0

	o.log.WithFields(logrus.Fields{
		"applied": report.AppliedCount,
		"errors":  len(report.Errors),
	}).Info("🔀 [MERGE] Áp dụng batch hoàn tất")
	return report, nil
}

// Validate kiểm tra cả batch trước khi ghi, trả lỗi ở vi phạm đầu tiên:
//   - action phải là INSERT/UPDATE/DELETE
//   - INSERT/UPDATE phải có env hợp lệ, không để trống
//   - mục ngoài LOB default phải có baseline ở LOB default: hoặc đã có trên
//     đĩa, hoặc một mục default cùng domain nằm trong chính batch này
func (o *Orchestrator) Validate(batch []*configtree.DomainConfig) error {
	baselines := make(map[string]bool)
	for _, cfg := range batch {
		if cfg == nil || cfg.Action == configtree.ActionDelete {
			continue
		}
		if entryLob(cfg) == configtree.DefaultLob {
			baselines[domainKey(cfg)] = true
		}
	}

	for _, cfg := range batch {
		if cfg == nil {
			continue
		}
		label := entryLabel(cfg)

		switch cfg.Action {
		case configtree.ActionInsert, configtree.ActionUpdate:
			if cfg.Env == "" {
				return common.NewValidationError(label + ": environment không được để trống")
			}
			if !configtree.IsSupportedEnv(cfg.Env) {
				return common.NewValidationError(label + ": Unsupported environment: " + cfg.Env)
			}
		case configtree.ActionDelete:
			if cfg.Env != "" && !configtree.IsSupportedEnv(cfg.Env) {
				return common.NewValidationError(label + ": Unsupported environment: " + cfg.Env)
			}
			continue
		default:
			return common.NewValidationError(label + ": action không được hỗ trợ: " + string(cfg.Action))
		}

		if entryLob(cfg) != configtree.DefaultLob && !baselines[domainKey(cfg)] &&
			!o.ops.Exists(configtree.DefaultLob, configtree.Sanitize(cfg.DomainName), configtree.Sanitize(cfg.DomainType)) {
			return common.NewValidationError(label + ": thiếu baseline ở LOB default")
		}
	}
	return nil
}

// orderBatch lọc mục nil và sắp thứ tự áp dụng an toàn: baseline default
// trước, các LOB khác giữa, DELETE sau cùng. Sắp ổn định để các mục cùng
// hạng giữ thứ tự người dùng gửi lên.
func orderBatch(batch []*configtree.DomainConfig) []*configtree.DomainConfig {
	ordered := make([]*configtree.DomainConfig, 0, len(batch))
	for _, cfg := range batch {
		if cfg != nil {
			ordered = append(ordered, cfg)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return entryRank(ordered[i]) < entryRank(ordered[j])
	})
	return ordered
}

func entryRank(c *configtree.DomainConfig) int {
	switch {
	case c.Action == configtree.ActionDelete:
		return 2
	case entryLob(c) == configtree.DefaultLob:
		return 0
	default:
		return 1
	}
}

func entryLob(c *configtree.DomainConfig) string {
	if c.Lob == "" {
		return configtree.DefaultLob
	}
	return c.Lob
}

func entryLabel(c *configtree.DomainConfig) string {
	return fmt.Sprintf("%s/%s/%s", entryLob(c), configtree.Sanitize(c.DomainName), configtree.Sanitize(c.DomainType))
}

func domainKey(c *configtree.DomainConfig) string {
	return configtree.Sanitize(c.DomainName) + "/" + configtree.Sanitize(c.DomainType)
}
