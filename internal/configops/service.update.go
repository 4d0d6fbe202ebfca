package configops

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// UpdateReport tổng hợp kết quả một phiên cập nhật hàng loạt
type UpdateReport struct {
	Processed int      `json:"processed" bson:"processed"`
	Successes []string `json:"successes" bson:"successes"`
	Errors    []string `json:"errors" bson:"errors"`
}

// HasErrors báo có ít nhất một thao tác thất bại
func (r *UpdateReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// UpdateService thực thi cập nhật hàng loạt: nhận cặp danh sách cấu hình
// cũ/mới (trạng thái trước và sau khi người dùng sửa trên UI) và đưa cây
// trên đĩa về đúng trạng thái mới bằng diff từng element.
type UpdateService struct {
	engine   *configtree.Engine
	ops      *OperationService
	elements *ElementService
	log      *logrus.Logger
}

// NewUpdateService tạo service cập nhật trên engine đã có
func NewUpdateService(engine *configtree.Engine) *UpdateService {
	return &UpdateService{
		engine:   engine,
		ops:      NewOperationService(engine),
		elements: NewElementService(engine),
		log:      logger.GetTransformLogger(),
	}
}

// Execute diff hai danh sách cấu hình và áp từng khác biệt lên đĩa (best-effort,
// lỗi của một mục không chặn các mục sau):
//   - cấu hình mới không có bản cũ đối ứng: insert nguyên domain
//   - cấu hình có cả hai bản: diff element theo tên — element chung được ghi đè
//     khi giá trị đổi, element chỉ có ở bản mới được thêm, element chỉ có ở
//     bản cũ bị xóa
//   - cấu hình chỉ có ở danh sách cũ: bỏ qua (danh sách cũ là ngữ cảnh nền,
//     không phải lệnh xóa)
//
// Returns:
//   - *UpdateReport: số mục xử lý, thao tác thành công và lỗi dạng "lob/dn/dt/element: msg"
func (s *UpdateService) Execute(oldConfigs, newConfigs []*configtree.DomainConfig) *UpdateReport {
	report := &UpdateReport{
		Successes: make([]string, 0),
		Errors:    make([]string, 0),
	}

	oldByKey := make(map[string]*configtree.DomainConfig, len(oldConfigs))
	for _, cfg := range oldConfigs {
		if cfg == nil {
			continue
		}
		oldByKey[configKey(cfg)] = cfg
	}

	for _, newCfg := range newConfigs {
		if newCfg == nil {
			continue
		}
		report.Processed++

		oldCfg, hasOld := oldByKey[configKey(newCfg)]
		if !hasOld {
			if err := s.ops.InsertConfig(newCfg); err != nil {
				report.Errors = append(report.Errors, configLabel(newCfg)+": "+err.Error())
			} else {
				report.Successes = append(report.Successes, configLabel(newCfg))
			}
			continue
		}
		s.diffElements(oldCfg, newCfg, report)
	}

	s.log.WithFields(logrus.Fields{
		"processed": report.Processed,
		"successes": len(report.Successes),
		"errors":    len(report.Errors),
	}).Info("🌲 [UPDATE] Cập nhật hàng loạt hoàn tất")
	return report
}

// diffElements so khớp element hai bản theo tên và áp từng khác biệt
func (s *UpdateService) diffElements(oldCfg, newCfg *configtree.DomainConfig, report *UpdateReport) {
	lob := newCfg.Lob
	if lob == "" {
		lob = configtree.DefaultLob
	}
	domainName := configtree.Sanitize(newCfg.DomainName)
	domainType := configtree.Sanitize(newCfg.DomainType)

	oldByName := make(map[string]configtree.ConfigElement, len(oldCfg.Elements))
	for _, el := range oldCfg.Elements {
		oldByName[el.Name] = el
	}
	newNames := make(map[string]bool, len(newCfg.Elements))

	for _, el := range newCfg.Elements {
		newNames[el.Name] = true
		label := configLabel(newCfg) + "/" + el.Name

		oldEl, existed := oldByName[el.Name]
		if existed && oldEl.Pattern == el.Pattern && reflect.DeepEqual(oldEl.Value, el.Value) {
			continue // không đổi, không ghi lại
		}

		// element service phân loại lại từ giá trị gốc, nên truyền dạng đã decode
		decoded := el.Pattern.Decode(el.Name, el.Value)
		var err error
		if existed {
			err = s.elements.UpdateElement(lob, domainName, domainType, el.Name, decoded, newCfg.Env)
		} else {
			_, err = s.elements.InsertElementWithName(lob, domainName, domainType, el.Name, decoded, newCfg.Env)
		}
		if err != nil {
			report.Errors = append(report.Errors, label+": "+err.Error())
			continue
		}
		report.Successes = append(report.Successes, label)
	}

	for _, el := range oldCfg.Elements {
		if newNames[el.Name] {
			continue
		}
		label := configLabel(newCfg) + "/" + el.Name
		if err := s.elements.DeleteElement(lob, domainName, domainType, el.Name); err != nil {
			report.Errors = append(report.Errors, label+": "+err.Error())
			continue
		}
		report.Successes = append(report.Successes, label)
	}
}

// configKey định danh một mục cập nhật để ghép cặp cũ/mới
func configKey(c *configtree.DomainConfig) string {
	lob := c.Lob
	if lob == "" {
		lob = configtree.DefaultLob
	}
	return fmt.Sprintf("%s|%s|%s|%s",
		configtree.Sanitize(c.DomainName), configtree.Sanitize(c.DomainType), lob, strings.ToLower(c.Env))
}

// configLabel là tiền tố nhận diện mục trong report
func configLabel(c *configtree.DomainConfig) string {
	lob := c.Lob
	if lob == "" {
		lob = configtree.DefaultLob
	}
	return fmt.Sprintf("%s/%s/%s", lob, configtree.Sanitize(c.DomainName), configtree.Sanitize(c.DomainType))
}
