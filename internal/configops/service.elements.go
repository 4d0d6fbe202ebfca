package configops

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// ElementService CRUD ở mức element: thêm/sửa/xóa từng phần tử của một domain
// mà không ghi lại cả domain. Meta được read-modify-write dưới domain lock
// của engine để không giẫm lên các thao tác domain-level.
type ElementService struct {
	engine *configtree.Engine
	log    *logrus.Logger
}

// NewElementService tạo service trên engine đã có
func NewElementService(engine *configtree.Engine) *ElementService {
	return &ElementService{
		engine: engine,
		log:    logger.GetTransformLogger(),
	}
}

// InsertElement phân loại value và thêm vào cuối domain. Domain chưa tồn tại
// sẽ được tạo mới với meta chỉ chứa element này. Tên element lấy từ phân loại
// (sanitize + chống trùng với meta hiện có); value dạng multi-key explode sinh
// nhiều element cùng một group mới.
//
// Parameters:
//   - lob, domainName, domainType: định danh domain
//   - value: giá trị JSON của element mới
//   - env: môi trường đích ("ALL" ghi uat/demo/prod)
//
// Returns:
//   - []configtree.ConfigElement: các element đã tạo (nhiều hơn 1 chỉ khi explode)
//   - error: ValidationFailure (env), lỗi I/O / dynamic value
func (s *ElementService) InsertElement(lob, domainName, domainType string, value any, env string) ([]configtree.ConfigElement, error) {
	return s.insert(lob, domainName, domainType, "", value, env)
}

// InsertElementWithName như InsertElement nhưng tên do caller chỉ định
// (vẫn sanitize + chống trùng). Value dạng explode bị từ chối vì một tên
// không thể gán cho nhiều element.
func (s *ElementService) InsertElementWithName(lob, domainName, domainType, name string, value any, env string) ([]configtree.ConfigElement, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidationError("Tên element không được để trống")
	}
	return s.insert(lob, domainName, domainType, name, value, env)
}

func (s *ElementService) insert(lob, domainName, domainType, explicitName string, value any, env string) ([]configtree.ConfigElement, error) {
	if !configtree.IsSupportedEnv(env) {
		return nil, common.NewValidationError("Unsupported environment: " + env)
	}
	if lob == "" {
		lob = configtree.DefaultLob
	}
	domainName = configtree.Sanitize(domainName)
	domainType = configtree.Sanitize(domainType)

	unlock := s.engine.LockDomain(lob, domainName, domainType)
	defer unlock()

	base := s.engine.Path().WithLob(lob).WithDomain(domainName, domainType)
	store := s.engine.Store()

	meta, err := s.readOrCreateMeta(base, domainName, domainType)
	if err != nil {
		return nil, err
	}

	classified := configtree.Classify(value, countFallbackElements(meta), nextGroupID(meta))
	if explicitName != "" && len(classified) > 1 {
		return nil, common.NewOperationError(
			"Unsupported pattern transition: value tách thành nhiều element, không thể gán một tên", nil)
	}

	created := make([]configtree.ConfigElement, 0, len(classified))
	for _, c := range classified {
		proposed := c.Name
		if explicitName != "" {
			proposed = explicitName
		}
		name := uniqueNameInMeta(meta, configtree.Sanitize(proposed))

		for _, targetEnv := range configtree.EnvsToWrite(env) {
			resolved, err := s.engine.Resolver().Resolve(c.Value, targetEnv)
			if err != nil {
				return nil, err
			}
			if err := store.WriteJSON(base.WithElement(name).WithEnv(targetEnv).EnvFile(), resolved); err != nil {
				return nil, err
			}
		}

		element := configtree.ConfigElement{Name: name, Pattern: c.Pattern, Group: c.Group, Value: c.Value}
		meta.AddElement(element.ToMetaElement())
		created = append(created, element)
	}

	if err := store.WriteMeta(base.MetaPath(), meta); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"lob":        lob,
		"domainName": domainName,
		"domainType": domainType,
		"elements":   len(created),
		"env":        env,
	}).Info("🌲 [ELEMENT] Đã thêm element")
	return created, nil
}

// UpdateElement ghi giá trị mới cho một element đã có. Nếu phân loại của giá trị
// mới khác pattern cũ, pattern trong meta được cập nhật theo. Hai chuyển đổi
// không hỗ trợ: giá trị mới tách thành nhiều element (explode), và single-key
// object có key khác tên element (decode sẽ bọc sai key).
//
// Returns:
//   - error: NotFound (domain/element), OperationFailure (chuyển pattern không hỗ trợ, I/O)
func (s *ElementService) UpdateElement(lob, domainName, domainType, elementName string, value any, env string) error {
	if !configtree.IsSupportedEnv(env) {
		return common.NewValidationError("Unsupported environment: " + env)
	}

	unlock := s.engine.LockDomain(lob, domainName, domainType)
	defer unlock()

	base := s.engine.Path().WithLob(lob).WithDomain(domainName, domainType)
	store := s.engine.Store()

	meta, err := store.ReadMeta(base.MetaPath())
	if err != nil {
		return err
	}
	el := meta.FindElement(elementName)
	if el == nil {
		return common.NewNotFoundError("Element not found: " + elementName)
	}

	classified := configtree.Classify(value, countFallbackElements(meta), el.Group)
	if len(classified) > 1 {
		return common.NewOperationError(
			fmt.Sprintf("Unsupported pattern transition: giá trị mới của %s tách thành nhiều element", elementName), nil)
	}
	c := classified[0]
	if c.Pattern == configtree.PatternSingleKeyObject && configtree.Sanitize(c.Name) != elementName {
		return common.NewOperationError(
			fmt.Sprintf("Unsupported pattern transition: single-key %q khác tên element %q", c.Name, elementName), nil)
	}
	// Element thuộc nhóm explode nhận lại giá trị ở dạng đã decode {tên: giá_trị};
	// single-key và explode cùng lưu phần bên trong nên chỉ cần giữ pattern nhóm
	if el.Pattern == configtree.PatternMultiKeyExplode && el.Group != "" && c.Pattern == configtree.PatternSingleKeyObject {
		c.Pattern = configtree.PatternMultiKeyExplode
	}

	for _, targetEnv := range configtree.EnvsToWrite(env) {
		resolved, err := s.engine.Resolver().Resolve(c.Value, targetEnv)
		if err != nil {
			return err
		}
		if err := store.WriteJSON(base.WithElement(elementName).WithEnv(targetEnv).EnvFile(), resolved); err != nil {
			return err
		}
	}

	if el.Pattern != c.Pattern {
		el.Pattern = c.Pattern
		if err := store.WriteMeta(base.MetaPath(), meta); err != nil {
			return err
		}
	}
	return nil
}

// DeleteElement xóa một element: gỡ khỏi meta và xóa thư mục của nó.
//
// Returns:
//   - error: NotFound nếu domain hoặc element không tồn tại
func (s *ElementService) DeleteElement(lob, domainName, domainType, elementName string) error {
	unlock := s.engine.LockDomain(lob, domainName, domainType)
	defer unlock()

	base := s.engine.Path().WithLob(lob).WithDomain(domainName, domainType)
	store := s.engine.Store()

	meta, err := store.ReadMeta(base.MetaPath())
	if err != nil {
		return err
	}
	if !meta.HasElement(elementName) {
		return common.NewNotFoundError("Element not found: " + elementName)
	}

	if err := store.DeleteDirectory(base.WithElement(elementName).ElementDir()); err != nil {
		return err
	}
	meta.RemoveElement(elementName)
	return store.WriteMeta(base.MetaPath(), meta)
}

// DeleteDomainType xóa toàn bộ một domain (tương đương DELETE với env ALL)
func (s *ElementService) DeleteDomainType(lob, domainName, domainType string) error {
	return s.engine.DeleteDomain(lob, domainName, domainType)
}

// readOrCreateMeta đọc meta hiện có hoặc khởi tạo meta rỗng cho domain mới
func (s *ElementService) readOrCreateMeta(base configtree.ConfigPath, domainName, domainType string) (*configtree.MetaFile, error) {
	store := s.engine.Store()
	if !store.FileExists(base.MetaPath()) {
		return configtree.NewMetaFile(domainName, domainType), nil
	}
	return store.ReadMeta(base.MetaPath())
}

// countFallbackElements đếm các element mang tên fallback (item_*) trong meta,
// dùng làm chỉ số bắt đầu khi phân loại element mới
func countFallbackElements(meta *configtree.MetaFile) int {
	count := 0
	for _, el := range meta.Elements {
		if strings.HasPrefix(el.Name, "item_") {
			count++
		}
	}
	return count
}

// uniqueNameInMeta chống trùng tên với meta hiện có bằng hậu tố _1, _2, ...
func uniqueNameInMeta(meta *configtree.MetaFile, base string) string {
	if !meta.HasElement(base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !meta.HasElement(candidate) {
			return candidate
		}
	}
}

// nextGroupID sinh group id chưa được dùng trong meta (tránh dính vào
// run của một group sẵn có khi element mới được append vào cuối)
func nextGroupID(meta *configtree.MetaFile) string {
	used := make(map[string]bool)
	for _, el := range meta.Elements {
		if el.Group != "" {
			used[el.Group] = true
		}
	}
	for n := 0; ; n++ {
		candidate := fmt.Sprintf("group_%d", n)
		if !used[candidate] {
			return candidate
		}
	}
}
