package configops

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// dynamicValuesDir là thư mục bảng biến môi trường nằm trong basePath,
// không phải một LOB nên phải loại khỏi các thao tác liệt kê
const dynamicValuesDir = "dynamicValues"

// ConfigSummary tóm tắt một domain trong LOB (dùng cho màn hình liệt kê)
type ConfigSummary struct {
	DomainName   string `json:"domainName" bson:"domainName"`
	DomainType   string `json:"domainType" bson:"domainType"`
	ElementCount int    `json:"elementCount" bson:"elementCount"`
}

// DomainValues là payload đẩy sang hệ thống hạ nguồn: mảng JSON đã
// tái tạo của một domain trong một môi trường
type DomainValues struct {
	DomainName   string `json:"domainName" bson:"domainName"`
	DomainType   string `json:"domainType" bson:"domainType"`
	DomainValues []any  `json:"domainValues" bson:"domainValues"`
}

// ElementDetail là chi tiết một element kèm giá trị theo từng môi trường
// đang có file trên đĩa
type ElementDetail struct {
	Name    string                    `json:"name" bson:"name"`
	Pattern configtree.ElementPattern `json:"pattern" bson:"pattern"`
	Group   string                    `json:"group,omitempty" bson:"group,omitempty"`
	Values  map[string]any            `json:"values" bson:"values"`
}

// DomainDetail là toàn cảnh một domain: meta + giá trị mọi element mọi env
type DomainDetail struct {
	Lob        string          `json:"lob" bson:"lob"`
	DomainName string          `json:"domainName" bson:"domainName"`
	DomainType string          `json:"domainType" bson:"domainType"`
	Elements   []ElementDetail `json:"elements" bson:"elements"`
}

// ReaderService là mặt đọc của cây cấu hình: liệt kê LOB/domain,
// tóm tắt, chi tiết và tra giá trị element có fallback về LOB default.
type ReaderService struct {
	engine *configtree.Engine
	log    *logrus.Logger
}

// NewReaderService tạo service đọc trên engine đã có
func NewReaderService(engine *configtree.Engine) *ReaderService {
	return &ReaderService{
		engine: engine,
		log:    logger.GetTransformLogger(),
	}
}

// ListLobs liệt kê các LOB hiện có (tên thư mục cấp một dưới basePath,
// bỏ qua thư mục bảng biến môi trường và thư mục kỹ thuật)
func (s *ReaderService) ListLobs() ([]string, error) {
	dirs, err := s.engine.Store().ListSubdirectories(s.engine.BasePath())
	if err != nil {
		return nil, err
	}
	lobs := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if dir == dynamicValuesDir || strings.HasPrefix(dir, "_") || strings.HasPrefix(dir, ".") {
			continue
		}
		lobs = append(lobs, dir)
	}
	return lobs, nil
}

// GetDomainsAndTypes trả về map domainName -> danh sách domainType của một LOB.
// Chỉ tính các thư mục type có _meta.json; LOB chưa tồn tại trả map rỗng.
func (s *ReaderService) GetDomainsAndTypes(lob string) (map[string][]string, error) {
	store := s.engine.Store()
	base := s.engine.Path().WithLob(lob)

	domainNames, err := store.ListSubdirectories(base.LobDir())
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for _, domainName := range domainNames {
		types, err := store.ListSubdirectories(base.WithDomain(domainName, "").DomainNameDir())
		if err != nil {
			return nil, err
		}
		for _, domainType := range types {
			metaPath := base.WithDomain(domainName, domainType).MetaPath()
			if !store.FileExists(metaPath) {
				continue
			}
			result[domainName] = append(result[domainName], domainType)
		}
		sort.Strings(result[domainName])
	}
	return result, nil
}

// Summaries liệt kê tóm tắt mọi domain trong LOB. Domain có meta hỏng
// được bỏ qua kèm cảnh báo thay vì làm hỏng cả danh sách.
func (s *ReaderService) Summaries(lob string) ([]ConfigSummary, error) {
	domains, err := s.GetDomainsAndTypes(lob)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConfigSummary, 0)
	for _, domainName := range sortedKeys(domains) {
		for _, domainType := range domains[domainName] {
			metaPath := s.engine.Path().WithLob(lob).WithDomain(domainName, domainType).MetaPath()
			meta, err := s.engine.Store().ReadMeta(metaPath)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"lob": lob, "domainName": domainName, "domainType": domainType,
				}).Warn("⚠️ [CONFIG] Meta lỗi, bỏ qua khỏi danh sách: ", err)
				continue
			}
			summaries = append(summaries, ConfigSummary{
				DomainName:   domainName,
				DomainType:   domainType,
				ElementCount: len(meta.Elements),
			})
		}
	}
	return summaries, nil
}

// ConfigsByLobAndEnv tái tạo mọi domain của LOB cho một môi trường,
// trả về payload dạng đẩy hạ nguồn. Domain tái tạo thất bại được bỏ qua
// kèm cảnh báo (best-effort).
func (s *ReaderService) ConfigsByLobAndEnv(lob, env string) ([]DomainValues, error) {
	if !configtree.IsSupportedEnv(env) {
		return nil, common.NewValidationError("Unsupported environment: " + env)
	}

	domains, err := s.GetDomainsAndTypes(lob)
	if err != nil {
		return nil, err
	}

	values := make([]DomainValues, 0)
	for _, domainName := range sortedKeys(domains) {
		for _, domainType := range domains[domainName] {
			result, err := s.engine.Reconstruct(lob, domainName, domainType, env)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"lob": lob, "domainName": domainName, "domainType": domainType, "env": env,
				}).Warn("⚠️ [CONFIG] Tái tạo thất bại, bỏ qua: ", err)
				continue
			}
			values = append(values, DomainValues{
				DomainName:   domainName,
				DomainType:   domainType,
				DomainValues: result.JSONArray,
			})
		}
	}
	return values, nil
}

// GetDomainDetail trả về chi tiết một domain: danh sách element theo meta,
// mỗi element kèm giá trị (đã giải mã) của các môi trường có file trên đĩa
func (s *ReaderService) GetDomainDetail(lob, domainName, domainType string) (*DomainDetail, error) {
	store := s.engine.Store()
	base := s.engine.Path().WithLob(lob).WithDomain(domainName, domainType)

	if !store.FileExists(base.MetaPath()) {
		return nil, common.NewNotFoundError(fmt.Sprintf("Config not found: %s/%s/%s", lob, domainName, domainType))
	}
	meta, err := store.ReadMeta(base.MetaPath())
	if err != nil {
		return nil, err
	}

	detail := &DomainDetail{
		Lob:        lob,
		DomainName: meta.DomainName,
		DomainType: meta.DomainType,
		Elements:   make([]ElementDetail, 0, len(meta.Elements)),
	}
	for _, el := range meta.Elements {
		values := make(map[string]any)
		for _, env := range storedEnvs() {
			file := base.WithElement(el.Name).WithEnv(env).EnvFile()
			if !store.FileExists(file) {
				continue
			}
			raw, err := store.ReadJSON(file)
			if err != nil {
				return nil, err
			}
			values[env] = el.Pattern.Decode(el.Name, raw)
		}
		detail.Elements = append(detail.Elements, ElementDetail{
			Name:    el.Name,
			Pattern: el.Pattern,
			Group:   el.Group,
			Values:  values,
		})
	}
	return detail, nil
}

// GetElementValue tra giá trị một element với chuỗi fallback:
//  1. file đúng env trong LOB yêu cầu
//  2. file env bất kỳ đang có trong LOB yêu cầu
//  3. lặp lại hai bước trên ở LOB default
//
// Giá trị trả về đã qua giải mã pattern (single-key được bọc lại).
func (s *ReaderService) GetElementValue(lob, domainName, domainType, elementName, env string) (any, error) {
	if env != "" && !configtree.IsSupportedEnv(env) {
		return nil, common.NewValidationError("Unsupported environment: " + env)
	}
	if lob == "" {
		lob = configtree.DefaultLob
	}

	value, err := s.elementValueInLob(lob, domainName, domainType, elementName, env)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, common.ErrConfigNotFound) || lob == configtree.DefaultLob {
		return nil, err
	}
	return s.elementValueInLob(configtree.DefaultLob, domainName, domainType, elementName, env)
}

// elementValueInLob tìm element trong một LOB: ưu tiên env yêu cầu,
// sau đó bất kỳ env nào đang có file
func (s *ReaderService) elementValueInLob(lob, domainName, domainType, elementName, env string) (any, error) {
	store := s.engine.Store()
	base := s.engine.Path().WithLob(lob).WithDomain(domainName, domainType)

	if !store.FileExists(base.MetaPath()) {
		return nil, common.NewNotFoundError(fmt.Sprintf("Config not found: %s/%s/%s", lob, domainName, domainType))
	}
	meta, err := store.ReadMeta(base.MetaPath())
	if err != nil {
		return nil, err
	}
	el := meta.FindElement(elementName)
	if el == nil {
		return nil, common.NewNotFoundError("Element not found: " + elementName)
	}

	for _, candidate := range candidateEnvs(env) {
		file := base.WithElement(elementName).WithEnv(candidate).EnvFile()
		if !store.FileExists(file) {
			continue
		}
		raw, err := store.ReadJSON(file)
		if err != nil {
			return nil, err
		}
		return el.Pattern.Decode(el.Name, raw), nil
	}
	return nil, common.NewNotFoundError(fmt.Sprintf("Element not found: %s (env %s)", elementName, env))
}

// candidateEnvs xếp thứ tự env để dò file: env yêu cầu trước,
// các env còn lại theo thứ tự chữ cái. env rỗng hoặc ALL dò tất cả.
func candidateEnvs(env string) []string {
	all := storedEnvs()
	if env == "" || strings.EqualFold(env, configtree.EnvAll) {
		return all
	}
	requested := strings.ToLower(env)
	candidates := []string{requested}
	for _, e := range all {
		if e != requested {
			candidates = append(candidates, e)
		}
	}
	return candidates
}

// storedEnvs là các env có thể tồn tại dưới dạng file (ALL không bao giờ
// được ghi ra đĩa), theo thứ tự chữ cái để kết quả ổn định
func storedEnvs() []string {
	envs := make([]string, 0, len(configtree.SupportedEnvs)-1)
	for _, env := range configtree.SupportedEnvs {
		if env == configtree.EnvAll {
			continue
		}
		envs = append(envs, strings.ToLower(env))
	}
	sort.Strings(envs)
	return envs
}

// sortedKeys trả về key của map theo thứ tự chữ cái
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
