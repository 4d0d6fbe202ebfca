package configtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// Engine là lõi biến đổi của hệ thống: phân rã một JSON array thành cây file
// theo môi trường (deconstruct) và tái tạo lại array từ cây (reconstruct).
// Mọi thao tác là I/O đồng bộ trên goroutine của caller; các thao tác ghi
// trên cùng domain key được serialize qua DomainLocker.
type Engine struct {
	basePath string
	store    *FileStore
	resolver *DynamicResolver
	locker   *DomainLocker
	log      *logrus.Logger
}

// NewEngine tạo engine với thư mục gốc của cây cấu hình và source dynamic values.
// source == nil nghĩa là không có bảng dynamic values (mọi placeholder sẽ fail).
func NewEngine(basePath string, source EnvironmentVariableSource) *Engine {
	if source == nil {
		source = StaticEnvSource{}
	}
	return &Engine{
		basePath: basePath,
		store:    NewFileStore(),
		resolver: NewDynamicResolver(source),
		locker:   NewDomainLocker(),
		log:      logger.GetTransformLogger(),
	}
}

// BasePath trả về thư mục gốc của cây cấu hình
func (e *Engine) BasePath() string {
	return e.basePath
}

// Store trả về FileStore dùng chung của engine
func (e *Engine) Store() *FileStore {
	return e.store
}

// Resolver trả về resolver dynamic values dùng chung của engine
func (e *Engine) Resolver() *DynamicResolver {
	return e.resolver
}

// Path trả về ConfigPath gốc trỏ vào cây của engine
func (e *Engine) Path() ConfigPath {
	return NewConfigPath(e.basePath)
}

// LockDomain giữ lock ghi của một domain key và trả về hàm unlock.
// Các service thao tác meta ở mức element dùng chung lock này để
// read-modify-write không giẫm lên các thao tác domain-level.
func (e *Engine) LockDomain(lob, domainName, domainType string) (unlock func()) {
	return e.locker.Lock(lob + "/" + domainName + "/" + domainType)
}

// ====================================
// DECONSTRUCT
// ====================================

// BuildConfig phân loại một JSON array thành DomainConfig mà KHÔNG ghi gì ra đĩa.
// Dùng khi soạn merge request: kết quả (elements kèm pattern/group/value) được
// lưu vào merge và chỉ ghi xuống cây khi merge được áp dụng.
//
// Từng phần tử của array, theo thứ tự: phân loại (Classify), sanitize tên,
// chống trùng tên bằng hậu tố _1, _2, ... theo thứ tự gặp. Fallback counter chỉ
// tăng khi phần tử rơi vào FALLBACK. Group id là "group_{i}" với i là chỉ số
// phần tử nguồn — đơn điệu tăng trong một lần gọi, không dùng wall clock.
//
// Parameters:
//   - lob: line of business (rỗng sẽ dùng "default")
//   - domainName, domainType: định danh domain (được sanitize)
//   - jsonArray: array nguồn đã decode
//   - env: môi trường đích ("ALL" hoặc một env cụ thể)
//
// Returns:
//   - *DomainConfig: cấu hình với Action=INSERT, elements theo thứ tự array gốc
//   - error: ValidationFailure nếu env không được hỗ trợ
func (e *Engine) BuildConfig(lob, domainName, domainType string, jsonArray []any, env string) (*DomainConfig, error) {
	if !IsSupportedEnv(env) {
		return nil, common.NewValidationError("Unsupported environment: " + env)
	}
	if lob == "" {
		lob = DefaultLob
	}

	config := &DomainConfig{
		Lob:        lob,
		DomainName: Sanitize(domainName),
		DomainType: Sanitize(domainType),
		Action:     ActionInsert,
		Env:        env,
		Elements:   []ConfigElement{},
	}

	nameCounts := make(map[string]int)
	fallbackIndex := 0

	for i, raw := range jsonArray {
		classified := Classify(raw, fallbackIndex, fmt.Sprintf("group_%d", i))
		if classified[0].Pattern == PatternFallback {
			fallbackIndex++
		}
		for _, c := range classified {
			config.AddElement(ConfigElement{
				Name:    uniqueName(nameCounts, Sanitize(c.Name)),
				Pattern: c.Pattern,
				Group:   c.Group,
				Value:   c.Value,
			})
		}
	}
	return config, nil
}

// Deconstruct phân rã một JSON array và ghi kết quả xuống cây cấu hình:
// mỗi element một thư mục với file {env}.json đã resolve dynamic values
// cho từng môi trường đích, meta file ghi SAU CÙNG.
//
// Returns:
//   - *DomainConfig: cấu hình đã ghi (phục vụ caller đưa vào merge/response)
//   - error: ValidationFailure (env), OperationFailure (I/O, thiếu dynamic value)
func (e *Engine) Deconstruct(lob, domainName, domainType string, jsonArray []any, env string) (*DomainConfig, error) {
	config, err := e.BuildConfig(lob, domainName, domainType, jsonArray, env)
	if err != nil {
		return nil, err
	}
	if err := e.WriteConfig(config); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"lob":        config.Lob,
		"domainName": config.DomainName,
		"domainType": config.DomainType,
		"env":        config.Env,
		"elements":   config.ElementCount(),
	}).Info("🌲 [TRANSFORM] Deconstruct hoàn tất")
	return config, nil
}

// WriteConfig ghi toàn bộ một DomainConfig xuống cây (giữ lock domain):
// từng element, từng env trong EnvsToWrite(config.Env), meta file cuối cùng.
// Không xóa gì trước khi ghi — caller cần thay thế nguyên domain dùng ReplaceConfig.
func (e *Engine) WriteConfig(config *DomainConfig) error {
	if err := validateWritable(config); err != nil {
		return err
	}
	unlock := e.LockDomain(config.Lob, config.DomainName, config.DomainType)
	defer unlock()
	return e.writeLocked(config)
}

// ReplaceConfig xóa thư mục domain (nếu có) rồi ghi lại toàn bộ, trong cùng
// một critical section — đây là primitive của hành động UPDATE.
func (e *Engine) ReplaceConfig(config *DomainConfig) error {
	if err := validateWritable(config); err != nil {
		return err
	}
	unlock := e.LockDomain(config.Lob, config.DomainName, config.DomainType)
	defer unlock()

	dir := e.Path().WithLob(config.Lob).WithDomain(config.DomainName, config.DomainType).DomainTypeDir()
	if e.store.DirectoryExists(dir) {
		if err := e.store.DeleteDirectory(dir); err != nil {
			return err
		}
	}
	return e.writeLocked(config)
}

// validateWritable kiểm tra các điều kiện tối thiểu trước khi ghi một config
func validateWritable(config *DomainConfig) error {
	if config.Env == "" {
		return common.NewValidationError("Environment không được để trống")
	}
	if !IsSupportedEnv(config.Env) {
		return common.NewValidationError("Unsupported environment: " + config.Env)
	}
	return nil
}

// writeLocked ghi element files rồi meta; caller phải đang giữ lock domain
func (e *Engine) writeLocked(config *DomainConfig) error {
	base := e.Path().WithLob(config.Lob).WithDomain(config.DomainName, config.DomainType)
	envs := EnvsToWrite(config.Env)

	for _, el := range config.Elements {
		elPath := base.WithElement(el.Name)
		if err := e.store.EnsureDirectory(elPath.ElementDir()); err != nil {
			return err
		}
		for _, env := range envs {
			resolved, err := e.resolver.Resolve(el.Value, env)
			if err != nil {
				return err
			}
			if err := e.store.WriteJSON(elPath.WithEnv(env).EnvFile(), resolved); err != nil {
				return err
			}
		}
	}

	// Meta ghi sau cùng: reader thấy meta là thấy đủ element files
	return e.store.WriteMeta(base.MetaPath(), config.ToMetaFile())
}

// ====================================
// DELETE / EXISTS
// ====================================

// Exists kiểm tra domain có tồn tại không (theo sự hiện diện của meta file)
func (e *Engine) Exists(lob, domainName, domainType string) bool {
	return e.store.FileExists(e.Path().WithLob(lob).WithDomain(domainName, domainType).MetaPath())
}

// DeleteDomain xóa toàn bộ thư mục của một domain.
//
// Returns:
//   - error: NotFound nếu domain không tồn tại
func (e *Engine) DeleteDomain(lob, domainName, domainType string) error {
	unlock := e.LockDomain(lob, domainName, domainType)
	defer unlock()

	dir := e.Path().WithLob(lob).WithDomain(domainName, domainType).DomainTypeDir()
	if !e.store.DirectoryExists(dir) {
		return common.NewNotFoundError(fmt.Sprintf("Config not found: %s/%s/%s", lob, domainName, domainType))
	}
	return e.store.DeleteDirectory(dir)
}

// DeleteEnvFiles xóa file {env}.json của mọi element trong meta, giữ nguyên
// meta file và các môi trường khác — nhánh DELETE có env cụ thể (khác "ALL").
func (e *Engine) DeleteEnvFiles(lob, domainName, domainType, env string) error {
	unlock := e.LockDomain(lob, domainName, domainType)
	defer unlock()

	base := e.Path().WithLob(lob).WithDomain(domainName, domainType)
	meta, err := e.store.ReadMeta(base.MetaPath())
	if err != nil {
		return err
	}
	for _, el := range meta.Elements {
		if err := e.store.DeleteFile(base.WithElement(el.Name).WithEnv(env).EnvFile()); err != nil {
			return err
		}
	}
	return nil
}

// ====================================
// RECONSTRUCT
// ====================================

// Reconstruct tái tạo JSON array của một domain cho một môi trường từ cây file.
// Duyệt meta theo thứ tự lưu: element thiếu file env chỉ sinh warning rồi bỏ qua;
// các element MULTI_KEY_EXPLODE liên tiếp cùng group được gộp lại thành một object
// (mỗi element một key) và flush khi đổi group hoặc hết danh sách. Sau cùng quét
// các thư mục con không có trong meta và ghi nhận warning "orphan".
//
// Parameters:
//   - lob, domainName, domainType: định danh domain
//   - env: môi trường cần tái tạo
//
// Returns:
//   - *ReconstructResult: array tái tạo + warnings, Success luôn true khi không lỗi
//   - error: NotFound nếu không có meta file, InvalidMeta nếu meta hỏng,
//     OperationFailure nếu một element file tồn tại nhưng không đọc được
func (e *Engine) Reconstruct(lob, domainName, domainType, env string) (*ReconstructResult, error) {
	base := e.Path().WithLob(lob).WithDomain(domainName, domainType)

	if !e.store.FileExists(base.MetaPath()) {
		return nil, common.NewNotFoundError(fmt.Sprintf("Config not found: %s/%s/%s", lob, domainName, domainType))
	}
	meta, err := e.store.ReadMeta(base.MetaPath())
	if err != nil {
		return nil, err
	}

	result := &ReconstructResult{
		Lob:        lob,
		DomainName: domainName,
		DomainType: domainType,
		Env:        env,
		JSONArray:  []any{},
		Success:    true,
	}

	// Accumulator cho các element cùng group liên tiếp
	var groupValues map[string]any
	var currentGroup string
	flush := func() {
		if groupValues != nil {
			result.JSONArray = append(result.JSONArray, groupValues)
			groupValues = nil
			currentGroup = ""
		}
	}

	for _, el := range meta.Elements {
		envFile := base.WithElement(el.Name).WithEnv(env).EnvFile()
		if !e.store.FileExists(envFile) {
			result.AddWarning("Element folder missing: " + el.Name)
			continue
		}
		value, err := e.store.ReadJSON(envFile)
		if err != nil {
			return nil, err
		}

		if el.Group != "" && el.Pattern == PatternMultiKeyExplode {
			if groupValues == nil || currentGroup != el.Group {
				flush()
				groupValues = make(map[string]any)
				currentGroup = el.Group
			}
			groupValues[el.Name] = value
			continue
		}

		flush()
		result.JSONArray = append(result.JSONArray, el.Pattern.Decode(el.Name, value))
	}
	flush()

	// Quét thư mục mồ côi: có trên đĩa nhưng meta không biết đến
	subdirs, err := e.store.ListSubdirectories(base.DomainTypeDir())
	if err != nil {
		return nil, err
	}
	for _, dir := range subdirs {
		if strings.HasPrefix(dir, "_") {
			continue
		}
		if !meta.HasElement(dir) {
			result.AddWarning("Orphan folder found: " + dir)
		}
	}

	result.ElementCount = len(result.JSONArray)

	e.log.WithFields(logrus.Fields{
		"lob":        lob,
		"domainName": domainName,
		"domainType": domainType,
		"env":        env,
		"elements":   result.ElementCount,
		"warnings":   len(result.Warnings),
	}).Debug("🌲 [TRANSFORM] Reconstruct hoàn tất")
	return result, nil
}

// ReconstructAll tái tạo domain cho TẤT CẢ các môi trường được hỗ trợ.
// Môi trường tái tạo thất bại không làm hỏng các môi trường còn lại: kết quả
// của nó có Success=false kèm thông báo lỗi.
func (e *Engine) ReconstructAll(lob, domainName, domainType string) []*ReconstructResult {
	results := make([]*ReconstructResult, 0, len(SupportedEnvs))
	for _, env := range SupportedEnvs {
		res, err := e.Reconstruct(lob, domainName, domainType, env)
		if err != nil {
			message := err.Error()
			if errors.Is(err, common.ErrConfigNotFound) {
				message = "Config not found for env: " + env
			}
			results = append(results, &ReconstructResult{
				Lob:          lob,
				DomainName:   domainName,
				DomainType:   domainType,
				Env:          env,
				Success:      false,
				ErrorMessage: message,
			})
			continue
		}
		results = append(results, res)
	}
	return results
}

// ReconstructElement tái tạo giá trị của MỘT element cho một môi trường,
// không dựng cả array. Dùng cho API tra cứu giá trị lẻ.
//
// Returns:
//   - any: giá trị đã decode theo pattern của element
//   - error: NotFound nếu domain, element trong meta, hoặc file env không tồn tại
func (e *Engine) ReconstructElement(lob, domainName, domainType, elementName, env string) (any, error) {
	base := e.Path().WithLob(lob).WithDomain(domainName, domainType)

	meta, err := e.store.ReadMeta(base.MetaPath())
	if err != nil {
		return nil, err
	}
	el := meta.FindElement(elementName)
	if el == nil {
		return nil, common.NewNotFoundError("Element not found: " + elementName)
	}

	envFile := base.WithElement(el.Name).WithEnv(env).EnvFile()
	if !e.store.FileExists(envFile) {
		return nil, common.NewNotFoundError(fmt.Sprintf("Element not found: %s (env %s)", elementName, env))
	}
	value, err := e.store.ReadJSON(envFile)
	if err != nil {
		return nil, err
	}
	return el.Pattern.Decode(el.Name, value), nil
}

// uniqueName chống trùng tên trong một lần build: lần đầu gặp base giữ nguyên,
// các lần sau thêm hậu tố _1, _2, ... theo thứ tự gặp
func uniqueName(counts map[string]int, base string) string {
	n, seen := counts[base]
	if !seen {
		counts[base] = 0
		return base
	}
	counts[base] = n + 1
	return fmt.Sprintf("%s_%d", base, n+1)
}
