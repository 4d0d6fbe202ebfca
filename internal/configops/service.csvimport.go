package configops

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// ImportReport tổng hợp kết quả một phiên import CSV
type ImportReport struct {
	Lob           string   `json:"lob" bson:"lob"`
	Env           string   `json:"env" bson:"env"`
	RowsProcessed int      `json:"rowsProcessed" bson:"rowsProcessed"`
	Created       int      `json:"created" bson:"created"`
	Updated       int      `json:"updated" bson:"updated"`
	Errors        []string `json:"errors" bson:"errors"`
}

// ImportService nạp cấu hình hàng loạt từ file CSV xuất ra từ công cụ cũ.
// Tên file mang LOB và môi trường ({lob}_{env}.csv); mỗi dòng là một domain
// với mảng JSON đầy đủ. Domain chưa có được phân rã mới; domain đã có chỉ
// được bổ sung các file env còn thiếu, không ghi đè dữ liệu hiện hữu.
type ImportService struct {
	engine *configtree.Engine
	log    *logrus.Logger
}

// NewImportService tạo service import trên engine đã có
func NewImportService(engine *configtree.Engine) *ImportService {
	return &ImportService{
		engine: engine,
		log:    logger.GetTransformLogger(),
	}
}

// ParseFileName tách LOB và env từ tên file dạng {lob}_{env}.csv.
// LOB được phép chứa dấu gạch dưới nên tách tại dấu gạch dưới CUỐI CÙNG.
//
// Returns:
//   - string: lob
//   - string: env
//   - error: ValidationFailure nếu tên file sai định dạng hoặc env không hỗ trợ
func ParseFileName(fileName string) (string, string, error) {
	base := filepath.Base(fileName)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".csv") {
		base = strings.TrimSuffix(base, ext)
	}

	idx := strings.LastIndex(base, "_")
	if idx <= 0 || idx == len(base)-1 {
		return "", "", common.NewValidationError("Tên file không đúng định dạng {lob}_{env}.csv: " + fileName)
	}
	lob, env := base[:idx], base[idx+1:]
	if !configtree.IsSupportedEnv(env) {
		return "", "", common.NewValidationError("Unsupported environment: " + env)
	}
	return lob, env, nil
}

// ImportCSV xử lý toàn bộ nội dung file: dòng đầu là header (bỏ qua),
// mỗi dòng sau có dạng domainName,domainType,<mảng JSON>. Lỗi của một dòng
// được ghi vào report và không chặn các dòng sau.
//
// Returns:
//   - *ImportReport: thống kê dòng xử lý, domain tạo mới / bổ sung và lỗi theo dòng
//   - error: ValidationFailure nếu tên file sai định dạng
func (s *ImportService) ImportCSV(fileName string, content []byte) (*ImportReport, error) {
	lob, env, err := ParseFileName(fileName)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Lob: lob, Env: env, Errors: make([]string, 0)}
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		report.RowsProcessed++
		created, err := s.importRow(lob, env, line)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("dòng %d: %s", i+1, err.Error()))
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	s.log.WithFields(logrus.Fields{
		"file": fileName, "lob": lob, "env": env,
		"rows": report.RowsProcessed, "created": report.Created,
		"updated": report.Updated, "errors": len(report.Errors),
	}).Info("🌲 [IMPORT] Import CSV hoàn tất")
	return report, nil
}

// importRow xử lý một dòng dữ liệu.
//
// Returns:
//   - bool: true nếu domain được phân rã mới, false nếu chỉ bổ sung file env
//   - error: lỗi định dạng dòng hoặc lỗi ghi
func (s *ImportService) importRow(lob, env, line string) (bool, error) {
	fields := parseCSVLine(line)
	if len(fields) < 3 {
		return false, common.NewValidationError("dòng phải có ít nhất 3 cột: domainName, domainType, JSON")
	}
	domainName := strings.TrimSpace(fields[0])
	domainType := strings.TrimSpace(fields[1])
	jsonText := strings.Join(fields[2:], ",")

	var jsonArray []any
	if err := json.Unmarshal([]byte(jsonText), &jsonArray); err != nil {
		return false, common.NewValidationError("cột JSON không phải mảng hợp lệ: " + err.Error())
	}

	if s.engine.Exists(lob, domainName, domainType) {
		return false, s.AddEnvFiles(lob, domainName, domainType, jsonArray, env)
	}
	_, err := s.engine.Deconstruct(lob, domainName, domainType, jsonArray, env)
	return err == nil, err
}

// AddEnvFiles bổ sung file env cho một domain ĐÃ CÓ meta: duyệt mảng JSON
// song song với danh sách element trong meta (nhóm explode tiêu thụ một dãy
// element liên tiếp cùng group), và CHỈ ghi các file chưa tồn tại — dữ liệu
// env đã có trên đĩa được giữ nguyên.
//
// Returns:
//   - error: OperationFailure nếu mảng không khớp cấu trúc meta, hoặc lỗi ghi
func (s *ImportService) AddEnvFiles(lob, domainName, domainType string, jsonArray []any, env string) error {
	if !configtree.IsSupportedEnv(env) {
		return common.NewValidationError("Unsupported environment: " + env)
	}
	if lob == "" {
		lob = configtree.DefaultLob
	}
	domainName = configtree.Sanitize(domainName)
	domainType = configtree.Sanitize(domainType)

	unlock := s.engine.LockDomain(lob, domainName, domainType)
	defer unlock()

	store := s.engine.Store()
	base := s.engine.Path().WithLob(lob).WithDomain(domainName, domainType)
	meta, err := store.ReadMeta(base.MetaPath())
	if err != nil {
		return err
	}

	mi := 0
	for ai, raw := range jsonArray {
		if mi >= len(meta.Elements) {
			return common.NewOperationError(
				fmt.Sprintf("mảng JSON có nhiều phần tử hơn meta hiện có (phần tử %d)", ai), nil)
		}
		el := meta.Elements[mi]

		if el.Group != "" && el.Pattern == configtree.PatternMultiKeyExplode {
			obj, ok := raw.(map[string]any)
			if !ok {
				return common.NewOperationError(
					fmt.Sprintf("phần tử %d phải là object cho nhóm %s", ai, el.Group), nil)
			}
			run := make([]configtree.MetaElement, 0, len(obj))
			for mi < len(meta.Elements) &&
				meta.Elements[mi].Group == el.Group &&
				meta.Elements[mi].Pattern == configtree.PatternMultiKeyExplode {
				run = append(run, meta.Elements[mi])
				mi++
			}
			keys := make([]string, 0, len(obj))
			for key := range obj {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			if len(keys) != len(run) {
				return common.NewOperationError(
					fmt.Sprintf("phần tử %d có %d key nhưng nhóm %s trong meta có %d element",
						ai, len(keys), el.Group, len(run)), nil)
			}
			for i, key := range keys {
				if err := s.writeMissingEnvFiles(base, run[i].Name, obj[key], env); err != nil {
					return err
				}
			}
			continue
		}

		value := raw
		if el.Pattern == configtree.PatternSingleKeyObject {
			obj, ok := raw.(map[string]any)
			if !ok || len(obj) != 1 {
				return common.NewOperationError(
					fmt.Sprintf("phần tử %d phải là object một key theo meta (%s)", ai, el.Name), nil)
			}
			for _, inner := range obj {
				value = inner
			}
		}
		if err := s.writeMissingEnvFiles(base, el.Name, value, env); err != nil {
			return err
		}
		mi++
	}
	return nil
}

// writeMissingEnvFiles ghi giá trị cho các env đích còn thiếu file
func (s *ImportService) writeMissingEnvFiles(base configtree.ConfigPath, elementName string, value any, env string) error {
	store := s.engine.Store()
	for _, targetEnv := range configtree.EnvsToWrite(env) {
		file := base.WithElement(elementName).WithEnv(targetEnv).EnvFile()
		if store.FileExists(file) {
			continue
		}
		resolved, err := s.engine.Resolver().Resolve(value, targetEnv)
		if err != nil {
			return err
		}
		if err := store.WriteJSON(file, resolved); err != nil {
			return err
		}
	}
	return nil
}

// parseCSVLine tách một dòng CSV theo cách khoan dung của công cụ cũ:
// dấu phẩy ngoài ngoặc kép là ranh giới cột, "" trong ngoặc kép là dấu
// nháy literal. Không hỗ trợ xuống dòng trong ô.
func parseCSVLine(line string) []string {
	fields := make([]string, 0, 4)
	var field strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(ch)
		}
	}
	fields = append(fields, field.String())
	return fields
}
