package global

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// lobNameRegex giới hạn tên LOB/domain trong bộ ký tự an toàn cho đường dẫn
var lobNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*$`)

// supportedEnvs là các môi trường hợp lệ cho thao tác ghi/đọc cây cấu hình.
// "ALL" được mở rộng thành {uat, demo, prod} ở tầng transform.
var supportedEnvs = map[string]bool{
	"ALL":  true,
	"uat":  true,
	"dev":  true,
	"demo": true,
	"prod": true,
}

// mergeActions các hành động hợp lệ cho một DomainConfig trong batch merge
var mergeActions = map[string]bool{
	"INSERT": true,
	"UPDATE": true,
	"DELETE": true,
}

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("config_env", validateConfigEnv)
	_ = Validate.RegisterValidation("lob_name", validateLobName)
	_ = Validate.RegisterValidation("merge_action", validateMergeAction)
}

// validateConfigEnv kiểm tra env thuộc tập môi trường được hỗ trợ.
// Chuỗi rỗng được chấp nhận ở đây — bắt buộc hay không do tag required quyết định.
func validateConfigEnv(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if value == "ALL" {
		return true
	}
	return supportedEnvs[strings.ToLower(value)]
}

// validateLobName kiểm tra tên LOB không chứa ký tự phá vỡ đường dẫn
func validateLobName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return lobNameRegex.MatchString(value)
}

// validateMergeAction kiểm tra action thuộc tập INSERT/UPDATE/DELETE
func validateMergeAction(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return mergeActions[value]
}
