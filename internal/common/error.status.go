package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusAccepted  = 202 // Yêu cầu được chấp nhận
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest         = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized       = 401 // Chưa xác thực
	StatusForbidden          = 403 // Không có quyền truy cập
	StatusNotFound           = 404 // Không tìm thấy tài nguyên
	StatusMethodNotAllowed   = 405 // Phương thức HTTP không được hỗ trợ
	StatusConflict           = 409 // Xung đột dữ liệu
	StatusGone               = 410 // Tài nguyên không còn tồn tại
	StatusPreconditionFailed = 412 // Điều kiện tiên quyết không thỏa mãn
	StatusTooManyRequests    = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusNotImplemented      = 501 // Chức năng chưa được triển khai
	StatusBadGateway          = 502 // Gateway không hợp lệ
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
	StatusGatewayTimeout      = 504 // Gateway timeout
)

// Response Messages
const (
	// Success Messages
	MsgSuccess   = "Thao tác thành công"
	MsgCreated   = "Tạo mới thành công"
	MsgAccepted  = "Yêu cầu được chấp nhận"
	MsgNoContent = "Không có nội dung trả về"

	// Error Messages
	MsgBadRequest         = "Yêu cầu không hợp lệ"
	MsgNotFound           = "Không tìm thấy tài nguyên"
	MsgMethodNotAllowed   = "Phương thức không được hỗ trợ"
	MsgConflict           = "Xung đột dữ liệu"
	MsgTooManyRequests    = "Quá nhiều yêu cầu"
	MsgInternalError      = "Lỗi hệ thống"
	MsgServiceUnavailable = "Dịch vụ không khả dụng"

	// Validation Messages
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
	MsgInvalidFormat   = "Định dạng dữ liệu không hợp lệ"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: CFG_001)
	Category    string // Phân loại lỗi (ví dụ: Config)
	SubCategory string // Phân loại con (ví dụ: NotFound)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidation = ErrorCode{
		Code:        "VAL",
		Category:    "Validation",
		SubCategory: "General",
		Description: "Lỗi xác thực dữ liệu chung",
	}

	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Config Tree Errors (CFG_xxx)
	ErrCodeConfigNotFound = ErrorCode{
		Code:        "CFG_001",
		Category:    "Config",
		SubCategory: "NotFound",
		Description: "Không tìm thấy domain, meta file hoặc element",
	}

	ErrCodeConfigMeta = ErrorCode{
		Code:        "CFG_002",
		Category:    "Config",
		SubCategory: "Meta",
		Description: "Meta file tồn tại nhưng không đọc/parse được",
	}

	ErrCodeConfigOperation = ErrorCode{
		Code:        "CFG_003",
		Category:    "Config",
		SubCategory: "Operation",
		Description: "Lỗi thao tác trên cây cấu hình (I/O, dynamic value, pattern)",
	}

	ErrCodeConfigValidation = ErrorCode{
		Code:        "CFG_004",
		Category:    "Config",
		SubCategory: "Validation",
		Description: "Lỗi validate change request (thiếu default LOB, thiếu env)",
	}

	// Merge Errors (MRG_xxx)
	ErrCodeMergeState = ErrorCode{
		Code:        "MRG_001",
		Category:    "Merge",
		SubCategory: "State",
		Description: "Trạng thái merge không cho phép thao tác",
	}

	ErrCodeMergeApply = ErrorCode{
		Code:        "MRG_002",
		Category:    "Merge",
		SubCategory: "Apply",
		Description: "Lỗi khi áp dụng merge batch",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is).
// Hai *Error được coi là cùng loại khi trùng mã lỗi — message được phép khác nhau
// vì hầu hết lỗi domain mang theo ngữ cảnh (tên domain, đường dẫn file, ...).
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)

	// Config Tree Errors
	ErrConfigNotFound      = NewError(ErrCodeConfigNotFound, "Không tìm thấy cấu hình", StatusNotFound, nil)
	ErrInvalidMeta         = NewError(ErrCodeConfigMeta, "Meta file không hợp lệ", StatusInternalServerError, nil)
	ErrOperationFailure    = NewError(ErrCodeConfigOperation, "Thao tác trên cây cấu hình thất bại", StatusInternalServerError, nil)
	ErrValidationFailure   = NewError(ErrCodeConfigValidation, "Change request không hợp lệ", StatusBadRequest, nil)
	ErrMergeNotApplicable  = NewError(ErrCodeMergeState, "Merge chưa được duyệt hoặc đã được áp dụng", StatusPreconditionFailed, nil)
	ErrMergeAlreadyMerged  = NewError(ErrCodeMergeState, "Merge đã được áp dụng trước đó", StatusConflict, nil)
)

// NewNotFoundError tạo lỗi NotFound với ngữ cảnh (domain, element, đường dẫn ...)
func NewNotFoundError(message string) error {
	return NewError(ErrCodeConfigNotFound, message, StatusNotFound, nil)
}

// NewInvalidMetaError tạo lỗi InvalidMeta kèm đường dẫn meta file và nguyên nhân
func NewInvalidMetaError(message string, cause error) error {
	return NewError(ErrCodeConfigMeta, message, StatusInternalServerError, cause)
}

// NewOperationError tạo lỗi OperationFailure kèm tên thao tác
func NewOperationError(message string, cause error) error {
	return NewError(ErrCodeConfigOperation, message, StatusInternalServerError, cause)
}

// NewValidationError tạo lỗi ValidationFailure cho change request
func NewValidationError(message string) error {
	return NewError(ErrCodeConfigValidation, message, StatusBadRequest, nil)
}

// ConvertMongoError chuyển đổi lỗi từ MongoDB driver sang *Error thống nhất
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}

	if mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "Truy vấn cơ sở dữ liệu bị timeout", StatusServiceUnavailable, err)
	}

	if mongo.IsNetworkError(err) {
		return NewError(ErrCodeDatabaseConnection, "Lỗi mạng khi kết nối cơ sở dữ liệu", StatusServiceUnavailable, err)
	}

	return NewError(ErrCodeDatabaseQuery, MsgDatabaseError, StatusInternalServerError, err)
}
