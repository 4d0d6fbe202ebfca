package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Nó chứa thông tin cơ sở dữ liệu, cây cấu hình và các endpoint ngoài.
type Configuration struct {
	InitMode bool   `env:"INITMODE" envDefault:"false"` // Chế độ khởi tạo
	Address  string `env:"ADDRESS" envDefault:":8080"`  // Địa chỉ server

	// MongoDB (lưu merge request)
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"cofman"` // Tên cơ sở dữ liệu

	// Cây cấu hình
	ConfigBasePath    string `env:"CONFIG_BASE_PATH" envDefault:"configs"`                // Thư mục gốc của cây cấu hình
	DynamicValuesPath string `env:"DYNAMIC_VALUES_PATH" envDefault:"configs/dynamicValues"` // Thư mục chứa bảng dynamic values theo env
	DefaultLob        string `env:"DEFAULT_LOB" envDefault:"default"`                     // LOB mặc định (baseline)

	// CORS
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials

	// Rate limit
	RateLimit_Max     int  `env:"RATE_LIMIT_MAX" envDefault:"100"`      // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`    // Thời gian window (giây)
	RateLimit_Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"` // Bật/tắt rate limiting

	// TLS/HTTPS
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)

	// Remote push (đẩy config đã reconstruct sang môi trường khác)
	PushEnvURLs      string `env:"PUSH_ENV_URLS"`                        // Danh sách env=baseURL phân cách bằng dấu phẩy, ví dụ: "uat=https://uat.example.com,prod=https://prod.example.com"
	PushLoginID      string `env:"PUSH_LOGIN_ID"`                        // Login ID cho endpoint signin của môi trường đích
	PushPassword     string `env:"PUSH_PASSWORD"`                        // Password (được mã hóa RSA trước khi gửi)
	PushPublicKeyPEM string `env:"PUSH_PUBLIC_KEY_PEM"`                  // RSA public key (PEM) của môi trường đích
	PushTimeout      int    `env:"PUSH_TIMEOUT_SECONDS" envDefault:"30"` // Timeout (giây) cho mỗi push request

	// Approval webhook (gửi cặp old/new JSON chờ người duyệt)
	ApprovalWebhookURL string `env:"APPROVAL_WEBHOOK_URL"` // Webhook nhận yêu cầu phê duyệt (optional)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Đi lên từ thư mục hiện tại để tìm config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
