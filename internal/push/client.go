// Package push đẩy cấu hình đã tái tạo sang các môi trường đích (UAT, demo,
// prod...). Mỗi môi trường có base URL riêng; client signin bằng password
// mã hóa RSA để lấy token rồi POST mảng domain values lên endpoint metadata
// của môi trường đó.
package push

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// Client gọi HTTP sang các môi trường đích
type Client struct {
	loginID   string
	password  string
	publicKey *rsa.PublicKey
	envURLs   map[string]string
	client    *fasthttp.Client
	timeout   time.Duration
	log       *logrus.Logger
}

// NewClient tạo push client từ các giá trị cấu hình.
//
// Parameters:
//   - loginID: login ID cho endpoint signin của môi trường đích
//   - password: password gốc (sẽ được mã hóa RSA trước khi gửi)
//   - publicKeyData: RSA public key của môi trường đích (PEM hoặc base64 DER),
//     rỗng nếu push chưa được cấu hình
//   - envURLsSpec: danh sách "env=baseURL" phân cách bằng dấu phẩy
//   - timeout: timeout cho mỗi request, <= 0 dùng mặc định 10s
//
// Returns:
//   - *Client: client sẵn sàng (có thể ở trạng thái disabled nếu thiếu cấu hình)
//   - error: public key được cung cấp nhưng không parse được
func NewClient(loginID, password, publicKeyData, envURLsSpec string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		loginID:  loginID,
		password: password,
		envURLs:  ParseEnvURLs(envURLsSpec),
		client:   &fasthttp.Client{},
		timeout:  timeout,
		log:      logger.GetPushLogger(),
	}
	if publicKeyData != "" {
		key, err := ParsePublicKey(publicKeyData)
		if err != nil {
			return nil, err
		}
		c.publicKey = key
	}
	return c, nil
}

// ParseEnvURLs tách chuỗi "env=baseURL,env=baseURL" thành map env -> URL.
// Env được lowercase, entry thiếu dấu = hoặc rỗng bị bỏ qua.
func ParseEnvURLs(spec string) map[string]string {
	urls := make(map[string]string)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env := strings.ToLower(strings.TrimSpace(parts[0]))
		url := strings.TrimRight(strings.TrimSpace(parts[1]), "/")
		if env == "" || url == "" {
			continue
		}
		urls[env] = url
	}
	return urls
}

// Enabled cho biết client đã đủ cấu hình để push hay chưa
func (c *Client) Enabled() bool {
	return c.loginID != "" && c.publicKey != nil && len(c.envURLs) > 0
}

// BaseURL trả về base URL của một môi trường đích
func (c *Client) BaseURL(env string) (string, bool) {
	url, ok := c.envURLs[strings.ToLower(env)]
	return url, ok
}

// post gửi một request JSON bằng fasthttp với timeout của client.
// headers đặt thêm lên request (Content-Type luôn là application/json).
// fasthttp không nhận context nên ctx chỉ được kiểm tra trước khi gửi.
func (c *Client) post(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	req.SetBody(body)

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return 0, nil, err
	}

	// Body của fasthttp chỉ sống đến khi release, phải copy ra ngoài
	respBody := make([]byte, len(resp.Body()))
	copy(respBody, resp.Body())
	return resp.StatusCode(), respBody, nil
}

// Signin đăng nhập vào môi trường đích và trả về token.
// Body gửi đi: {loginId, password: RSA(timestamp:password), lob: lob+env} —
// field lob ghép liền tên LOB và env theo quy ước của hệ thống đích.
func (c *Client) Signin(ctx context.Context, lob, env string) (string, error) {
	if !c.Enabled() {
		return "", common.NewError(common.ErrCodeConfigOperation,
			"Push chưa được cấu hình (thiếu login ID, public key hoặc env URLs)",
			common.StatusInternalServerError, nil)
	}
	baseURL, ok := c.BaseURL(env)
	if !ok {
		return "", common.NewValidationError("Chưa cấu hình URL push cho môi trường: " + env)
	}

	encrypted, err := EncryptCredential(c.publicKey, c.password, time.Now().UnixMilli())
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(map[string]string{
		"loginId":  c.loginID,
		"password": encrypted,
		"lob":      lob + env,
	})
	if err != nil {
		return "", err
	}

	statusCode, respBody, err := c.post(ctx, baseURL+"/signin", nil, body)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"lob": lob, "env": env, "url": baseURL + "/signin",
		}).Error("🚀 [PUSH] Lỗi khi gọi signin")
		return "", err
	}

	if statusCode != fasthttp.StatusOK {
		c.log.WithFields(logrus.Fields{
			"lob": lob, "env": env, "statusCode": statusCode, "response": string(respBody),
		}).Error("🚀 [PUSH] Signin bị từ chối")
		return "", fmt.Errorf("signin returned status %d: %s", statusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("không parse được response signin: %w", err)
	}
	token, _ := result["token"].(string)
	if token == "" {
		return "", fmt.Errorf("response signin không chứa token")
	}

	c.log.WithFields(logrus.Fields{"lob": lob, "env": env}).Info("🚀 [PUSH] Signin thành công")
	return token, nil
}

// PushConfigs đẩy một batch domain values lên endpoint metadata của môi
// trường đích. Token lấy từ Signin, header lob ghép lob+env như lúc signin.
func (c *Client) PushConfigs(ctx context.Context, lob, env, token string, batch []configops.DomainValues) error {
	baseURL, ok := c.BaseURL(env)
	if !ok {
		return common.NewValidationError("Chưa cấu hình URL push cho môi trường: " + env)
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"lob":           lob + env,
		"Authorization": token,
	}
	statusCode, respBody, err := c.post(ctx, baseURL+"/metadata", headers, body)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"lob": lob, "env": env, "entries": len(batch),
		}).Error("🚀 [PUSH] Lỗi khi đẩy metadata")
		return err
	}

	if statusCode < 200 || statusCode >= 300 {
		c.log.WithFields(logrus.Fields{
			"lob": lob, "env": env, "statusCode": statusCode, "response": string(respBody),
		}).Error("🚀 [PUSH] Môi trường đích trả về lỗi")
		return fmt.Errorf("push returned status %d: %s", statusCode, string(respBody))
	}

	c.log.WithFields(logrus.Fields{
		"lob": lob, "env": env, "entries": len(batch),
	}).Info("🚀 [PUSH] Đẩy metadata thành công")
	return nil
}
