// Package approval gửi yêu cầu phê duyệt thay đổi cấu hình sang một webhook
// bên ngoài (chat tool, hệ thống ticket...). Mỗi thay đổi được gửi kèm cặp
// JSON old/new đã pretty-print để người duyệt so sánh bằng mắt, cùng một
// correlation id để đối chiếu với merge request trong MongoDB.
// Webhook là optional: không cấu hình URL thì gateway trở thành no-op.
package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/logger"
)

// ChangeRequest là payload gửi sang webhook cho một thay đổi domain config
type ChangeRequest struct {
	CorrelationID string `json:"correlationId"`       // ID đối chiếu với merge request
	Requester     string `json:"requester"`           // Người yêu cầu thay đổi
	FromBranch    string `json:"fromBranch,omitempty"` // Nhánh nguồn của merge request
	ToBranch      string `json:"toBranch,omitempty"`   // Nhánh đích của merge request
	Lob           string `json:"lob"`
	DomainName    string `json:"domainName"`
	DomainType    string `json:"domainType"`
	Env           string `json:"env,omitempty"`
	Action        string `json:"action"`
	OldConfig     string `json:"oldConfig"` // JSON hiện hành (pretty), rỗng nếu config chưa tồn tại
	NewConfig     string `json:"newConfig"` // JSON đề xuất (pretty), rỗng với action DELETE
}

// Gateway gửi ChangeRequest sang webhook đã cấu hình
type Gateway struct {
	webhookURL string
	client     *http.Client
	log        *logrus.Logger
}

// NewGateway tạo gateway với webhook URL (rỗng = tắt thông báo phê duyệt)
func NewGateway(webhookURL string) *Gateway {
	return &Gateway{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        logger.GetMergeLogger(),
	}
}

// Enabled cho biết webhook có được cấu hình hay không
func (g *Gateway) Enabled() bool {
	return g.webhookURL != ""
}

// NewCorrelationID sinh correlation id mới cho một đợt thông báo
func NewCorrelationID() string {
	return uuid.New().String()
}

// PrettyJSON marshal value thành JSON có indent để người duyệt đọc được.
// Value nil trả về chuỗi rỗng (config chưa tồn tại / đã xóa).
func PrettyJSON(value interface{}) string {
	if value == nil {
		return ""
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

// Notify gửi một ChangeRequest sang webhook.
//
// Parameters:
//   - ctx: context điều khiển timeout/cancellation
//   - req: thay đổi cần phê duyệt
//
// Returns:
//   - error: lỗi mạng hoặc webhook trả về status ngoài 2xx; nil nếu webhook tắt
func (g *Gateway) Notify(ctx context.Context, req *ChangeRequest) error {
	if !g.Enabled() {
		return nil
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{
			"correlationId": req.CorrelationID,
			"domainName":    req.DomainName,
		}).Error("📨 [APPROVAL] Lỗi khi gọi approval webhook")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		g.log.WithFields(logrus.Fields{
			"correlationId": req.CorrelationID,
			"domainName":    req.DomainName,
			"statusCode":    resp.StatusCode,
			"response":      string(bodyBytes),
		}).Error("📨 [APPROVAL] Approval webhook trả về lỗi")
		return fmt.Errorf("approval webhook returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	g.log.WithFields(logrus.Fields{
		"correlationId": req.CorrelationID,
		"domainName":    req.DomainName,
		"action":        req.Action,
	}).Info("📨 [APPROVAL] Đã gửi yêu cầu phê duyệt")
	return nil
}

// NotifyBatch gửi nhiều ChangeRequest theo kiểu best-effort: request lỗi
// được log và không chặn các request còn lại.
func (g *Gateway) NotifyBatch(ctx context.Context, reqs []*ChangeRequest) {
	if !g.Enabled() {
		return
	}
	for _, req := range reqs {
		if req == nil {
			continue
		}
		if err := g.Notify(ctx, req); err != nil {
			g.log.WithError(err).WithField("correlationId", req.CorrelationID).
				Warn("📨 [APPROVAL] Bỏ qua request lỗi, tiếp tục batch")
		}
	}
}
