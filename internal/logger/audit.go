package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction mô tả một thao tác làm thay đổi cây cấu hình
type AuditAction struct {
	Action     string                 `json:"action"`      // Tên hành động (ví dụ: "config_insert", "merge_apply")
	LOB        string                 `json:"lob"`         // LOB bị tác động
	DomainName string                 `json:"domain_name"` // Domain name bị tác động
	DomainType string                 `json:"domain_type"` // Domain type bị tác động
	IP         string                 `json:"ip"`          // IP address
	UserAgent  string                 `json:"user_agent"`  // User agent
	Details    map[string]interface{} `json:"details"`     // Chi tiết bổ sung
	Timestamp  time.Time              `json:"timestamp"`   // Thời gian
}

// LogAction log một hành động audit từ HTTP request
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	auditLogger := GetAuditLogger()

	if details == nil {
		details = make(map[string]interface{})
	}

	audit := AuditAction{
		Action:    action,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Details:   details,
		Timestamp: time.Now(),
	}

	if lob, ok := details["lob"].(string); ok {
		audit.LOB = lob
	}
	if domainName, ok := details["domain_name"].(string); ok {
		audit.DomainName = domainName
	}
	if domainType, ok := details["domain_type"].(string); ok {
		audit.DomainType = domainType
	}

	if requestID := c.Get("X-Request-ID"); requestID != "" {
		audit.Details["request_id"] = requestID
	}

	auditLogger.WithFields(logrus.Fields{
		"action":      audit.Action,
		"lob":         audit.LOB,
		"domain_name": audit.DomainName,
		"domain_type": audit.DomainType,
		"ip":          audit.IP,
		"user_agent":  audit.UserAgent,
		"details":     audit.Details,
		"timestamp":   audit.Timestamp,
	}).Info("Audit log")
}

// LogConfigChange log các thao tác ghi lên cây cấu hình (insert/update/delete/copy/import)
func LogConfigChange(operation string, lob string, domainName string, domainType string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["lob"] = lob
	details["domain_name"] = domainName
	details["domain_type"] = domainType

	LogAction("config_"+operation, c, details)
}

// LogMergeAction log các thao tác trên merge request (create/approve/apply)
func LogMergeAction(operation string, mergeID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["merge_id"] = mergeID

	LogAction("merge_"+operation, c, details)
}
