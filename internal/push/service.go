package push

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// Service điều phối việc đẩy config: tái tạo mảng JSON từ cây file rồi
// giao cho Client gửi sang môi trường đích
type Service struct {
	engine *configtree.Engine
	reader *configops.ReaderService
	client *Client
	log    *logrus.Logger
}

// NewService tạo push service trên engine và client đã có
func NewService(engine *configtree.Engine, client *Client) *Service {
	return &Service{
		engine: engine,
		reader: configops.NewReaderService(engine),
		client: client,
		log:    logger.GetPushLogger(),
	}
}

// Client trả về transport client bên dưới (để kiểm tra Enabled...)
func (s *Service) Client() *Client {
	return s.client
}

// PushDomain tái tạo một domain cho env rồi đẩy sang môi trường đích đó.
// Mỗi lần đẩy signin lại để lấy token mới.
func (s *Service) PushDomain(ctx context.Context, lob, domainName, domainType, env string) error {
	if err := validatePushEnv(env); err != nil {
		return err
	}
	result, err := s.engine.Reconstruct(lob, domainName, domainType, env)
	if err != nil {
		return err
	}

	token, err := s.client.Signin(ctx, lob, env)
	if err != nil {
		return err
	}

	batch := []configops.DomainValues{{
		DomainName:   result.DomainName,
		DomainType:   result.DomainType,
		DomainValues: result.JSONArray,
	}}
	return s.client.PushConfigs(ctx, lob, env, token, batch)
}

// PushLob đẩy toàn bộ domain của một LOB sang môi trường đích, từng domain
// một theo kiểu best-effort. Signin một lần cho cả đợt.
//
// Returns:
//   - map[string]bool: "domainName:domainType" -> đẩy thành công hay không
//   - error: lỗi chặn cả đợt (không liệt kê được domain, signin thất bại)
func (s *Service) PushLob(ctx context.Context, lob, env string) (map[string]bool, error) {
	if err := validatePushEnv(env); err != nil {
		return nil, err
	}
	domains, err := s.reader.GetDomainsAndTypes(lob)
	if err != nil {
		return nil, err
	}

	token, err := s.client.Signin(ctx, lob, env)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"lob": lob, "env": env, "domains": len(domains),
	}).Info("🚀 [PUSH] Bắt đầu đẩy toàn bộ LOB")

	results := make(map[string]bool)
	for domainName, types := range domains {
		for _, domainType := range types {
			key := domainName + ":" + domainType
			result, err := s.engine.Reconstruct(lob, domainName, domainType, env)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"lob": lob, "domainName": domainName, "domainType": domainType, "env": env,
				}).Warn("🚀 [PUSH] Tái tạo thất bại, bỏ qua domain: ", err)
				results[key] = false
				continue
			}

			batch := []configops.DomainValues{{
				DomainName:   result.DomainName,
				DomainType:   result.DomainType,
				DomainValues: result.JSONArray,
			}}
			if err := s.client.PushConfigs(ctx, lob, env, token, batch); err != nil {
				results[key] = false
				continue
			}
			results[key] = true
		}
	}

	s.log.WithFields(logrus.Fields{
		"lob": lob, "env": env, "total": len(results),
	}).Info("🚀 [PUSH] Đẩy LOB hoàn tất")
	return results, nil
}

// validatePushEnv kiểm tra env đẩy hợp lệ. "ALL" bị từ chối: mỗi lần push
// chỉ nhắm một môi trường đích, caller muốn đẩy nhiều env thì gọi nhiều lần.
func validatePushEnv(env string) error {
	if !configtree.IsSupportedEnv(env) {
		return common.NewValidationError("Unsupported environment: " + env)
	}
	if strings.EqualFold(env, configtree.EnvAll) {
		return common.NewValidationError("Push yêu cầu một môi trường cụ thể, không nhận ALL")
	}
	return nil
}
