// Package mergesvc chứa service cho domain merges: CRUD merge request trên
// MongoDB (qua base service) cộng hai nghiệp vụ vòng đời — duyệt (approve)
// và áp dụng (apply) batch cấu hình lên cây file.
// File: service.merge.go
package mergesvc

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/siddharth-2510/cofman/internal/api/base/service"
	"github.com/siddharth-2510/cofman/internal/api/merges/models"
	"github.com/siddharth-2510/cofman/internal/approval"
	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/global"
	"github.com/siddharth-2510/cofman/internal/logger"
	"github.com/siddharth-2510/cofman/internal/merge"
	"github.com/siddharth-2510/cofman/internal/utility"
)

// MergeService quản lý vòng đời merge request:
// PENDING -> APPROVED (Approve) -> MERGED/FAILED (Apply)
type MergeService struct {
	*basesvc.BaseServiceMongoImpl[models.Merge]
	engine       *configtree.Engine
	orchestrator *merge.Orchestrator
	approval     *approval.Gateway
	log          *logrus.Logger
}

// NewMergeService tạo mới MergeService trên engine cấu hình dùng chung
func NewMergeService() (*MergeService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Merges)
	if !exist {
		return nil, fmt.Errorf("failed to get merges collection: %v", common.ErrNotFound)
	}
	engine := global.ConfigEngine
	if engine == nil {
		return nil, fmt.Errorf("config engine chưa được khởi tạo")
	}

	webhookURL := ""
	if global.ServerConfig != nil {
		webhookURL = global.ServerConfig.ApprovalWebhookURL
	}

	return &MergeService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Merge](collection),
		engine:               engine,
		orchestrator:         merge.NewOrchestrator(engine),
		approval:             approval.NewGateway(webhookURL),
		log:                  logger.GetMergeLogger(),
	}, nil
}

// Create lưu merge request mới (state mặc định PENDING qua default tag)
// rồi gửi yêu cầu phê duyệt sang webhook trong background
func (s *MergeService) Create(ctx context.Context, data models.Merge) (models.Merge, error) {
	inserted, err := s.BaseServiceMongoImpl.InsertOne(ctx, data)
	if err != nil {
		return inserted, err
	}

	s.log.WithFields(logrus.Fields{
		"mergeId":    inserted.ID.Hex(),
		"fromBranch": inserted.FromBranch,
		"toBranch":   inserted.ToBranch,
		"entries":    len(inserted.DomainConfigs),
	}).Info("🔀 [MERGE] Đã tạo merge request")

	if s.approval.Enabled() {
		go s.notifyApproval(inserted)
	}
	return inserted, nil
}

// Approve chuyển merge request từ PENDING sang APPROVED và ghi người duyệt.
// Chuyển trạng thái là atomic (filter theo state) nên hai lần duyệt đồng thời
// chỉ một lần thắng.
//
// Returns:
//   - models.Merge: document sau khi duyệt
//   - error: ErrNotFound nếu ID không tồn tại; lỗi MergeState nếu đã duyệt/áp dụng rồi
func (s *MergeService) Approve(ctx context.Context, id primitive.ObjectID, merger string) (models.Merge, error) {
	filter := bson.M{"_id": id, "state": merge.StatePending}
	update := &basesvc.UpdateData{Set: map[string]interface{}{
		"state":  merge.StateApproved,
		"merger": merger,
	}}

	approved, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update, nil)
	if err == nil {
		s.log.WithFields(logrus.Fields{
			"mergeId": id.Hex(),
			"merger":  merger,
		}).Info("🔀 [MERGE] Merge request đã được duyệt")
		return approved, nil
	}
	if err != common.ErrNotFound {
		return models.Merge{}, err
	}

	// Không match: phân biệt ID sai với trạng thái sai
	current, findErr := s.FindOneById(ctx, id)
	if findErr != nil {
		return models.Merge{}, findErr
	}
	if current.State.IsMerged() || current.State.IsFailed() {
		return models.Merge{}, common.ErrMergeAlreadyMerged
	}
	return models.Merge{}, common.NewError(common.ErrCodeMergeState,
		fmt.Sprintf("Chỉ duyệt được merge đang chờ (PENDING), trạng thái hiện tại: %s", current.State),
		common.StatusConflict, nil)
}

// Apply áp dụng batch cấu hình của một merge request đã duyệt lên cây file.
// Kết quả (thành công hay thất bại) đều được ghi lại vào document:
// state chuyển sang MERGED khi mọi mục áp thành công, FAILED khi có mục lỗi
// hoặc batch không qua được validate.
//
// Returns:
//   - models.Merge: document sau khi áp dụng, Response chứa báo cáo chi tiết
//   - error: ErrMergeAlreadyMerged (409) nếu đã áp dụng rồi,
//     ErrMergeNotApplicable (412) nếu chưa duyệt, lỗi validate nếu batch hỏng
func (s *MergeService) Apply(ctx context.Context, id primitive.ObjectID) (models.Merge, error) {
	current, err := s.FindOneById(ctx, id)
	if err != nil {
		return models.Merge{}, err
	}
	if current.State.IsMerged() {
		return models.Merge{}, common.ErrMergeAlreadyMerged
	}
	if !current.State.CanApply() {
		return models.Merge{}, common.ErrMergeNotApplicable
	}

	batch, err := s.batchFromModel(&current)
	if err != nil {
		return models.Merge{}, err
	}

	report, err := s.orchestrator.Apply(batch)
	if err != nil {
		// Validate thất bại: cây file chưa bị chạm, ghi nhận FAILED kèm lý do
		failed := &merge.Report{Success: false, Errors: []string{err.Error()}}
		if _, uerr := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: map[string]interface{}{
			"state":    merge.StateFailed,
			"response": failed,
		}}); uerr != nil {
			s.log.WithField("mergeId", id.Hex()).Error("🔀 [MERGE] Không ghi được trạng thái FAILED: ", uerr)
		}
		return models.Merge{}, err
	}

	newState := merge.StateMerged
	if !report.Success {
		newState = merge.StateFailed
	}
	updated, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: map[string]interface{}{
		"state":    newState,
		"response": report,
	}})
	if err != nil {
		return models.Merge{}, err
	}

	s.log.WithFields(logrus.Fields{
		"mergeId": id.Hex(),
		"state":   string(newState),
		"applied": report.AppliedCount,
		"errors":  len(report.Errors),
	}).Info("🔀 [MERGE] Áp dụng merge request hoàn tất")
	return updated, nil
}

// EnsurePending kiểm tra merge request còn sửa/xóa được hay không
// (chỉ khi đang PENDING)
func (s *MergeService) EnsurePending(ctx context.Context, id primitive.ObjectID) error {
	current, err := s.FindOneById(ctx, id)
	if err != nil {
		return err
	}
	if !current.State.IsPending() {
		return common.NewError(common.ErrCodeMergeState,
			fmt.Sprintf("Merge request đã ở trạng thái %s, không sửa được nữa", current.State),
			common.StatusConflict, nil)
	}
	return nil
}

// batchFromModel chuyển DomainConfigs đã decode từ MongoDB thành batch cho
// orchestrator. Giá trị element khi decode mang kiểu bson (primitive.M,
// primitive.A) nên phải chuẩn hóa về JSON thuần trước khi ghi xuống cây.
func (s *MergeService) batchFromModel(m *models.Merge) ([]*configtree.DomainConfig, error) {
	batch := make([]*configtree.DomainConfig, 0, len(m.DomainConfigs))
	for i := range m.DomainConfigs {
		cfg := m.DomainConfigs[i]
		elements := make([]configtree.ConfigElement, len(cfg.Elements))
		for j, el := range cfg.Elements {
			normalized, err := utility.NormalizeJSON(el.Value)
			if err != nil {
				return nil, common.NewError(common.ErrCodeMergeApply,
					fmt.Sprintf("Không chuẩn hóa được giá trị element %s của %s: %v", el.Name, cfg.Key(), err),
					common.StatusInternalServerError, err)
			}
			el.Value = normalized
			elements[j] = el
		}
		cfg.Elements = elements
		batch = append(batch, &cfg)
	}
	return batch, nil
}

// notifyApproval gửi từng mục thay đổi sang approval webhook, kèm cặp JSON
// old/new để người duyệt so sánh. Chạy best-effort trong background nên lỗi
// chỉ được log, không ảnh hưởng tới response tạo merge.
func (s *MergeService) notifyApproval(m models.Merge) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	correlationID := m.ID.Hex()
	if m.ID.IsZero() {
		correlationID = approval.NewCorrelationID()
	}

	requests := make([]*approval.ChangeRequest, 0, len(m.DomainConfigs))
	for i := range m.DomainConfigs {
		cfg := &m.DomainConfigs[i]
		requests = append(requests, &approval.ChangeRequest{
			CorrelationID: correlationID,
			Requester:     m.Requester,
			FromBranch:    m.FromBranch,
			ToBranch:      m.ToBranch,
			Lob:           cfg.Lob,
			DomainName:    cfg.DomainName,
			DomainType:    cfg.DomainType,
			Env:           cfg.Env,
			Action:        string(cfg.Action),
			OldConfig:     s.currentConfigJSON(cfg),
			NewConfig:     s.proposedConfigJSON(cfg),
		})
	}
	s.approval.NotifyBatch(ctx, requests)
}

// currentConfigJSON tái tạo cấu hình hiện hành của mục thay đổi để hiển thị
// cạnh bản đề xuất. Domain chưa tồn tại (INSERT lần đầu) trả chuỗi rỗng.
func (s *MergeService) currentConfigJSON(cfg *configtree.DomainConfig) string {
	lob := cfg.Lob
	if lob == "" {
		lob = configtree.DefaultLob
	}
	env := configtree.EnvsToWrite(cfg.Env)[0]

	result, err := s.engine.Reconstruct(lob, cfg.DomainName, cfg.DomainType, env)
	if err != nil {
		return ""
	}
	return approval.PrettyJSON(result.JSONArray)
}

// proposedConfigJSON là bản đề xuất dưới dạng danh sách element.
// DELETE không có bản đề xuất.
func (s *MergeService) proposedConfigJSON(cfg *configtree.DomainConfig) string {
	if cfg.Action == configtree.ActionDelete {
		return ""
	}
	return approval.PrettyJSON(cfg.Elements)
}
