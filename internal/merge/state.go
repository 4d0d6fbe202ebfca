// Package merge điều phối việc áp một batch cấu hình đã duyệt lên cây file:
// sắp thứ tự an toàn, validate all-or-nothing trước khi ghi, rồi áp từng mục
// theo kiểu best-effort. Vòng đời yêu cầu merge đi qua các trạng thái
// PENDING -> APPROVED -> MERGED/FAILED.
package merge

// MergeState là trạng thái vòng đời của một yêu cầu merge
type MergeState string

const (
	StatePending  MergeState = "PENDING"  // mới tạo, chờ duyệt
	StateApproved MergeState = "APPROVED" // đã duyệt, chờ áp dụng
	StateMerged   MergeState = "MERGED"   // đã áp dụng thành công
	StateFailed   MergeState = "FAILED"   // áp dụng thất bại
)

// IsValid kiểm tra giá trị trạng thái hợp lệ
func (s MergeState) IsValid() bool {
	switch s {
	case StatePending, StateApproved, StateMerged, StateFailed:
		return true
	}
	return false
}

func (s MergeState) IsPending() bool  { return s == StatePending }
func (s MergeState) IsApproved() bool { return s == StateApproved }
func (s MergeState) IsMerged() bool   { return s == StateMerged }
func (s MergeState) IsFailed() bool   { return s == StateFailed }

// CanApprove: chỉ yêu cầu đang chờ mới duyệt được
func (s MergeState) CanApprove() bool { return s == StatePending }

// CanApply: chỉ yêu cầu đã duyệt mới áp dụng được
func (s MergeState) CanApply() bool { return s == StateApproved }
