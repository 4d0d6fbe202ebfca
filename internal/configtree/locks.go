package configtree

import "sync"

// DomainLocker serialize các thao tác ghi trên cùng một domain key
// "lob/domainName/domainType". UPDATE là delete-rồi-ghi-lại nhiều file,
// không nguyên tử; lock theo key thu hẹp cửa sổ hai writer giẫm lên nhau.
// Reader không lấy lock: reconstruct chấp nhận đọc dở qua cơ chế warning.
type DomainLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDomainLocker tạo locker rỗng
func NewDomainLocker() *DomainLocker {
	return &DomainLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock giữ lock của key và trả về hàm unlock tương ứng.
// Mutex của mỗi key được tạo lười ở lần đầu sử dụng và không bao giờ thu hồi
// (số domain key hữu hạn và nhỏ).
func (l *DomainLocker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
