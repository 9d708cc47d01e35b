package meter

import (
	"sync"

	"github.com/homewatt/tariffwatch/internal/domain"
)

// HistoryCapacity bounds the ring at one sample per minute for a day.
const HistoryCapacity = 1440

// HistoryBuffer is a fixed-capacity FIFO of periodic samples kept for
// charting. Appends come from the tick loop, snapshots from the HTTP layer,
// so access is guarded.
type HistoryBuffer struct {
	mu      sync.Mutex
	samples []domain.HistorySample
}

// NewHistoryBuffer returns an empty buffer.
func NewHistoryBuffer() *HistoryBuffer {
	return &HistoryBuffer{samples: make([]domain.HistorySample, 0, HistoryCapacity)}
}

// Append pushes a sample to the back, evicting from the front once the
// capacity is exceeded. Existing entries are never mutated.
func (b *HistoryBuffer) Append(s domain.HistorySample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, s)
	if excess := len(b.samples) - HistoryCapacity; excess > 0 {
		b.samples = append(b.samples[:0], b.samples[excess:]...)
	}
}

// Snapshot returns a copy of the buffered samples, oldest first.
func (b *HistoryBuffer) Snapshot() []domain.HistorySample {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.HistorySample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len reports the number of buffered samples.
func (b *HistoryBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}
