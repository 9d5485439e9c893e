package annotate

import "sync"

// batchBuffer accumulates annotated records between flushes. The run itself
// is sequential; the lock only guards against future concurrent producers.
type batchBuffer[T any] struct {
	buffer     []T
	bufferLock sync.Mutex
}

func newBatchBuffer[T any](capacity int) *batchBuffer[T] {
	return &batchBuffer[T]{buffer: make([]T, 0, capacity)}
}

func (b *batchBuffer[T]) Add(item T) {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	b.buffer = append(b.buffer, item)
}

func (b *batchBuffer[T]) Size() int {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	return len(b.buffer)
}

// GetAndClear hands the accumulated batch to the caller and resets the
// buffer; returns nil when empty.
func (b *batchBuffer[T]) GetAndClear() []T {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	if len(b.buffer) == 0 {
		return nil
	}
	batch := b.buffer
	b.buffer = make([]T, 0, cap(batch))
	return batch
}
