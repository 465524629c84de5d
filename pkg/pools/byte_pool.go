package pools

import (
	"sync"
)

// Buffer size classes.
const (
	RecordSize = 32    // one factor record of either width
	SmallSize  = 256   // headers, short debug lines
	ChunkSize  = 4096  // batched records, export chunks
	LargeSize  = 16384 // snappy blocks
	MaxPool    = 65536 // Don't pool buffers larger than this
)

var classes = [...]int{RecordSize, SmallSize, ChunkSize, LargeSize, MaxPool}

// BytePool provides size-class based pooling for byte slices.
type BytePool struct {
	pools [len(classes)]sync.Pool
}

// NewBytePool creates a new byte pool.
func NewBytePool() *BytePool {
	p := &BytePool{}
	for i, size := range classes {
		size := size
		p.pools[i].New = func() any {
			b := make([]byte, 0, size)
			return &b
		}
	}
	return p
}

// classFor returns the smallest class holding size, or -1.
func classFor(size int) int {
	for i, c := range classes {
		if size <= c {
			return i
		}
	}
	return -1
}

// Get returns a byte slice with length 0 and at least the requested capacity.
func (p *BytePool) Get(size int) []byte {
	i := classFor(size)
	if i < 0 {
		return make([]byte, 0, size)
	}
	bp, ok := p.pools[i].Get().(*[]byte)
	if !ok || cap(*bp) < size {
		return make([]byte, 0, size)
	}
	return (*bp)[:0]
}

// GetSized returns a byte slice with exactly the requested length.
func (p *BytePool) GetSized(size int) []byte {
	b := p.Get(size)
	return b[:size]
}

// Put returns a byte slice to the pool for reuse.
// Slices larger than MaxPool are not pooled.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	if c > MaxPool {
		return
	}
	// File under the largest class the capacity fully covers.
	i := len(classes) - 1
	for i >= 0 && classes[i] > c {
		i--
	}
	if i < 0 {
		return
	}
	b = b[:0]
	p.pools[i].Put(&b)
}

var defaultBytePool = NewBytePool()

// GetBytes returns a byte slice from the default pool.
func GetBytes(size int) []byte {
	return defaultBytePool.Get(size)
}

// GetBytesSized returns a byte slice with exact length from the default pool.
func GetBytesSized(size int) []byte {
	return defaultBytePool.GetSized(size)
}

// PutBytes returns a byte slice to the default pool.
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}
