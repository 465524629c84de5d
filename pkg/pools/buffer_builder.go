package pools

import "encoding/binary"

// BufferBuilder builds encoded records on a pooled buffer.
type BufferBuilder struct {
	buf  []byte
	pool *BytePool
}

// NewBufferBuilder creates a new buffer builder with the given initial capacity.
func NewBufferBuilder(initialCap int) *BufferBuilder {
	return &BufferBuilder{
		buf:  defaultBytePool.Get(initialCap),
		pool: defaultBytePool,
	}
}

// Write appends bytes to the buffer.
func (b *BufferBuilder) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *BufferBuilder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteUint64LE appends a uint64 in little-endian order.
func (b *BufferBuilder) WriteUint64LE(v uint64) {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, v)
}

// WriteUint32LE appends a uint32 in little-endian order.
func (b *BufferBuilder) WriteUint32LE(v uint32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
}

// WriteUvarint appends v as an unsigned varint.
func (b *BufferBuilder) WriteUvarint(v uint64) {
	b.buf = binary.AppendUvarint(b.buf, v)
}

// WriteString appends a string.
func (b *BufferBuilder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// Bytes returns the built buffer. It is valid until the next write, Reset or Release.
func (b *BufferBuilder) Bytes() []byte {
	return b.buf
}

// Len returns the current length of the buffer.
func (b *BufferBuilder) Len() int {
	return len(b.buf)
}

// Reset resets the buffer for reuse.
func (b *BufferBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Release returns the buffer to the pool. After Release, the builder should not be used.
func (b *BufferBuilder) Release() {
	if b.pool != nil && b.buf != nil {
		b.pool.Put(b.buf)
	}
	b.buf = nil
}
