// Package pools provides byte buffer pooling for the encoders.
//
//   - BytePool: size-class based byte slice pooling
//   - BufferBuilder: little-endian and varint record construction on pooled buffers
package pools
