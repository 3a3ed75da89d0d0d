// Package pool provides growable byte-buffer pooling for two
// allocation-heavy paths: the writer's sparse-range scratch buffer (taken
// on the first sparse frame, returned on Close) and the reader's
// decompression window (taken on the first decompressed block, resized
// for each block it holds, returned on Close).
package pool

import "sync"

const (
	// WindowBufferDefaultSize seeds a reader's decompression-window pool
	// entries; real windows are almost always larger (a V2 block holds at
	// least 10 frames) and grow on first use.
	WindowBufferDefaultSize = 1024 * 64 // 64KiB
	// WindowBufferMaxThreshold discards pooled windows larger than this so a
	// single oversized block doesn't pin memory for the life of the reader.
	WindowBufferMaxThreshold = 1024 * 1024 * 16 // 16MiB

	// WriteBufferDefaultSize seeds a writer's sparse-range scratch buffer.
	WriteBufferDefaultSize = 1024 * 1024 // 1MiB
	// WriteBufferMaxThreshold discards pooled write buffers larger than this.
	WriteBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer is a growable byte slice with pool-friendly reset semantics.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer, retaining its allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// SetLength sets the length of the buffer to n, growing it first if
// needed. Panics if n is negative.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 {
		panic("pool: SetLength: negative length")
	}

	bb.Grow(n - len(bb.B))
	bb.B = bb.B[:n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating. Does nothing if sufficient capacity already exists.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if requiredBytes <= 0 {
		return
	}

	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := requiredBytes
	if cap(bb.B) > 0 {
		// Grow by 25% of current capacity when that's enough, to amortize
		// reallocation cost across repeated window/block growth.
		quarter := cap(bb.B) / 4
		if quarter > growBy {
			growBy = quarter
		}
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer, growing it as needed. Implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool is a sync.Pool of ByteBuffers, with an optional maximum
// size threshold above which a returned buffer is discarded instead of
// retained, to avoid a single oversized block or compression run pinning
// memory indefinitely.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize and
// are discarded on Put if they grew past maxThreshold.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse, discarding it instead if
// it grew past the pool's maxThreshold.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	windowPool   = NewByteBufferPool(WindowBufferDefaultSize, WindowBufferMaxThreshold)
	writeBufPool = NewByteBufferPool(WriteBufferDefaultSize, WriteBufferMaxThreshold)
)

// GetWindowBuffer retrieves a ByteBuffer from the shared decompression-window pool.
func GetWindowBuffer() *ByteBuffer {
	return windowPool.Get()
}

// PutWindowBuffer returns a ByteBuffer to the shared decompression-window pool.
func PutWindowBuffer(bb *ByteBuffer) {
	windowPool.Put(bb)
}

// GetWriteBuffer retrieves a ByteBuffer from the shared write-output-buffer pool.
func GetWriteBuffer() *ByteBuffer {
	return writeBufPool.Get()
}

// PutWriteBuffer returns a ByteBuffer to the shared write-output-buffer pool.
func PutWriteBuffer(bb *ByteBuffer) {
	writeBufPool.Put(bb)
}
