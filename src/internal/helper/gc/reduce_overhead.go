// Copyright (c) 2024 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ErrTooLarge is returned by [ReadAll] when the input exceeds the limit.
var ErrTooLarge = errors.New("gc: input exceeds size limit")

// Buffer defines the interface for a reusable byte buffer.
// It abstracts the [bytebufferpool.ByteBuffer] type to avoid direct dependencies.
type Buffer interface {
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	Bytes() []byte
	Len() int
	Reset()
	ReadFrom(r io.Reader) (int64, error)
}

// Pool defines the interface for buffer pooling.
// It abstracts the [bytebufferpool.Pool] type to avoid direct dependencies.
//
// Pool implementations must be safe for concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool interface.
type pool struct{ p *bytebufferpool.Pool }

// Get returns a buffer from the pool.
func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns a buffer to the pool.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// Default is the default buffer pool used for network and file reads.
//
// Example usage when reading an HTTP response body:
//
//	buf := gc.Default.Get()
//	defer func() {
//		buf.Reset()         // Reset the buffer to prevent data leaks
//		gc.Default.Put(buf) // Return the buffer to the pool for reuse
//	}()
//
//	if _, err := buf.ReadFrom(resp.Body); err != nil {
//		return nil, fmt.Errorf("error reading response body: %w", err)
//	}
//
// Most callers should prefer [ReadAll], which also bounds the size.
var Default Pool = &pool{p: &bytebufferpool.Pool{}}

// ReadAll reads r through a pooled buffer and returns a copy of the data.
// A limit greater than zero caps the number of bytes accepted; reading more
// than limit bytes fails with [ErrTooLarge].
func ReadAll(p Pool, r io.Reader, limit int64) ([]byte, error) {
	if p == nil {
		p = Default
	}

	buf := p.Get()
	defer func() {
		buf.Reset()
		p.Put(buf)
	}()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, ErrTooLarge
	}
	return append([]byte(nil), buf.Bytes()...), nil
}
