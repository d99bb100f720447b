// Package buffer provides the growable read/write byte buffer the codec
// marshals and unmarshals AMQP primitives against. It plays the same role
// as the teacher's internal/buffer package referenced throughout types.go,
// generalized here to back both directions of the 0-9-1 wire codec.
package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrShort is returned when a read would run past the end of the buffer.
var ErrShort = errors.New("buffer: short read")

// Buffer is a single contiguous byte slice with independent write-append
// and read-consume cursors. It is not safe for concurrent use; callers
// that share a Buffer across goroutines must hold their own mutex around it.
type Buffer struct {
	b   []byte
	off int
}

// New wraps an existing slice for reading; off starts at zero.
func New(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Reset discards any buffered content and resets both cursors.
func (b *Buffer) Reset() {
	b.b = b.b[:0]
	b.off = 0
}

// Bytes returns the unread portion of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.b[b.off:]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.b) - b.off
}

// Cap returns the capacity of the underlying storage.
func (b *Buffer) Cap() int {
	return cap(b.b)
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	b.b = append(b.b, c)
	return nil
}

// AppendUint8 appends an unsigned octet.
func (b *Buffer) AppendUint8(v uint8) {
	b.b = append(b.b, v)
}

// AppendUint16 appends a big-endian short.
func (b *Buffer) AppendUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

// AppendUint32 appends a big-endian long.
func (b *Buffer) AppendUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

// AppendUint64 appends a big-endian longlong.
func (b *Buffer) AppendUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

// Next consumes and returns the next n bytes, or ErrShort if unavailable.
func (b *Buffer) Next(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, ErrShort
	}
	out := b.b[b.off : b.off+n]
	b.off += n
	return out, nil
}

// ReadByte consumes and returns the next octet.
func (b *Buffer) ReadByte() (byte, error) {
	n, err := b.Next(1)
	if err != nil {
		return 0, err
	}
	return n[0], nil
}

// ReadUint16 consumes a big-endian short.
func (b *Buffer) ReadUint16() (uint16, error) {
	n, err := b.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(n), nil
}

// ReadUint32 consumes a big-endian long.
func (b *Buffer) ReadUint32() (uint32, error) {
	n, err := b.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(n), nil
}

// ReadUint64 consumes a big-endian longlong.
func (b *Buffer) ReadUint64() (uint64, error) {
	n, err := b.Next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(n), nil
}

// Peek returns the next n bytes without consuming them.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, ErrShort
	}
	return b.b[b.off : b.off+n], nil
}
