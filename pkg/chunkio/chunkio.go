// Package chunkio reads a finite byte stream as a sequence of fixed-size
// chunks.
//
// A Reader captures the total byte length of its source at construction and
// yields chunks of exactly chunkSize bytes until fewer than chunkSize bytes
// remain, in which case the final chunk carries exactly the remainder. A
// source that runs dry before the captured size is exhausted is an error,
// never a short chunk: only the final chunk of a stream may be short.
package chunkio

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrChunkSize is returned when a Reader is constructed with a non-positive chunk size.
	ErrChunkSize = errors.New("chunk size must be positive")

	// ErrSize is returned when a Reader is constructed with a negative total size.
	ErrSize = errors.New("total size must be non-negative")
)

// Reader yields fixed-size chunks from a finite byte source.
//
// Each call to Next allocates a fresh buffer; no buffer is reused across
// chunks. Reader is not safe for concurrent use.
type Reader struct {
	src       io.Reader
	remaining int64
	size      int64
	chunkSize int
}

// NewReader wraps src, which must deliver exactly size bytes, into a Reader
// producing chunks of at most chunkSize bytes each.
func NewReader(src io.Reader, size int64, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrChunkSize, chunkSize)
	}

	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}

	return &Reader{
		src:       src,
		remaining: size,
		size:      size,
		chunkSize: chunkSize,
	}, nil
}

// Next returns the next chunk of the stream.
//
// It returns io.EOF once the captured size has been consumed. A source that
// delivers fewer bytes than requested surfaces as an error wrapping
// io.ErrUnexpectedEOF.
func (r *Reader) Next() ([]byte, error) {
	if r.remaining == 0 {
		return nil, io.EOF
	}

	n := r.chunkSize
	if r.remaining < int64(n) {
		n = int(r.remaining)
	}

	chunk := make([]byte, n)

	if _, err := io.ReadFull(r.src, chunk); err != nil {
		// A clean EOF here still means the source lied about its size.
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("reading chunk: %w", err)
	}

	r.remaining -= int64(n)

	return chunk, nil
}

// Remaining reports how many bytes are left to consume.
func (r *Reader) Remaining() int64 {
	return r.remaining
}

// Size reports the total byte length captured at construction.
func (r *Reader) Size() int64 {
	return r.size
}

// Chunks reports the total number of chunks the stream divides into.
func (r *Reader) Chunks() int64 {
	if r.size == 0 {
		return 0
	}

	return (r.size + int64(r.chunkSize) - 1) / int64(r.chunkSize)
}
