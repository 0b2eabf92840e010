// Package stream provides a fan-out buffer for duplicating one fragment
// sequence to several independent consumers. Each reader advances at its
// own pace over a shared append-only buffer, so a slow consumer never
// blocks the producer or the other readers.
package stream

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrReaderClosed is returned by Next after the reader has been closed.
var ErrReaderClosed = errors.New("stream: reader closed")

// Chunk is one incrementally delivered fragment of an assistant reply.
type Chunk struct {
	Delta string
}

// Fanout buffers a chunk sequence written by a single producer and hands
// out any number of independent readers over it.
type Fanout struct {
	mu     sync.Mutex
	buf    []Chunk
	err    error
	done   bool
	signal chan struct{}
}

// NewFanout creates an empty fanout ready for writing.
func NewFanout() *Fanout {
	return &Fanout{signal: make(chan struct{})}
}

// Write appends a chunk and wakes all blocked readers. Writing after
// Close is a no-op.
func (f *Fanout) Write(c Chunk) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return
	}
	f.buf = append(f.buf, c)
	f.broadcast()
}

// Close marks the end of the sequence. A nil err means normal completion;
// otherwise readers observe err once they have drained the buffer.
// Subsequent calls are no-ops.
func (f *Fanout) Close(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return
	}
	f.done = true
	f.err = err
	f.broadcast()
}

// broadcast wakes waiting readers. Callers must hold f.mu.
func (f *Fanout) broadcast() {
	close(f.signal)
	f.signal = make(chan struct{})
}

// NewReader returns an independent reader positioned at the start of the
// sequence. Readers created after chunks were written still observe the
// full sequence.
func (f *Fanout) NewReader() *Reader {
	return &Reader{f: f}
}

// Reader is one consumer's cursor over a Fanout.
type Reader struct {
	f      *Fanout
	pos    int
	closed bool
}

// Next blocks until a chunk is available and returns it. It returns io.EOF
// after the last chunk of a normally completed sequence, the producer's
// error for an aborted one, and ctx.Err if the context is cancelled while
// waiting.
func (r *Reader) Next(ctx context.Context) (Chunk, error) {
	for {
		r.f.mu.Lock()
		if r.closed {
			r.f.mu.Unlock()
			return Chunk{}, ErrReaderClosed
		}
		if r.pos < len(r.f.buf) {
			c := r.f.buf[r.pos]
			r.pos++
			r.f.mu.Unlock()
			return c, nil
		}
		if r.f.done {
			err := r.f.err
			r.f.mu.Unlock()
			if err != nil {
				return Chunk{}, err
			}
			return Chunk{}, io.EOF
		}
		sig := r.f.signal
		r.f.mu.Unlock()

		select {
		case <-sig:
		case <-ctx.Done():
			return Chunk{}, ctx.Err()
		}
	}
}

// Close releases the reader; further Next calls fail with ErrReaderClosed.
// It is safe to call multiple times and on every exit path.
func (r *Reader) Close() {
	r.f.mu.Lock()
	r.closed = true
	r.f.mu.Unlock()
}
