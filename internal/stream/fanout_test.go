package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, r *Reader) (string, error) {
	t.Helper()
	defer r.Close()
	var sb strings.Builder
	for {
		c, err := r.Next(context.Background())
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(c.Delta)
	}
}

func TestFanoutTwoReadersSeeFullSequence(t *testing.T) {
	f := NewFanout()
	a := f.NewReader()
	b := f.NewReader()

	go func() {
		for _, d := range []string{"Hel", "lo, ", "world"} {
			f.Write(Chunk{Delta: d})
		}
		f.Close(nil)
	}()

	var wg sync.WaitGroup
	results := make([]string, 2)
	for i, r := range []*Reader{a, b} {
		wg.Add(1)
		go func(i int, r *Reader) {
			defer wg.Done()
			got, err := drain(t, r)
			assert.Equal(t, io.EOF, err)
			results[i] = got
		}(i, r)
	}
	wg.Wait()

	assert.Equal(t, "Hello, world", results[0])
	assert.Equal(t, "Hello, world", results[1])
}

func TestFanoutSlowReaderIndependent(t *testing.T) {
	f := NewFanout()
	fast := f.NewReader()
	slow := f.NewReader()

	for i := 0; i < 100; i++ {
		f.Write(Chunk{Delta: "x"})
	}
	f.Close(nil)

	// The fast reader drains fully before the slow one reads anything.
	got, err := drain(t, fast)
	require.Equal(t, io.EOF, err)
	assert.Len(t, got, 100)

	got, err = drain(t, slow)
	require.Equal(t, io.EOF, err)
	assert.Len(t, got, 100)
}

func TestFanoutErrorAfterBufferedChunks(t *testing.T) {
	boom := errors.New("upstream reset")
	f := NewFanout()
	r := f.NewReader()

	f.Write(Chunk{Delta: "partial"})
	f.Close(boom)

	got, err := drain(t, r)
	assert.Equal(t, "partial", got)
	assert.Equal(t, boom, err)
}

func TestFanoutLateReaderSeesHistory(t *testing.T) {
	f := NewFanout()
	f.Write(Chunk{Delta: "a"})
	f.Write(Chunk{Delta: "b"})
	f.Close(nil)

	r := f.NewReader()
	got, err := drain(t, r)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "ab", got)
}

func TestFanoutNextHonorsContext(t *testing.T) {
	f := NewFanout()
	r := f.NewReader()
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFanoutClosedReader(t *testing.T) {
	f := NewFanout()
	r := f.NewReader()
	r.Close()
	r.Close() // idempotent

	_, err := r.Next(context.Background())
	assert.ErrorIs(t, err, ErrReaderClosed)
}

func TestFanoutWriteAfterCloseIgnored(t *testing.T) {
	f := NewFanout()
	f.Close(nil)
	f.Write(Chunk{Delta: "late"})

	r := f.NewReader()
	got, err := drain(t, r)
	assert.Equal(t, io.EOF, err)
	assert.Empty(t, got)
}
