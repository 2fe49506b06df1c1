package trigger

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnceRunsSingleTime(t *testing.T) {
	var calls atomic.Int32
	fire := Once(func() { calls.Add(1) })

	assert.True(t, fire())
	assert.False(t, fire())
	assert.False(t, fire())
	assert.Equal(t, int32(1), calls.Load())
}

func TestOnceConcurrent(t *testing.T) {
	var calls atomic.Int32
	fire := Once(func() { calls.Add(1) })

	var wg sync.WaitGroup
	var winners atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fire() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), winners.Load())
}

func TestTerminalWaitReadsOneKey(t *testing.T) {
	term := NewReaderTerminal(strings.NewReader("sq"))
	assert.False(t, term.IsTerminal())

	key, err := term.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte('s'), key)
}

func TestTerminalListen(t *testing.T) {
	called := false
	err := NewReaderTerminal(strings.NewReader("x")).Listen(context.Background(), func() { called = true })
	require.NoError(t, err)
	assert.True(t, called)
}

func TestTerminalEOF(t *testing.T) {
	called := false
	err := NewReaderTerminal(strings.NewReader("")).Listen(context.Background(), func() { called = true })
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, called)
}

func TestTerminalContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewReaderTerminal(r).Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTerminalCancelLeavesInputUnread(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pipes are not cancelable on windows")
	}
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = NewTerminal(r).Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = w.Write([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, r.SetReadDeadline(time.Now().Add(2*time.Second)))

	buf := make([]byte, 1)
	n, err := r.Read(buf)
	require.NoError(t, err, "byte taken by the cancelled wait")
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('k'), buf[0])
}

func TestTerminalCtrlC(t *testing.T) {
	called := false
	err := NewReaderTerminal(strings.NewReader("\x03")).Listen(context.Background(), func() { called = true })
	assert.ErrorIs(t, err, ErrInterrupt)
	assert.False(t, called)
}

func TestCRLFWriter(t *testing.T) {
	var buf strings.Builder
	w := NewCRLFWriter(&buf)

	n, err := w.Write([]byte("a\nb\r\nc"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = w.Write([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\ncplain", buf.String())
}
