package trigger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// ErrInterrupt is returned by Listen when the key was Ctrl+C, which raw mode
// delivers as a byte instead of a signal.
var ErrInterrupt = errors.New("interrupted from keyboard")

const ctrlC = 0x03

// Terminal waits for a single key press on a terminal. When the input is a
// TTY it is switched to raw mode for the wait so the key is seen without
// Enter, and restored afterwards.
type Terminal struct {
	in io.Reader
	fd int
}

// NewTerminal reads from f.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{in: f, fd: int(f.Fd())}
}

// NewReaderTerminal reads from r without touching terminal modes.
func NewReaderTerminal(r io.Reader) *Terminal {
	return &Terminal{in: r, fd: -1}
}

// IsTerminal reports whether the input is an interactive terminal.
func (t *Terminal) IsTerminal() bool {
	return t.fd >= 0 && term.IsTerminal(t.fd)
}

// Wait blocks until one byte is read and returns it. It returns the context
// error if ctx ends first and io.EOF when the input closes without a key.
// Files are read through a cancelable reader, so a cancelled Wait leaves no
// read pending; other readers may keep one blocked until the next byte.
func (t *Terminal) Wait(ctx context.Context) (byte, error) {
	if t.IsTerminal() {
		state, err := term.MakeRaw(t.fd)
		if err != nil {
			return 0, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer term.Restore(t.fd, state)
	}

	in := t.in
	var cancelable cancelreader.CancelReader
	if _, ok := t.in.(*os.File); ok {
		if cr, err := cancelreader.NewReader(t.in); err == nil {
			cancelable = cr
			in = cr
			defer cr.Close()
		}
	}

	type result struct {
		key byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if n == 1 {
				ch <- result{key: buf[0]}
				return
			}
			if err != nil {
				ch <- result{err: err}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		if cancelable != nil && cancelable.Cancel() {
			<-ch
		}
		return 0, ctx.Err()
	case r := <-ch:
		return r.key, r.err
	}
}

// Listen calls fn after the first key press. It returns without calling fn
// when ctx ends, the input closes or the key is Ctrl+C.
func (t *Terminal) Listen(ctx context.Context, fn func()) error {
	key, err := t.Wait(ctx)
	if err != nil {
		return err
	}
	if key == ctrlC {
		return ErrInterrupt
	}
	fn()
	return nil
}

// CRLFWriter rewrites "\n" as "\r\n". Raw mode turns off output processing,
// so text written while a Terminal waits needs it to keep its columns.
type CRLFWriter struct {
	w io.Writer
}

// NewCRLFWriter wraps w.
func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

func (c *CRLFWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return c.w.Write(p)
	}
	converted := bytes.ReplaceAll(bytes.ReplaceAll(p, []byte("\r\n"), []byte("\n")), []byte("\n"), []byte("\r\n"))
	if _, err := c.w.Write(converted); err != nil {
		return 0, err
	}
	return len(p), nil
}
