package conversation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Input supplies lines typed by the operator
type Input interface {
	// ReadLine shows prompt and blocks until a line is available, the
	// input is exhausted (io.EOF) or ctx is done.
	ReadLine(ctx context.Context, prompt string) (string, error)
}

type lineResult struct {
	line string
	err  error
}

// LineReader reads lines from a terminal or pipe. The underlying reader
// is drained by a single goroutine so a pending read can be abandoned
// when the context is cancelled.
type LineReader struct {
	out   io.Writer
	src   *bufio.Reader
	once  sync.Once
	lines chan lineResult
}

// NewLineReader creates a LineReader writing prompts to out
func NewLineReader(in io.Reader, out io.Writer) *LineReader {
	return &LineReader{
		out:   out,
		src:   bufio.NewReader(in),
		lines: make(chan lineResult),
	}
}

func (r *LineReader) start() {
	go func() {
		for {
			line, err := r.src.ReadString('\n')
			if err != nil && line == "" {
				r.lines <- lineResult{err: err}
				close(r.lines)
				return
			}
			r.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
		}
	}()
}

// ReadLine implements Input
func (r *LineReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	r.once.Do(r.start)

	if prompt != "" {
		fmt.Fprint(r.out, prompt)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}
