// Package tagfile streams tag files from disk one line at a time.
package tagfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultMaxLineBytes is the longest tag line accepted by a zero Reader.
const DefaultMaxLineBytes = 1024 * 1024

// Reader reads a file line by line without holding the whole file in memory.
type Reader struct {
	// MaxLineBytes bounds a single line. Zero means DefaultMaxLineBytes.
	MaxLineBytes int
}

// ReadLines calls fn for every line of path, in order, with the line
// terminator ("\n" or "\r\n") removed. It stops at the first error returned by
// fn, by the underlying read, or when ctx is done.
func (r Reader) ReadLines(ctx context.Context, path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	maxLine := r.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	// Scanner accepts tokens up to max(cap(buf), maxLine), so the initial
	// buffer must not exceed the limit.
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	n := 0
	for scanner.Scan() {
		n++
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s line %d: %w", path, n+1, err)
	}
	return nil
}
