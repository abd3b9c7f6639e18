package tagfile

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ctags.tmp")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func collect(t *testing.T, r Reader, path string) ([]string, error) {
	t.Helper()
	var lines []string
	err := r.ReadLines(context.Background(), path, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	return lines, err
}

func TestReadLines(t *testing.T) {
	path := writeFile(t, "!_TAG_FILE_FORMAT\t2\nsum\tmath.php\t5;\"\tf\r\nlast\tx.php\t1;\"\tf")
	lines, err := collect(t, Reader{}, path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{"!_TAG_FILE_FORMAT\t2", "sum\tmath.php\t5;\"\tf", "last\tx.php\t1;\"\tf"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := collect(t, Reader{}, filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestReadLinesCallbackError(t *testing.T) {
	path := writeFile(t, "a\nb\nc\n")
	stop := errors.New("stop")
	calls := 0
	err := Reader{}.ReadLines(context.Background(), path, func(string) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestReadLinesLineTooLong(t *testing.T) {
	for _, n := range []int{200, 1000} {
		path := writeFile(t, "short\n"+strings.Repeat("x", n)+"\n")
		lines, err := collect(t, Reader{MaxLineBytes: 64}, path)
		if !errors.Is(err, bufio.ErrTooLong) {
			t.Errorf("%d-byte line: err = %v, want bufio.ErrTooLong", n, err)
		}
		if !reflect.DeepEqual(lines, []string{"short"}) {
			t.Errorf("%d-byte line: lines = %q, want only the short line", n, lines)
		}
	}
}

func TestReadLinesSmallLimitAcceptsShortLines(t *testing.T) {
	path := writeFile(t, "sum\tmath.php\t5;\"\tf\n")
	lines, err := collect(t, Reader{MaxLineBytes: 64}, path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("lines = %q, want one line", lines)
	}
}
