package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesdx/tagnav/internal/config"
	"github.com/mesdx/tagnav/internal/manager"
	"github.com/mesdx/tagnav/internal/tags"
)

const fakeTags = "!_TAG_FILE_FORMAT\t2\t/extended format/\n" +
	"sum\tmath.php\t5;\"\tf\n" +
	"summary\treport.php\t12;\"\tf\n" +
	"Invoice\tsrc/Invoice.php\t3;\"\tc\n"

// fakeCtags installs a shell script standing in for ctags. Generation writes
// fakeTags to the -f target; "-f -" prints one outline tag for the file.
func fakeCtags(t *testing.T) {
	t.Helper()
	script := `#!/bin/sh
prev=""; out=""; last=""
for a; do
  if [ "$prev" = "-f" ]; then out=$a; fi
  prev=$a; last=$a
done
if [ "$out" = "-" ]; then
  printf 'render\t%s\t7;"\tf\n!_TAG_PROGRAM_NAME\tfake\n' "$last"
  exit 0
fi
cat > "$out" <<'TAGS'
` + fakeTags + `TAGS
`
	path := filepath.Join(t.TempDir(), "ctags")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvCommand, path)
	t.Setenv(config.EnvEditor, "")
	t.Setenv("EDITOR", "")
}

// newWorkspace creates a workspace with the files tags point at and makes it
// the working directory.
func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"math.php", "report.php", "src/Invoice.php"} {
		p := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("<?php\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	t.Chdir(root)
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGenerateWritesAndLoadsTagFile(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)

	out, _, err := execute(t, "generate")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "3 tags") {
		t.Errorf("output = %q, want tag count", out)
	}
	if _, err := os.Stat(filepath.Join(root, config.DefaultTagFileName)); err != nil {
		t.Errorf("tag file not written: %v", err)
	}
}

func TestSearchWithoutTagFileFails(t *testing.T) {
	fakeCtags(t)
	newWorkspace(t)

	_, _, err := execute(t, "search", "sum")
	if !errors.Is(err, manager.ErrIndexMissing) {
		t.Fatalf("err = %v, want ErrIndexMissing", err)
	}
}

func TestSearchGenerateFlagBuildsMissingIndex(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)

	out, _, err := execute(t, "search", "sum", "--generate", "--first")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := filepath.Join(root, "math.php") + ":5\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestSearchListsMatchesAsTree(t *testing.T) {
	fakeCtags(t)
	newWorkspace(t)
	if _, _, err := execute(t, "generate"); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "search", "SUM")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, want := range []string{"math.php", "sum (function) :5", "report.php", "summary (function) :12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Invoice") {
		t.Errorf("output contains non-matching tag:\n%s", out)
	}
}

func TestSearchPathMode(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)
	if _, _, err := execute(t, "generate"); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "search", "@src/", "--first")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := filepath.Join(root, "src", "Invoice.php") + ":3\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestSearchEmptyQueryIsSilent(t *testing.T) {
	fakeCtags(t)
	newWorkspace(t)
	if _, _, err := execute(t, "generate"); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := execute(t, "search", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if out != "" || errOut != "" {
		t.Errorf("stdout=%q stderr=%q, want nothing", out, errOut)
	}
}

func TestSearchNoMatch(t *testing.T) {
	fakeCtags(t)
	newWorkspace(t)
	if _, _, err := execute(t, "generate"); err != nil {
		t.Fatal(err)
	}

	_, _, err := execute(t, "search", "nothing-like-this")
	if !errors.Is(err, tags.ErrSymbolNotFound) {
		t.Fatalf("err = %v, want ErrSymbolNotFound", err)
	}
}

func TestSearchMissingTargetIsReported(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)
	if _, _, err := execute(t, "generate"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(root, "math.php")); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := execute(t, "search", "sum", "--first")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	if !strings.Contains(errOut, "Cannot find the symbol: sum") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestFindToleratesTypos(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)
	if _, _, err := execute(t, "generate"); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "find", "invoce", "--first")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := filepath.Join(root, "src", "Invoice.php") + ":3\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestOutlineListsFileSymbols(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)

	out, _, err := execute(t, "outline", "report.php", "--first")
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	want := filepath.Join(root, "report.php") + ":7\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestOutlineOfUnsavedFileIsSilent(t *testing.T) {
	fakeCtags(t)
	newWorkspace(t)

	out, errOut, err := execute(t, "outline", "Untitled-1", "--first")
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	if out != "" || errOut != "" {
		t.Errorf("stdout=%q stderr=%q, want nothing", out, errOut)
	}
}

func TestHistoryRecordsRunsAndJumps(t *testing.T) {
	fakeCtags(t)
	newWorkspace(t)
	if _, _, err := execute(t, "generate"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, "search", "Invoice", "--first"); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "generate") {
		t.Errorf("history missing generate run:\n%s", out)
	}
	if !strings.Contains(out, "Invoice  src/Invoice.php:3") {
		t.Errorf("history missing jump:\n%s", out)
	}
}

func TestStatusReportsMissingTagFile(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)

	out, _, err := execute(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, root) {
		t.Errorf("status missing root:\n%s", out)
	}
	if !strings.Contains(out, "missing") {
		t.Errorf("status should report a missing tag file:\n%s", out)
	}
	if !strings.Contains(out, "not running") {
		t.Errorf("status should report no MCP server:\n%s", out)
	}
}

func TestInitWritesConfigAndDatabase(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)

	if _, _, err := execute(t, "init", "--yes"); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, f := range []string{"config.yaml", "tagnav.db"} {
		if _, err := os.Stat(filepath.Join(root, ".tagnav", f)); err != nil {
			t.Errorf("%s not created: %v", f, err)
		}
	}

	cfg, err := config.LoadFile(filepath.Join(root, ".tagnav"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Command != config.DefaultCommand {
		t.Errorf("saved command = %q, want the default rather than the environment override", cfg.Command)
	}
}

func TestLoadRespectsSizeLimit(t *testing.T) {
	fakeCtags(t)
	root := newWorkspace(t)
	dir := filepath.Join(root, ".tagnav")
	cfg := config.Default()
	cfg.MaxTagFileMB = 1
	if err := config.Save(cfg, dir); err != nil {
		t.Fatal(err)
	}
	big := bytes.Repeat([]byte("x\tf.php\t1;\"\tf\n"), 100000)
	if err := os.WriteFile(filepath.Join(root, cfg.TagFileName), big, 0644); err != nil {
		t.Fatal(err)
	}

	_, errOut, err := execute(t, "load")
	if !errors.Is(err, manager.ErrIndexTooLarge) {
		t.Fatalf("err = %v, want ErrIndexTooLarge", err)
	}
	if !strings.Contains(errOut, "larger than 1MB") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestResultTreeGroupsByFile(t *testing.T) {
	lines := []string{
		"a\tx.php\t1;\"\tf",
		"b\ty.php\t2;\"\tc",
		"c\tx.php\t3;\"\tf",
		"garbage",
	}
	out := resultTree("/repo", lines)
	if strings.Count(out, "x.php") != 1 {
		t.Errorf("x.php should appear once:\n%s", out)
	}
	if strings.Index(out, "x.php") > strings.Index(out, "y.php") {
		t.Errorf("files should keep first-seen order:\n%s", out)
	}
	if !strings.Contains(out, "b (class) :2") {
		t.Errorf("missing entry:\n%s", out)
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{50 * 1024 * 1024, "50.0 MiB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
