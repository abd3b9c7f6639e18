package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvCommand, "")
	t.Setenv(EnvEditor, "")
	t.Setenv("EDITOR", "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if got := cfg.MaxTagFileBytes(); got != 50*1024*1024 {
		t.Errorf("MaxTagFileBytes() = %d", got)
	}
}

func TestSaveThenLoadKeepsValues(t *testing.T) {
	t.Setenv(EnvCommand, "")
	t.Setenv(EnvEditor, "")
	dir := filepath.Join(t.TempDir(), ".tagnav")

	cfg := Default()
	cfg.TagFileName = "tags"
	cfg.MaxTagFileMB = 5
	cfg.Editor = "vim"
	cfg.WatchDebounce = time.Second
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestLoadFillsMissingFieldsFromDefaults(t *testing.T) {
	t.Setenv(EnvCommand, "")
	dir := t.TempDir()
	if err := os.WriteFile(ConfigPath(dir), []byte("tagFile: tags\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TagFileName != "tags" {
		t.Errorf("TagFileName = %q, want tags", cfg.TagFileName)
	}
	if cfg.Command != DefaultCommand {
		t.Errorf("Command = %q, want default", cfg.Command)
	}
	if cfg.GenerateOptions != DefaultGenerateOptions {
		t.Errorf("GenerateOptions = %q, want default", cfg.GenerateOptions)
	}
	if cfg.MaxTagFileMB != DefaultMaxTagFileMB {
		t.Errorf("MaxTagFileMB = %d, want default", cfg.MaxTagFileMB)
	}
}

func TestLoadReadsTOMLWhenYAMLIsAbsent(t *testing.T) {
	t.Setenv(EnvCommand, "")
	dir := t.TempDir()
	data := "command = \"uctags\"\nmax_tag_file_mb = 10\n"
	if err := os.WriteFile(filepath.Join(dir, tomlConfigFileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Command != "uctags" {
		t.Errorf("Command = %q, want uctags", cfg.Command)
	}
	if cfg.MaxTagFileMB != 10 {
		t.Errorf("MaxTagFileMB = %d, want 10", cfg.MaxTagFileMB)
	}
	if cfg.TagFileName != DefaultTagFileName {
		t.Errorf("TagFileName = %q, want default", cfg.TagFileName)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(ConfigPath(dir), []byte("command: from-file\neditor: nano\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCommand, "/opt/ctags")
	t.Setenv(EnvEditor, "hx")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Command != "/opt/ctags" {
		t.Errorf("Command = %q, want env value", cfg.Command)
	}
	if cfg.Editor != "hx" {
		t.Errorf("Editor = %q, want env value", cfg.Editor)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(ConfigPath(dir), []byte("command: [unterminated\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadFileIgnoresEnvironment(t *testing.T) {
	t.Setenv(EnvCommand, "/opt/ctags")
	t.Setenv(EnvEditor, "hx")

	cfg, err := LoadFile(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Command != DefaultCommand || cfg.Editor != "" {
		t.Errorf("LoadFile() = %+v, want defaults", cfg)
	}
}
