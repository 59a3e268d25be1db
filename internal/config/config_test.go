package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danalexilewis/taskgraph/internal/fault"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerUser != "root" {
		t.Errorf("default server-user = %q, want root", cfg.ServerUser)
	}
}

func TestWriteDefaultThenLoad(t *testing.T) {
	dir := t.TempDir()
	if err := WriteDefault(dir); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Actor != "" || cfg.JSON {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	// Second write must not clobber.
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("actor: alice\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefault(dir); err != nil {
		t.Fatalf("WriteDefault (existing): %v", err)
	}
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Actor != "alice" {
		t.Errorf("existing config was clobbered: actor = %q", cfg.Actor)
	}
}

func TestLoadParseFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("actor: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if fault.CodeOf(err) != fault.ConfigParseFailed {
		t.Fatalf("expected CONFIG_PARSE_FAILED, got %v", err)
	}
}

func TestResolveActorPriority(t *testing.T) {
	t.Setenv("TG_ACTOR", "")
	t.Setenv("USER", "fallback-user")
	if got := ResolveActor("flagged", &Config{Actor: "configured"}); got != "flagged" {
		t.Errorf("flag should win, got %q", got)
	}
	t.Setenv("TG_ACTOR", "from-env")
	if got := ResolveActor("", &Config{Actor: "configured"}); got != "from-env" {
		t.Errorf("env should beat config, got %q", got)
	}
	t.Setenv("TG_ACTOR", "")
	if got := ResolveActor("", &Config{Actor: "configured"}); got != "configured" {
		t.Errorf("config should beat git/user fallbacks, got %q", got)
	}
}

func TestEnvOverridesDashedKey(t *testing.T) {
	t.Setenv("TG_SERVER_USER", "svc-account")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerUser != "svc-account" {
		t.Errorf("server-user = %q, want env override svc-account", cfg.ServerUser)
	}
}

func TestFindDirNotFound(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	_, err := FindDir()
	if fault.CodeOf(err) != fault.ConfigNotFound {
		t.Fatalf("expected CONFIG_NOT_FOUND, got %v", err)
	}
}

func TestFindDirWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, DirName), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)
	got, err := FindDir()
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}
	want := filepath.Join(root, DirName)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		if got != want {
			t.Errorf("FindDir = %q, want %q", got, want)
		}
	}
}
