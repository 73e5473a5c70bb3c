package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/internal/logging"
)

func TestInit(t *testing.T) {
	viper.Reset()

	Init()

	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if viper.GetString("parse_mode") != "strict" {
		t.Errorf("expected parse_mode default strict, got %q", viper.GetString("parse_mode"))
	}
	if viper.GetString("log_format") != "text" {
		t.Errorf("expected log_format default text, got %q", viper.GetString("log_format"))
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	viper.Reset()

	// Run from an empty directory so no stray config.yaml is picked up.
	t.Chdir(t.TempDir())

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Mode() != descriptor.ModeStrict {
		t.Errorf("default mode = %v", cfg.Mode())
	}
	if cfg.Format() != logging.FormatText {
		t.Errorf("default format = %v", cfg.Format())
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("dream_root: /srv/dream\nparse_mode: lenient\nlog_format: json\n")
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DreamRoot != "/srv/dream" {
		t.Errorf("dream_root = %q", cfg.DreamRoot)
	}
	if cfg.Mode() != descriptor.ModeLenient {
		t.Errorf("mode = %v, want lenient", cfg.Mode())
	}
	if cfg.Format() != logging.FormatJSON {
		t.Errorf("format = %v, want json", cfg.Format())
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	viper.Reset()
	Init()

	if _, err := Load("/non/existent/path/config.yaml"); err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_InvalidParseMode(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("parse_mode: sloppy\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	Init()

	if _, err := Load(configPath); err == nil {
		t.Error("Load() with an invalid parse_mode should error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("DREAMCTL_PARSE_MODE", "lenient")

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode() != descriptor.ModeLenient {
		t.Errorf("mode = %v, env override ignored", cfg.Mode())
	}
}

func TestValidate(t *testing.T) {
	if errs := Validate(Default()); len(errs) != 0 {
		t.Errorf("default config invalid: %v", errs)
	}

	if errs := Validate(nil); len(errs) != 1 {
		t.Errorf("nil config errs = %v", errs)
	}

	cfg := Default()
	cfg.Version = 0
	cfg.ParseMode = "sloppy"
	cfg.LogFormat = "xml"
	cfg.DreamRoot = "bad\x00path"

	errs := Validate(cfg)
	if len(errs) != 4 {
		t.Fatalf("errs = %v, want 4", errs)
	}
	if !errors.Is(errs[0], ErrVersionTooLow) {
		t.Errorf("errs[0] = %v", errs[0])
	}
	if !errors.Is(errs[2], ErrInvalidLogFormat) {
		t.Errorf("errs[2] = %v", errs[2])
	}
	var pathErr *PathError
	if !errors.As(errs[3], &pathErr) || pathErr.Field != "dream_root" {
		t.Errorf("errs[3] = %v", errs[3])
	}
}
