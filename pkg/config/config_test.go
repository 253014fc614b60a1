package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"RECON_DB_PATH", "RECON_IGNORE_BACKEND", "RECON_BOLT_PATH", "RECON_OUTPUT_DIR",
		"RECON_KEYWORDS_FILE", "RECON_NARRATIVE_MAX", "RECON_REPORT_PAGE_SIZE", "RECON_HTTP_ADDR", "DEBUG",
	} {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.IgnoreBackend != BackendSQLite {
		t.Errorf("IgnoreBackend = %q, want sqlite", cfg.Storage.IgnoreBackend)
	}
	if cfg.Storage.BoltPath != "./data/reconciler.bolt" {
		t.Errorf("BoltPath = %q", cfg.Storage.BoltPath)
	}
	if cfg.Output.NarrativeMax != 200 || cfg.Output.ReportPageSize != 40 {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
	if err := cfg.Validate([]string{"storage", "dbPath"}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("RECON_IGNORE_BACKEND", "")
	t.Setenv("RECON_NARRATIVE_MAX", "")
	t.Setenv("DEBUG", "")

	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "RECON_IGNORE_BACKEND=BOLT\nRECON_NARRATIVE_MAX=80\nDEBUG=true\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// godotenv does not override variables that are already set, even to ""
	os.Unsetenv("RECON_IGNORE_BACKEND")
	os.Unsetenv("RECON_NARRATIVE_MAX")
	os.Unsetenv("DEBUG")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.IgnoreBackend != BackendBolt {
		t.Errorf("IgnoreBackend = %q, want bolt", cfg.Storage.IgnoreBackend)
	}
	if cfg.Output.NarrativeMax != 80 {
		t.Errorf("NarrativeMax = %d, want 80", cfg.Output.NarrativeMax)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Storage: StorageConfig{DBPath: "x.db", IgnoreBackend: BackendSQLite},
			Output:  OutputConfig{Dir: "out", NarrativeMax: 200, ReportPageSize: 40},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		required [][]string
		wantErr  string
	}{
		{"valid", func(*Config) {}, [][]string{{"storage", "dbPath"}, {"output", "dir"}}, ""},
		{"unknown backend", func(c *Config) { c.Storage.IgnoreBackend = "redis" }, nil, "invalid RECON_IGNORE_BACKEND"},
		{"zero page size", func(c *Config) { c.Output.ReportPageSize = 0 }, nil, "must be positive"},
		{"missing keywords", func(*Config) {}, [][]string{{"output", "keywordsFile"}}, "output.keywordsFile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate(tt.required...)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
