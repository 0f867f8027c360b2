package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{Name: "etl"}
	cfg.ApplyDefaults()

	if cfg.Environment != "development" {
		t.Errorf("expected 'development', got %q", cfg.Environment)
	}
	if cfg.Engine.EmptyFold != EmptyFoldError {
		t.Errorf("expected empty fold policy %q, got %q", EmptyFoldError, cfg.Engine.EmptyFold)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Interval != 15*time.Second {
		t.Errorf("expected interval 15s, got %v", cfg.Telemetry.Interval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging defaults applied, got level %q", cfg.Logging.Level)
	}
	if cfg.Catalog.Dir != "flows" {
		t.Errorf("expected catalog dir 'flows', got %q", cfg.Catalog.Dir)
	}
}

func TestConfigApplyDefaultsKeepsValues(t *testing.T) {
	cfg := Config{Name: "etl", Environment: "production", Engine: EngineConfig{EmptyFold: EmptyFoldAbsent}}
	cfg.ApplyDefaults()

	if cfg.Environment != "production" {
		t.Errorf("expected 'production', got %q", cfg.Environment)
	}
	if cfg.Engine.EmptyFold != EmptyFoldAbsent {
		t.Errorf("expected %q, got %q", EmptyFoldAbsent, cfg.Engine.EmptyFold)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Name: "etl"}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.Name = "" }, "name"},
		{"invalid environment", func(c *Config) { c.Environment = "qa" }, "environment"},
		{"invalid empty fold", func(c *Config) { c.Engine.EmptyFold = "zero" }, "engine.empty_fold"},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "telemetry.sample_rate"},
		{"bad endpoint", func(c *Config) { c.Telemetry.Endpoint = "no-port" }, "telemetry.endpoint"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestTelemetryConversion(t *testing.T) {
	cfg := Config{Name: "etl", Version: "2.0.0", Environment: "staging", Telemetry: TelemetryConfig{
		Endpoint:   "collector:4318",
		SampleRate: 0.25,
		Interval:   time.Minute,
	}}

	tc := cfg.TracerConfig()
	if tc.ServiceName != "etl" || tc.ServiceVersion != "2.0.0" || tc.Endpoint != "collector:4318" || tc.SampleRate != 0.25 {
		t.Errorf("unexpected tracer config: %+v", tc)
	}
	mc := cfg.MeterConfig()
	if mc.Environment != "staging" || mc.Interval != time.Minute {
		t.Errorf("unexpected meter config: %+v", mc)
	}
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "etl.yml")

	yamlContent := `
name: etl
environment: staging
engine:
  empty_fold: absent
  tracing: true
telemetry:
  sample_rate: 0.5
  interval: 30s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load("etl", WithConfigFile(configPath), WithFileSystem(&mockFS{files: map[string]bool{configPath: true}}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Engine.EmptyFold != EmptyFoldAbsent {
		t.Errorf("expected empty fold 'absent', got %q", cfg.Engine.EmptyFold)
	}
	if !cfg.Engine.Tracing {
		t.Error("expected tracing enabled")
	}
	if cfg.Telemetry.SampleRate != 0.5 {
		t.Errorf("expected sample rate 0.5, got %v", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Interval != 30*time.Second {
		t.Errorf("expected interval 30s, got %v", cfg.Telemetry.Interval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "etl.yml")
	if err := os.WriteFile(configPath, []byte("name: etl\nengine:\n  empty_fold: error\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("TYPEDFLOW_ENGINE_EMPTY_FOLD", "absent")

	cfg, err := Load("etl", WithConfigFile(configPath), WithFileSystem(&mockFS{files: map[string]bool{configPath: true}}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.EmptyFold != EmptyFoldAbsent {
		t.Errorf("expected env override 'absent', got %q", cfg.Engine.EmptyFold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("nonexistent", WithConfigFile("/nonexistent/path.yml"), WithFileSystem(&mockFS{}))
	if err != nil {
		t.Fatalf("expected Load to succeed with missing file, got %v", err)
	}
	if cfg.Name != "nonexistent" {
		t.Errorf("expected name to default to 'nonexistent', got %q", cfg.Name)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "etl.yml")
	if err := os.WriteFile(configPath, []byte("name: etl\nengine:\n  empty_fold: sometimes\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := Load("etl", WithConfigFile(configPath), WithFileSystem(&mockFS{files: map[string]bool{configPath: true}}))
	if err == nil {
		t.Fatal("expected validation error")
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolverWithMockFS(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		wantConfig string
		wantEnv    string
	}{
		{"named config in cwd", []string{"./etl.yml"}, "./etl.yml", ""},
		{"named config wins over generic", []string{"./config.yml", "./etl.yml"}, "./etl.yml", ""},
		{"config dir", []string{"./config/config.yaml"}, "./config/config.yaml", ""},
		{"service env file first", []string{"./.env", "./config/.env.etl"}, "", "./config/.env.etl"},
		{"plain env file", []string{"../.env"}, "", "../.env"},
		{"nothing found", nil, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			resolver := &Resolver{FileSystem: fs}
			files := resolver.ResolveFiles("etl", LoaderConfig{})
			if files.ConfigFile != tc.wantConfig {
				t.Errorf("config file = %q, want %q", files.ConfigFile, tc.wantConfig)
			}
			if files.EnvFile != tc.wantEnv {
				t.Errorf("env file = %q, want %q", files.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("etl", LoaderConfig{ConfigFile: "/etc/etl.yml", EnvFile: "/etc/.env"})
	if files.ConfigFile != "/etc/etl.yml" || files.EnvFile != "/etc/.env" {
		t.Errorf("expected explicit paths to be kept, got %+v", files)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("ENGINE_EMPTY_FOLD")
	want := []string{"engine_empty_fold", "engine.empty.fold", "engine.empty_fold", "engine_empty.fold"}
	if !slices.Equal(got, want) {
		t.Errorf("envKeyVariants = %v, want %v", got, want)
	}
	if got := envKeyVariants("NAME"); !slices.Equal(got, []string{"name"}) {
		t.Errorf("envKeyVariants(NAME) = %v", got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)

	if lc.FileSystem != fs {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}
