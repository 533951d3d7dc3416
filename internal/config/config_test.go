package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		DocumentStore: DocumentStoreConfig{
			Path: "data/docstore",
		},
		SearchIndex: SearchIndexConfig{
			Path: "data/searchindex",
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			APIKey:   "test-key",
			Model:    "text-embedding-3-small",
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_SharedStorePath(t *testing.T) {
	cfg := validConfig()
	cfg.SearchIndex.Path = cfg.DocumentStore.Path

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for shared store path")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.DocumentStore.Path != "data/docstore" {
		t.Errorf("expected DocumentStore.Path='data/docstore', got %q", cfg.DocumentStore.Path)
	}
	if cfg.SearchIndex.Path != "data/searchindex" {
		t.Errorf("expected SearchIndex.Path='data/searchindex', got %q", cfg.SearchIndex.Path)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected Provider='openai', got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default model, got %q", cfg.Embedding.Model)
	}
	if cfg.Cache.ReadinessTimeout != 10 {
		t.Errorf("expected Cache.ReadinessTimeout=10, got %d", cfg.Cache.ReadinessTimeout)
	}
	if cfg.Counter.QueueSize != 1024 {
		t.Errorf("expected Counter.QueueSize=1024, got %d", cfg.Counter.QueueSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:          HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		DocumentStore: DocumentStoreConfig{Path: "/var/lib/extractor/docs"},
		Embedding:     EmbeddingConfig{Provider: "nebius", Model: "custom-model"},
		Counter:       CounterConfig{QueueSize: 16},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.DocumentStore.Path != "/var/lib/extractor/docs" {
		t.Errorf("expected custom path, got %q", cfg.DocumentStore.Path)
	}
	if cfg.Embedding.Model != "custom-model" {
		t.Errorf("expected custom model, got %q", cfg.Embedding.Model)
	}
	if cfg.Counter.QueueSize != 16 {
		t.Errorf("expected QueueSize=16, got %d", cfg.Counter.QueueSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("EXTRACTOR_TEST_TOKEN", "s3cret")

	in := []byte("token: ${EXTRACTOR_TEST_TOKEN}\nmodel: ${EXTRACTOR_TEST_MODEL:-fallback}\n")
	out := string(expandEnvVars(in))

	want := "token: s3cret\nmodel: fallback\n"
	if out != want {
		t.Errorf("expanded config:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	raw := []byte(`
http:
  port: 9090
embedding:
  api_key: test-key
auth:
  api_token: token-123
`)
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), raw, 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Auth.APIToken != "token-123" {
		t.Errorf("api_token = %q", cfg.Auth.APIToken)
	}
	if cfg.Counter.QueueSize != 1024 {
		t.Errorf("defaults not applied: %+v", cfg.Counter)
	}
}
