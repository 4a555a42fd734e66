package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  host: 127.0.0.1\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.AI.OpenAI.Timeout() != 10*time.Second {
		t.Errorf("openai timeout = %v, want 10s", cfg.AI.OpenAI.Timeout())
	}
	if cfg.Story.PlayerName != "Alex" {
		t.Errorf("player name = %q, want default Alex", cfg.Story.PlayerName)
	}
	if cfg.Story.DefaultDelay() != 2*time.Second {
		t.Errorf("default delay = %v, want 2s", cfg.Story.DefaultDelay())
	}
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	path := writeConfig(t, "ai:\n  openai:\n    api_key: from-file\n")
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AI.OpenAI.APIKey != "from-env" {
		t.Errorf("api key = %q, want env override", cfg.AI.OpenAI.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
