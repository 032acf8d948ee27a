package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":9090"
  requests_per_second: 5
realtime:
  enabled: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("FRONTHOUSE_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %s, env override should win", cfg.Server.Addr)
	}
	if cfg.Server.RequestsPerSecond != 5 {
		t.Errorf("rps = %d, want 5 from file", cfg.Server.RequestsPerSecond)
	}
	if cfg.Realtime.Enabled {
		t.Error("realtime should be disabled by file")
	}
	if cfg.Supabase.URL != "https://project.supabase.co" {
		t.Errorf("supabase url = %s", cfg.Supabase.URL)
	}
}

func TestLoadRequiresSupabaseSettings(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "")

	if _, err := Load(""); err == nil {
		t.Fatal("Load should fail without SUPABASE_URL")
	}
}
