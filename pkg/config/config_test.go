package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Calendar != "Tasks" || cfg.WorkStartHour != 9 || cfg.WorkEndHour != 21 || cfg.BlockMinutes != 50 || cfg.DailyHours != 2 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Calendar = "Study"
	cfg.DailyHours = 3.5
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Calendar != "Study" || loaded.DailyHours != 3.5 || loaded.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected config after round trip: %+v", loaded)
	}
}

func TestLoadTOMLFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "timezone = \"America/New_York\"\nwork_start_hour = 8\nblock_minutes = 45\n\n[llm]\ntimeout_seconds = 5\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Timezone != "America/New_York" || cfg.WorkStartHour != 8 || cfg.BlockMinutes != 45 {
		t.Errorf("Unexpected values: %+v", cfg)
	}
	if cfg.WorkEndHour != 21 || cfg.Calendar != "Tasks" || cfg.LLM.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("Expected defaults kept for unset fields: %+v", cfg)
	}
	if cfg.LLMTimeout() != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.LLMTimeout())
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected decode error")
	}
}

func TestSettingsValidation(t *testing.T) {
	cfg := Default()
	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if s.Location.String() != "America/Los_Angeles" || s.WorkStart.Hour != 9 || s.WorkEnd.Hour != 21 {
		t.Errorf("Unexpected settings: %+v", s)
	}

	bad := []func(*Config){
		func(c *Config) { c.WorkStartHour = 22 },
		func(c *Config) { c.WorkEndHour = 25 },
		func(c *Config) { c.DailyHours = 0 },
		func(c *Config) { c.BlockMinutes = 0 },
		func(c *Config) { c.Timezone = "Mars/Olympus" },
	}
	for i, mutate := range bad {
		c := Default()
		mutate(c)
		_, err := c.Settings()
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("block_minutes", "25"); err != nil {
		t.Fatalf("Set block_minutes failed: %v", err)
	}
	if err := cfg.Set("use_llm", "true"); err != nil {
		t.Fatalf("Set use_llm failed: %v", err)
	}
	if err := cfg.Set("llm.model", "gpt-4o"); err != nil {
		t.Fatalf("Set llm.model failed: %v", err)
	}
	if cfg.BlockMinutes != 25 || !cfg.UseLLM || cfg.LLM.Model != "gpt-4o" {
		t.Errorf("Unexpected config after Set: %+v", cfg)
	}

	if err := cfg.Set("work_start_hour", "22"); err == nil {
		t.Error("Expected error when start is after end")
	}
	if cfg.WorkStartHour != 9 {
		t.Errorf("Expected config unchanged after failed Set, got start %d", cfg.WorkStartHour)
	}
	if err := cfg.Set("daily_hours", "lots"); err == nil {
		t.Error("Expected parse error for daily_hours")
	}
	if err := cfg.Set("colour", "blue"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("Expected unknown key error, got %v", err)
	}
}
