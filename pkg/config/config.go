package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/harrisonrobin/taskplan/pkg/schedule"
)

const (
	xdgAppName = "taskplan"
	configFile = "config.json"

	DefaultCalendar = "Tasks"
	DefaultTimezone = "America/Los_Angeles"
)

type LLMConfig struct {
	Model          string `json:"model" toml:"model"`
	TimeoutSeconds int    `json:"timeout_seconds" toml:"timeout_seconds"`
	APIKeyEnv      string `json:"api_key_env" toml:"api_key_env"`
	BaseURL        string `json:"base_url,omitempty" toml:"base_url"`
}

type Config struct {
	Calendar      string    `json:"calendar" toml:"calendar"`
	Timezone      string    `json:"timezone" toml:"timezone"`
	WorkStartHour int       `json:"work_start_hour" toml:"work_start_hour"`
	WorkEndHour   int       `json:"work_end_hour" toml:"work_end_hour"`
	DailyHours    float64   `json:"daily_hours" toml:"daily_hours"`
	BlockMinutes  int       `json:"block_minutes" toml:"block_minutes"`
	UseLLM        bool      `json:"use_llm" toml:"use_llm"`
	LLM           LLMConfig `json:"llm" toml:"llm"`
}

// ValidationError reports a planner setting outside its allowed range.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func Default() *Config {
	return &Config{
		Calendar:      DefaultCalendar,
		Timezone:      DefaultTimezone,
		WorkStartHour: 9,
		WorkEndHour:   21,
		DailyHours:    2,
		BlockMinutes:  50,
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 30,
			APIKeyEnv:      "OPENAI_API_KEY",
		},
	}
}

func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a JSON or (by extension) TOML config. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Calendar == "" {
		c.Calendar = d.Calendar
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.LLM.Model == "" {
		c.LLM.Model = d.LLM.Model
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = d.LLM.TimeoutSeconds
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = d.LLM.APIKeyEnv
	}
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

func SaveTo(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.NewEncoder(f).Encode(cfg)
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// Validate checks the planner settings.
func (c *Config) Validate() error {
	if c.WorkStartHour < 0 || c.WorkStartHour > 23 {
		return ValidationError{Field: "work_start_hour", Message: "must be between 0 and 23"}
	}
	if c.WorkEndHour < 1 || c.WorkEndHour > 24 {
		return ValidationError{Field: "work_end_hour", Message: "must be between 1 and 24"}
	}
	if c.WorkStartHour >= c.WorkEndHour {
		return ValidationError{Field: "work_end_hour", Message: "must be after work_start_hour"}
	}
	if c.DailyHours <= 0 || c.DailyHours > 24 {
		return ValidationError{Field: "daily_hours", Message: "must be in (0, 24]"}
	}
	if c.BlockMinutes < 1 {
		return ValidationError{Field: "block_minutes", Message: "must be at least 1"}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return ValidationError{Field: "timezone", Message: err.Error()}
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Settings validates the config and converts it into planner settings.
func (c *Config) Settings() (schedule.Settings, error) {
	if err := c.Validate(); err != nil {
		return schedule.Settings{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return schedule.Settings{}, err
	}
	return schedule.Settings{
		Location:     loc,
		WorkStart:    schedule.Clock{Hour: c.WorkStartHour},
		WorkEnd:      schedule.Clock{Hour: c.WorkEndHour},
		DailyHours:   c.DailyHours,
		BlockMinutes: c.BlockMinutes,
	}, nil
}

// APIKey reads the LLM key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// Keys lists the names accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(c *Config, v string) error{
	"calendar": func(c *Config, v string) error { c.Calendar = v; return nil },
	"timezone": func(c *Config, v string) error { c.Timezone = v; return nil },
	"work_start_hour": func(c *Config, v string) error {
		return setInt(&c.WorkStartHour, v)
	},
	"work_end_hour": func(c *Config, v string) error {
		return setInt(&c.WorkEndHour, v)
	},
	"daily_hours": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.DailyHours = f
		return nil
	},
	"block_minutes": func(c *Config, v string) error {
		return setInt(&c.BlockMinutes, v)
	},
	"use_llm": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.UseLLM = b
		return nil
	},
	"llm.model":       func(c *Config, v string) error { c.LLM.Model = v; return nil },
	"llm.api_key_env": func(c *Config, v string) error { c.LLM.APIKeyEnv = v; return nil },
	"llm.base_url":    func(c *Config, v string) error { c.LLM.BaseURL = v; return nil },
	"llm.timeout_seconds": func(c *Config, v string) error {
		return setInt(&c.LLM.TimeoutSeconds, v)
	},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

// Set assigns one field by its config key and re-validates the result.
// The config is left unchanged on error.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	next := *c
	if err := set(&next, strings.TrimSpace(value)); err != nil {
		return ValidationError{Field: key, Message: err.Error()}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
