// Package planner wires configuration, extraction and scheduling into one
// per-run session shared by the CLI and the HTTP API.
package planner

import (
	"context"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/config"
	"github.com/harrisonrobin/taskplan/pkg/dates"
	"github.com/harrisonrobin/taskplan/pkg/extract"
	"github.com/harrisonrobin/taskplan/pkg/llm"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/schedule"
)

// Overrides replaces individual config fields for one session. Nil means keep.
type Overrides struct {
	Timezone      *string  `json:"timezone,omitempty"`
	WorkStartHour *int     `json:"work_start_hour,omitempty"`
	WorkEndHour   *int     `json:"work_end_hour,omitempty"`
	DailyHours    *float64 `json:"daily_hours,omitempty"`
	BlockMinutes  *int     `json:"block_minutes,omitempty"`
	UseLLM        *bool    `json:"use_llm,omitempty"`
}

// Apply returns a copy of cfg with the overrides applied.
func (o Overrides) Apply(cfg *config.Config) *config.Config {
	out := *cfg
	if o.Timezone != nil {
		out.Timezone = *o.Timezone
	}
	if o.WorkStartHour != nil {
		out.WorkStartHour = *o.WorkStartHour
	}
	if o.WorkEndHour != nil {
		out.WorkEndHour = *o.WorkEndHour
	}
	if o.DailyHours != nil {
		out.DailyHours = *o.DailyHours
	}
	if o.BlockMinutes != nil {
		out.BlockMinutes = *o.BlockMinutes
	}
	if o.UseLLM != nil {
		out.UseLLM = *o.UseLLM
	}
	return &out
}

// Session holds everything one extract-and-plan run needs.
type Session struct {
	Config    *config.Config
	Settings  schedule.Settings
	Resolver  *dates.Resolver
	Extractor extract.Extractor
	Planner   *schedule.Planner
	Now       extract.Clock
}

// NewSession validates cfg and builds the session. completer may be nil, in
// which case the rule extractor is used even when the LLM path is requested.
func NewSession(cfg *config.Config, completer llm.Completer, now extract.Clock) (*Session, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	resolver := dates.NewResolver(settings.Location)
	return &Session{
		Config:    cfg,
		Settings:  settings,
		Resolver:  resolver,
		Extractor: extract.NewExtractor(cfg.UseLLM, completer, resolver, now),
		Planner:   schedule.NewPlanner(settings),
		Now:       now,
	}, nil
}

// CompleterFor returns the configured LLM client, or nil when the LLM path is
// off or no API key is set.
func CompleterFor(cfg *config.Config) llm.Completer {
	if !cfg.UseLLM {
		return nil
	}
	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  cfg.APIKey(),
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})
	if client == nil {
		return nil
	}
	return client
}

// Extract runs the session's extractor over all sources.
func (s *Session) Extract(ctx context.Context, sources []extract.Source) []model.Task {
	return extract.ExtractAll(ctx, s.Extractor, sources)
}

// Plan schedules tasks from the current instant and reports coverage per task.
func (s *Session) Plan(tasks []model.Task) ([]model.Block, []schedule.TaskReport) {
	blocks := s.Planner.Plan(tasks, s.Now())
	return blocks, schedule.Summarize(tasks, blocks)
}
