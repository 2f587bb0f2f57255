package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/dates"
	"github.com/harrisonrobin/taskplan/pkg/llm"
	"github.com/harrisonrobin/taskplan/pkg/model"
)

// Instructions is the fixed system prompt sent with every extraction request.
const Instructions = `You extract structured tasks from course announcements, syllabi, emails and notes.
Return a JSON object {"tasks": [...]} where each item has:
title (string), due (ISO 8601 if present, omit otherwise), est_minutes (int, default 60),
tag (short course or project label), priority (int 1-5, 1 is most urgent, default 3).
Prefer short, actionable titles. Infer reasonable estimates.`

var errMalformed = errors.New("malformed task list")

// LLMExtractor delegates to a language model and falls back to the rule
// extractor whenever the call fails or yields nothing usable.
type LLMExtractor struct {
	Client   llm.Completer
	Fallback Extractor
	Resolver *dates.Resolver
	Now      Clock
}

func NewLLMExtractor(client llm.Completer, resolver *dates.Resolver, now Clock) *LLMExtractor {
	if now == nil {
		now = time.Now
	}
	return &LLMExtractor{
		Client:   client,
		Fallback: NewRuleExtractor(resolver, now),
		Resolver: resolver,
		Now:      now,
	}
}

func (e *LLMExtractor) Extract(ctx context.Context, text, source string) []model.Task {
	tasks, err := e.extract(ctx, text, source)
	if err != nil {
		log.Printf("llm extraction for %s failed, using rules: %v", source, err)
		return e.Fallback.Extract(ctx, text, source)
	}
	if len(tasks) == 0 {
		return e.Fallback.Extract(ctx, text, source)
	}
	return tasks
}

func (e *LLMExtractor) extract(ctx context.Context, text, source string) ([]model.Task, error) {
	content, err := e.Client.CompleteJSON(ctx, Instructions, text)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(content)
	if err != nil {
		return nil, err
	}

	now := e.Now().In(e.Resolver.Location)
	tasks := make([]model.Task, 0, len(items))
	for i, item := range items {
		task, err := e.taskFromItem(item, source, now)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func decodeItems(content string) ([]map[string]any, error) {
	content = strings.TrimSpace(content)
	var items []map[string]any
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
		return items, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	raw, ok := obj["tasks"]
	if !ok {
		return nil, fmt.Errorf("%w: no tasks key", errMalformed)
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return items, nil
}

func (e *LLMExtractor) taskFromItem(item map[string]any, source string, now time.Time) (model.Task, error) {
	title, err := stringField(item["title"])
	if err != nil {
		return model.Task{}, fmt.Errorf("title: %w", err)
	}
	if strings.TrimSpace(title) == "" {
		title = "Untitled task"
	}
	tag, err := stringField(item["tag"])
	if err != nil {
		return model.Task{}, fmt.Errorf("tag: %w", err)
	}
	est, err := intField(item["est_minutes"], model.DefaultEstimate)
	if err != nil {
		return model.Task{}, fmt.Errorf("est_minutes: %w", err)
	}
	priority, err := intField(item["priority"], model.DefaultPriority)
	if err != nil {
		return model.Task{}, fmt.Errorf("priority: %w", err)
	}

	var due *time.Time
	if v, ok := item["due"]; ok && v != nil {
		if t, ok := e.Resolver.Resolve(fmt.Sprint(v), now); ok {
			due = &t
		}
	}
	return model.NewTask(title, due, est, tag, priority, source), nil
}

func stringField(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}
	return "", fmt.Errorf("%w: expected string, got %T", errMalformed, v)
}

// intField mirrors a lenient int(): numbers truncate, numeric strings parse,
// and zero or absent values take the default.
func intField(v any, def int) (int, error) {
	switch x := v.(type) {
	case nil:
		return def, nil
	case float64:
		if int(x) == 0 {
			return def, nil
		}
		return int(x), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return def, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errMalformed, err)
		}
		if n == 0 {
			return def, nil
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: expected number, got %T", errMalformed, v)
}
