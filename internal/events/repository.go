package events

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed events.yaml
var defaultRegistry []byte

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	FindBySlug(slug string) (*Event, error)
	FindAll() []Event
}

type repository struct {
	bySlug map[string]Event
	order  []string
}

// LoadRepository reads the registry from path, or the built-in registry when path is empty
func LoadRepository(path string) (Repository, error) {
	data := defaultRegistry
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read events file: %w", err)
		}
		data = raw
	}
	return ParseRepository(data)
}

// ParseRepository builds a repository from YAML bytes
func ParseRepository(data []byte) (Repository, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}
	if len(file.Events) == 0 {
		return nil, errors.New("events registry is empty")
	}

	repo := &repository{bySlug: make(map[string]Event, len(file.Events))}
	for i, ev := range file.Events {
		ev.Slug = strings.TrimSpace(ev.Slug)
		if ev.Slug == "" {
			return nil, fmt.Errorf("events[%d]: slug is required", i)
		}
		if _, dup := repo.bySlug[ev.Slug]; dup {
			return nil, fmt.Errorf("events[%d]: duplicate slug %q", i, ev.Slug)
		}
		if _, err := time.Parse(DateLayout, ev.Date); err != nil {
			return nil, fmt.Errorf("events[%d] (%s): date must be YYYY-MM-DD: %w", i, ev.Slug, err)
		}
		repo.bySlug[ev.Slug] = ev
		repo.order = append(repo.order, ev.Slug)
	}

	// Chronological, stable for same-day events
	sort.SliceStable(repo.order, func(a, b int) bool {
		return repo.bySlug[repo.order[a]].Date < repo.bySlug[repo.order[b]].Date
	})

	return repo, nil
}

func (r *repository) FindBySlug(slug string) (*Event, error) {
	ev, ok := r.bySlug[slug]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &ev, nil
}

func (r *repository) FindAll() []Event {
	out := make([]Event, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.bySlug[slug])
	}
	return out
}
