package core

import (
	"errors"
	"regexp"
	"sync"

	"github.com/huangsam/fwchore/schema"
)

// Census errors.
var (
	// ErrNoGeneration indicates a warning arrived before a generation was selected.
	ErrNoGeneration = errors.New("no census generation selected")

	// ErrBadGeneration indicates an unknown generation name.
	ErrBadGeneration = errors.New("unknown census generation")
)

// lineNumberPattern matches a line-number component in a diagnostic location.
var lineNumberPattern = regexp.MustCompile(`:[0-9]+:`)

// NormalizeWarning replaces line numbers in a warning with '#' so that
// warnings moved by unrelated edits still compare as equal. The replacement
// runs twice because locations like 'file.c:12:5:' interleave two numeric
// components and a single pass leaves the second one behind.
func NormalizeWarning(line string) string {
	out := lineNumberPattern.ReplaceAllString(line, ":#:")
	return lineNumberPattern.ReplaceAllString(out, ":#:")
}

// WarningCensus accumulates normalized warning counts for two build
// generations and reports the delta between them. Safe for concurrent use.
type WarningCensus struct {
	mu      sync.Mutex
	current schema.Generation
	counts  map[schema.Generation]map[string]int
}

// NewWarningCensus creates an empty census with no generation selected.
func NewWarningCensus() *WarningCensus {
	return &WarningCensus{
		counts: map[schema.Generation]map[string]int{
			schema.OldGeneration: {},
			schema.NewGeneration: {},
		},
	}
}

// SelectGeneration routes subsequent Record calls into the given generation.
func (c *WarningCensus) SelectGeneration(gen schema.Generation) error {
	if _, ok := schema.ValidGenerations[gen]; !ok {
		return ErrBadGeneration
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = gen
	return nil
}

// Record normalizes a warning line and counts it against the active generation.
func (c *WarningCensus) Record(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == "" {
		return ErrNoGeneration
	}
	c.counts[c.current][NormalizeWarning(line)]++
	return nil
}

// Count returns how many times a normalized warning was seen in a generation.
func (c *WarningCensus) Count(gen schema.Generation, normalized string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[gen][normalized]
}

// Diff reports the multiset delta from the old generation to the new one.
// A warning whose count grows contributes the growth to Added; one whose
// count shrinks contributes the shrinkage to Removed.
func (c *WarningCensus) Diff() schema.DiffReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := schema.DiffReport{
		Added:   make(map[string]int),
		Removed: make(map[string]int),
	}

	oldCounts := c.counts[schema.OldGeneration]
	newCounts := c.counts[schema.NewGeneration]

	for warning, newCount := range newCounts {
		if delta := newCount - oldCounts[warning]; delta > 0 {
			report.Added[warning] = delta
			report.AddedTotal += delta
		}
	}
	for warning, oldCount := range oldCounts {
		if delta := oldCount - newCounts[warning]; delta > 0 {
			report.Removed[warning] = delta
			report.RemovedTotal += delta
		}
	}
	return report
}
