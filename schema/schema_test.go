package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBuildOutcome(t *testing.T) {
	opts := []string{"chip=9117", "rev=2"}
	out := NewBuildOutcome(opts)

	assert.Equal(t, StatusPending, out.Status)
	assert.False(t, out.MustRerun)
	assert.Nil(t, out.ImageSize)
	assert.NotNil(t, out.Logs)
	assert.Equal(t, opts, out.Options)
	assert.False(t, out.Succeeded())

	// The outcome owns its own copy of the option slice.
	opts[0] = "mutated"
	assert.Equal(t, "chip=9117", out.Options[0])
}

func TestDiffReportEmpty(t *testing.T) {
	assert.True(t, DiffReport{}.Empty())
	assert.False(t, DiffReport{Added: map[string]int{"w": 1}}.Empty())
	assert.False(t, DiffReport{Removed: map[string]int{"w": 2}}.Empty())
}

func TestStyleReportClean(t *testing.T) {
	assert.True(t, StyleReport{Checked: 3}.Clean())
	assert.False(t, StyleReport{NeedsFormat: []string{"a.c"}}.Clean())
}
