package outwriter

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// BuildProgress renders a progress bar for a running build. The total comes
// from a dry-run estimate, so the bar may finish early or overshoot; Finish
// clears it either way. A zero total falls back to a spinner.
type BuildProgress struct {
	bar *progressbar.ProgressBar
}

// NewBuildProgress creates a progress indicator, or nil when stdout is not an
// interactive terminal.
func NewBuildProgress() *BuildProgress {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	return &BuildProgress{}
}

// Start begins a new bar for one build invocation.
func (p *BuildProgress) Start(description string, total int) {
	if total <= 0 {
		total = -1 // spinner
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(18),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

// Tick advances the bar by one compiled target.
func (p *BuildProgress) Tick() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finish clears the bar.
func (p *BuildProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		_ = p.bar.Clear()
		p.bar = nil
	}
}
