package contract

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation policy for the raw build log archive. Firmware builds emit tens of
// megabytes of diagnostics per run, so old runs age out quickly.
const (
	buildLogMaxSizeMB = 50
	buildLogMaxFiles  = 5
	buildLogMaxAgeDay = 14
)

// BuildLogArchive appends every diagnostic-stream line of every build to a
// rotating file so past build output can be inspected after the fact.
type BuildLogArchive struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
}

// NewBuildLogArchive creates an archive rooted at the given directory.
func NewBuildLogArchive(dir string) *BuildLogArchive {
	return &BuildLogArchive{
		logger: &lumberjack.Logger{
			Filename:   filepath.Join(dir, "fwchore-build.log"),
			MaxSize:    buildLogMaxSizeMB,
			MaxBackups: buildLogMaxFiles,
			MaxAge:     buildLogMaxAgeDay,
			Compress:   true,
		},
	}
}

// BeginInvocation writes a banner separating one build's output from the next.
func (a *BuildLogArchive) BeginInvocation(target string, options []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	banner := fmt.Sprintf("==== %s %s %v ====\n", time.Now().Format(time.RFC3339), target, options)
	_, _ = a.logger.Write([]byte(banner))
}

// Append writes one line of build output to the archive.
func (a *BuildLogArchive) Append(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.logger.Write([]byte(line + "\n"))
}

// Close flushes and closes the underlying file.
func (a *BuildLogArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logger.Close()
}
