package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/fwchore/schema"
)

// Literal markers emitted by the firmware build tooling. The build tool's exit
// code is unreliable, so these strings are the source of truth for outcomes.
const (
	markerSuccess  = "Size of flash image"
	markerRerun    = "Please run make again!"
	markerProgress = "<builtin>: update target"
)

// Substrings that route diagnostic-stream lines into categories.
const (
	noiseCompilerTmp = "/tmp/cc"
	linkerBinary     = "/bin/ld"
	tokenWarningAny  = "warning:"
	tokenWarning     = ": warning:"
	tokenError       = ": error:"
	tokenUndefined   = ": undefined reference"
)

// Classify assigns a category to one line of build output. Classification is
// stream-dependent: markers are only meaningful on stdout, diagnostics only on
// the diagnostic stream.
func Classify(src schema.StreamSource, line string) schema.LineCategory {
	if src == schema.Stdout {
		switch {
		case strings.Contains(line, markerSuccess):
			return schema.SuccessMarker
		case strings.Contains(line, markerRerun):
			return schema.RerunMarker
		case strings.Contains(line, markerProgress):
			return schema.ProgressTick
		default:
			return schema.IgnoredStdout
		}
	}

	// Order matters: noise is dropped before the linker check, and the linker
	// check must not swallow warning lines that merely mention the linker.
	switch {
	case strings.Contains(line, noiseCompilerTmp):
		return schema.IgnoredNoise
	case strings.Contains(line, linkerBinary) && !strings.Contains(line, tokenWarningAny):
		return schema.LinkerDiagnostic
	case strings.Contains(line, tokenError), strings.Contains(line, tokenUndefined):
		return schema.ErrorDiagnostic
	case strings.Contains(line, tokenWarning):
		return schema.WarningDiagnostic
	default:
		return schema.ContextLine
	}
}

// digitRun matches a contiguous run of decimal digits.
var digitRun = regexp.MustCompile(`[0-9]+`)

// ParseImageSize extracts the flash image size from a success-marker line.
// The size is the first run of digits anywhere in the line; the tooling does
// not always put whitespace around it. Lines without one yield ok=false and
// the build still counts as a success.
func ParseImageSize(line string) (int64, bool) {
	field := digitRun.FindString(line)
	if field == "" {
		return 0, false
	}
	size, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, false
	}
	return size, true
}
