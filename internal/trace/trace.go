// Package trace is the dispatch core's debug narration. It is off by
// default and costs one atomic load per call site when disabled; enabled,
// it writes single-line records to stderr, colored when stderr is a
// terminal.
package trace

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

var (
	enabled atomic.Bool

	mu      sync.Mutex
	out     io.Writer = os.Stderr
	colored           = detectColor()
)

func detectColor() bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// Enable switches tracing on or off.
func Enable(on bool) { enabled.Store(on) }

// Enabled reports whether tracing is on.
func Enabled() bool { return enabled.Load() }

// SetOutput redirects trace records, mainly for tests. Redirected output
// is never colored.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		out = os.Stderr
		colored = detectColor()
		return
	}
	out = w
	colored = false
}

// Tracef writes one trace record when tracing is enabled.
func Tracef(format string, args ...any) {
	if !enabled.Load() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	prefix := "trace: "
	if colored {
		prefix = "\x1b[36mtrace:\x1b[0m "
	}
	fmt.Fprintf(out, prefix+format+"\n", args...)
}
