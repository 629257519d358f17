package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

type indexProgressReporter struct {
	enabled bool
	out     io.Writer
	label   string
	total   int
	start   time.Time
	spinner int
	lastLen int
}

// newIndexProgressReporter reports on stderr, and only when stderr is a
// terminal and the run is not producing JSON.
func newIndexProgressReporter(label string, total int, asJSON bool) *indexProgressReporter {
	fd := os.Stderr.Fd()
	enabled := !asJSON && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	return &indexProgressReporter{
		enabled: enabled,
		out:     os.Stderr,
		label:   label,
		total:   total,
		start:   time.Now(),
	}
}

func (r *indexProgressReporter) Update(file string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}

	status := fmt.Sprintf("%s %s %d indexing %s", frame, r.label, count, file)
	if r.total > 0 {
		status = fmt.Sprintf("%s %s %d/%d indexing %s", frame, r.label, count, r.total, file)
	}
	r.printStatus(status)
}

func (r *indexProgressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d files in %s)", r.label, count, elapsed))
	fmt.Fprintln(r.out)
}

func (r *indexProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}
