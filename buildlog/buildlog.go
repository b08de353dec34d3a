// Package buildlog renders build progress and compiler diagnostics to
// the terminal, grounded on the teacher's builder/buildlog.go (a
// pterm-backed BuildLog/TaskLog pair tracking warning/error counts and
// elapsed time), generalized into an exported type that additionally
// implements compiler.DiagnosticSink so orchestrate.ToolExecutor can
// report straight through it instead of through a separate printer.
package buildlog

import (
	"fmt"
	"os"
	"time"

	"github.com/jsando/jbc/compiler"
	"github.com/pterm/pterm"
)

// TaskLog is one named unit of work's progress reporter, started from
// a BuildLog and finished exactly once via Done.
type TaskLog interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Done(err error) bool
}

// BuildLog tracks one build's warning/error counts and elapsed time,
// printing through pterm exactly as the teacher's buildLog does.
type BuildLog struct {
	buildStartTime time.Time
	warnCount      int
	errorCount     int
	firstError     *compiler.Diagnostic
}

// NewBuildLog creates a BuildLog and immediately announces the start
// of a build, matching the teacher's NewBuildLog/BuildStart pairing.
func NewBuildLog() *BuildLog {
	b := &BuildLog{}
	b.BuildStart()
	return b
}

func formatSeconds(t time.Time) string {
	return fmt.Sprintf("%.1fs", time.Since(t).Seconds())
}

func (b *BuildLog) BuildStart() {
	b.buildStartTime = time.Now()
	fmt.Println("jbc - Build Started")
}

// BuildFinish prints a final summary. Unlike the teacher's version it
// does not call os.Exit itself - callers decide the process exit code
// from Failed().
func (b *BuildLog) BuildFinish() {
	totalTime := formatSeconds(b.buildStartTime)
	result := "completed"
	if b.errorCount > 0 {
		result = "FAILED"
	}
	msg := fmt.Sprintf("Build %s in %s (%d warnings, %d errors)\n", result, totalTime, b.warnCount, b.errorCount)
	if b.errorCount > 0 {
		pterm.Error.Println(msg)
	} else {
		pterm.Success.Println(msg)
	}
}

func (b *BuildLog) ModuleStart(name string) {
	fmt.Printf("  Module: %s\n", name)
}

// CheckError records and reports err under task's name if non-nil,
// returning whether an error occurred.
func (b *BuildLog) CheckError(task string, err error) bool {
	if err == nil {
		return false
	}
	b.errorCount++
	pterm.Error.Printf("ERROR %s: %s\n", task, err)
	return true
}

func (b *BuildLog) Failed() bool {
	return b.errorCount > 0
}

func (b *BuildLog) TaskStart(name string) TaskLog {
	return &taskLog{buildLog: b, startTime: time.Now(), name: name}
}

// Report implements compiler.DiagnosticSink, routing each diagnostic
// through the same pterm printers the rest of the build uses and
// tallying it into the build's warning/error counts.
func (b *BuildLog) Report(d compiler.Diagnostic) {
	location := d.File
	if d.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, d.Line)
		if d.Column > 0 {
			location = fmt.Sprintf("%s:%d", location, d.Column)
		}
	}
	switch d.Kind {
	case "warning":
		b.warnCount++
		pterm.Warning.Printf("%s: %s\n", location, d.Message)
	default:
		b.errorCount++
		if b.firstError == nil {
			dCopy := d
			b.firstError = &dCopy
		}
		pterm.Error.Printf("%s: %s\n", location, d.Message)
	}
}

func (b *BuildLog) SupportsSummary() bool { return true }

func (b *BuildLog) Summary() string {
	return fmt.Sprintf("%d warnings, %d errors", b.warnCount, b.errorCount)
}

// FirstError returns the first non-warning diagnostic reported so far,
// or nil if none has been reported - surfaced in a build failure's
// returned error so callers see a message and source location instead
// of only a tally.
func (b *BuildLog) FirstError() *compiler.Diagnostic {
	return b.firstError
}

type taskLog struct {
	buildLog  *BuildLog
	startTime time.Time
	name      string
}

func (t *taskLog) Info(msg string) {
	pterm.Info.Println(msg)
}

func (t *taskLog) Warn(msg string) {
	t.buildLog.warnCount++
	pterm.Warning.Println(msg)
}

func (t *taskLog) Error(msg string) {
	t.buildLog.errorCount++
	pterm.Error.Println(msg)
}

func (t *taskLog) Done(err error) bool {
	duration := formatSeconds(t.startTime)
	if err != nil {
		t.buildLog.errorCount++
		pterm.Error.Printf("    x %s FAILED (time: %s)\n", t.name, duration)
		pterm.Error.Printf("      cause: %s\n", err)
		return true
	}
	pterm.Success.Printf("    > %s done (time: %s)\n", t.name, duration)
	return false
}

// Fatal prints msg via pterm and exits the process with status 1,
// matching the teacher's pterm.Fatal.Printf-then-implicit-exit idiom
// in cmd/build.go's error path.
func Fatal(format string, args ...any) {
	pterm.Fatal.Printf(format, args...)
	os.Exit(1)
}
