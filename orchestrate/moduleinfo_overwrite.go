package orchestrate

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// ModuleInfoOverwrite is a scoped resource supporting the legacy
// workflow where a test compilation replaces a main module-info.class
// so the test compiler sees the test view of the module (spec.md §4.4).
// No teacher analogue - jsando-jb has no multi-release or modular
// build support to retrofit this onto - so this is new code, shaped as
// a Go "scoped resource with guaranteed cleanup" following the
// acquire/release pattern the teacher uses for its own resources (e.g.
// builder/buildlog.go's log-file handle).
type ModuleInfoOverwrite struct {
	mainClassPath string
	mainBakPath   string
	testClassPath string
	testSrcPath   string
	testSrcBak    string

	released atomic.Bool
}

// AcquireModuleInfoOverwrite performs the three renames described in
// spec.md §4.4 and registers a process-exit handler so an interrupted
// build still restores the original layout.
func AcquireModuleInfoOverwrite(mainModuleInfoClass, testModuleInfoClass, testModuleInfoSource string) (*ModuleInfoOverwrite, error) {
	mainBak := mainModuleInfoClass + ".bak"
	testSrcBak := testModuleInfoSource + ".bak"

	if err := os.Rename(mainModuleInfoClass, mainBak); err != nil {
		return nil, fmt.Errorf("renaming main module-info.class: %w", err)
	}
	if err := os.Rename(testModuleInfoClass, mainModuleInfoClass); err != nil {
		_ = os.Rename(mainBak, mainModuleInfoClass)
		return nil, fmt.Errorf("moving test module-info.class into place: %w", err)
	}
	if err := os.Rename(testModuleInfoSource, testSrcBak); err != nil {
		_ = os.Rename(mainModuleInfoClass, testModuleInfoClass)
		_ = os.Rename(mainBak, mainModuleInfoClass)
		return nil, fmt.Errorf("renaming test module-info.java aside: %w", err)
	}

	m := &ModuleInfoOverwrite{
		mainClassPath: mainModuleInfoClass,
		mainBakPath:   mainBak,
		testClassPath: testModuleInfoClass,
		testSrcPath:   testModuleInfoSource,
		testSrcBak:    testSrcBak,
	}
	registerExitHandler(m)
	return m, nil
}

// Release reverses the three renames. Safe to call more than once
// (including from the exit handler racing a normal deferred release);
// only the first call does any work.
func (m *ModuleInfoOverwrite) Release() error {
	if !m.released.CompareAndSwap(false, true) {
		return nil
	}
	unregisterExitHandler(m)

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(os.Rename(m.mainClassPath, m.testClassPath))
	record(os.Rename(m.mainBakPath, m.mainClassPath))
	record(os.Rename(m.testSrcBak, m.testSrcPath))
	return firstErr
}

var (
	exitHandlerMu       sync.Mutex
	exitHandlerRegistry = map[*ModuleInfoOverwrite]struct{}{}
	exitHandlerOnce     sync.Once
)

func registerExitHandler(m *ModuleInfoOverwrite) {
	exitHandlerMu.Lock()
	exitHandlerRegistry[m] = struct{}{}
	exitHandlerMu.Unlock()
	exitHandlerOnce.Do(installSignalHandler)
}

func unregisterExitHandler(m *ModuleInfoOverwrite) {
	exitHandlerMu.Lock()
	delete(exitHandlerRegistry, m)
	exitHandlerMu.Unlock()
}

// installSignalHandler plays the role of a JVM shutdown hook: on
// SIGINT/SIGTERM, release every still-registered ModuleInfoOverwrite
// before letting the process die.
func installSignalHandler() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		exitHandlerMu.Lock()
		pending := make([]*ModuleInfoOverwrite, 0, len(exitHandlerRegistry))
		for m := range exitHandlerRegistry {
			pending = append(pending, m)
		}
		exitHandlerMu.Unlock()
		for _, m := range pending {
			_ = m.Release()
		}
		os.Exit(1)
	}()
}
