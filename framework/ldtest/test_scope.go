package ldtest

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework"
)

// TestConfiguration holds the settings that apply to every test in a run.
type TestConfiguration struct {
	// Filter selects the tests to run. A nil Filter runs everything.
	Filter Filter

	// TestLogger is notified as tests start, fail, finish, and get skipped.
	TestLogger TestLogger

	// Context is an arbitrary value that domain-specific test code can retrieve with
	// T.Context(), typically holding the client for the service under test.
	Context interface{}
}

type environment struct {
	config  TestConfiguration
	results Results
}

// T represents a test scope. It implements the same basic functionality as Go's testing.T,
// so it can be passed to the assert and require packages, plus a few things that are
// convenient for contract tests such as captured debug output and deferred cleanup.
type T struct {
	env         *environment
	id          TestID
	debugLogger framework.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	defers      []func()
}

// Run runs the top-level test action and returns the accumulated results of it and all of
// its subtests.
func Run(config TestConfiguration, action func(*T)) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	env := &environment{config: config}
	t := &T{env: env}
	t.run(action)
	return env.results
}

func (t *T) run(action func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			if !t.skipped {
				t.failed = true
				var addError error
				if _, ok := r.(*T); ok {
					if len(t.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					t.errors = append(t.errors, addError)
					t.env.config.TestLogger.TestError(t.id, addError)
				}
			}
		}
		for i := len(t.defers) - 1; i >= 0; i-- {
			t.defers[i]()
		}
		if len(t.id.Path) == 0 && !t.failed {
			return // the root scope only shows up in the results if something went wrong there
		}
		result := TestResult{TestID: t.id, Errors: t.errors, Skipped: t.skipped, SkipReason: t.skipReason}
		t.env.results.Tests = append(t.env.results.Tests, result)
		if t.failed {
			t.env.results.Failures = append(t.env.results.Failures, result)
		}
	}()

	action(t)
}

// ID returns the identifier of this test, which is the path of names leading to it.
func (t *T) ID() TestID {
	return t.id
}

// Context returns the value that was passed as TestConfiguration.Context.
func (t *T) Context() interface{} {
	return t.env.config.Context
}

// Run runs a subtest. This is equivalent to the Run method of testing.T, except that
// subtests are always sequential.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)

	logger := t.env.config.TestLogger
	if filter := t.env.config.Filter; filter != nil && !filter(id) {
		return
	}
	logger.TestStarted(id)
	t1 := &T{
		id:  id,
		env: t.env,
	}
	t1.run(action)
	if t1.skipped {
		logger.TestSkipped(id, t1.skipReason)
	} else {
		logger.TestFinished(id, t1.failed, t1.debugLogger.Output())
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := fmt.Errorf(format, args...)
	t.errors = append(t.errors, err)
	t.env.config.TestLogger.TestError(t.id, reformatError(err))
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods
// in the require package call FailNow.
func (t *T) FailNow() {
	t.failed = true
	panic(t)
}

// Failed reports whether the test has failed so far.
func (t *T) Failed() bool {
	return t.failed
}

// Helper exists so that testify can treat T like testing.T; it has no effect.
func (t *T) Helper() {}

// Skip causes the test to immediately exit and be reported as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is the same as Skip, but also provides a reason for the test logger.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug writes a message to this test's debug log. The log is passed to the test logger
// when the test finishes.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger that writes to this test's debug log.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a function to run when this test scope ends, whether or not it failed.
// Deferred functions run in reverse order.
func (t *T) Defer(fn func()) {
	t.defers = append(t.defers, fn)
}

// testify formats failures as a block starting with a newline and indented with tabs
func reformatError(err error) error {
	lines := strings.Split(strings.Trim(err.Error(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "\t")
	}
	return errors.New(strings.Join(lines, "\n"))
}
