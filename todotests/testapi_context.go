package todotests

import (
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/framework/harness"
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"
)

// TodoTestContext is the global test configuration that every test can reach through
// ldtest.T.Context().
type TodoTestContext struct {
	harness  *harness.TestHarness
	config   Config
	location *time.Location
	fixtures *Fixtures
}

func requireContext(t *ldtest.T) TodoTestContext {
	if c, ok := t.Context().(TodoTestContext); ok {
		return c
	}
	panic("TodoTestContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}
