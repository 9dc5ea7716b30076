package todotests

import (
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/harness"
	"github.com/todo-contract-tests/todo-api-contract-tests/framework/ldtest"
)

// RunTestSuite runs all Todo API contract tests against the service behind h. An error is
// only returned if the configuration is unusable; test failures are in the Results.
func RunTestSuite(
	h *harness.TestHarness,
	config Config,
	filter ldtest.Filter,
	testLogger ldtest.TestLogger,
) (ldtest.Results, error) {
	if err := config.Validate(); err != nil {
		return ldtest.Results{}, err
	}
	location, _ := config.Location()

	context := TodoTestContext{
		harness:  h,
		config:   config,
		location: location,
		fixtures: NewFixtures(config.Seed, config.EmailDomain),
	}
	results := ldtest.Run(
		ldtest.TestConfiguration{
			Filter:     filter,
			TestLogger: testLogger,
			Context:    context,
		},
		func(t *ldtest.T) {
			t.Run("API resources", DoAPIResourceTests)
			t.Run("CSV export", DoCSVExportTests)
		},
	)
	return results, nil
}
