// Package framework contains the low-level implementation of contract test infrastructure
// that is not specific to the Todo API. The base package contains shared types such as
// Logger; other components are in the subpackages harness and ldtest.
//
// The general model is:
//
// 1. The test harness talks to a running service under test over HTTP. It waits for the
// service to respond before any tests run, and then issues JSON requests on behalf of the
// tests.
//
// 2. There is a general notion of a test context which is similar to Go's testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results, without running inside "go test".
//
// The domain-specific code that knows what is being tested is responsible for building the
// requests, and for providing a domain-specific test API on top of the test context.
package framework
