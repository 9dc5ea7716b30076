// Package todotests contains the Todo API contract tests themselves and their supporting
// API: random fixtures, typed request helpers, and the sequential test scenarios.
//
// Test harness infrastructure that is not specific to the Todo domain, such as talking to
// the service over HTTP and the test context, is in the lower-level framework packages.
package todotests
