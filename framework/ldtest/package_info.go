// Package ldtest provides a test context, T, that behaves like Go's testing.T for the
// purposes of the assert and require packages, but runs outside of the Go test runner.
//
// Subtests run sequentially and in the order they are declared, so a scope can set up
// shared state once and let later subtests build on what earlier ones left behind.
package ldtest
