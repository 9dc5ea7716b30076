// Package harness provides HTTP access to the service under test. It knows nothing about
// the Todo domain: it only waits for the service to come up, sends JSON requests relative to
// a base URL, and turns non-2xx responses into errors.
package harness
