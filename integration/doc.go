// Package integration contains integration tests for fwchore.
// The tests are excluded from normal test runs due to build tags;
// this file keeps the package visible to untagged builds.
// To run the tests: go test -tags basic ./integration
package integration
