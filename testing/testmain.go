// Package testing provides a scripted device for running tests against the
// firmware capability table.
package testing

import (
	"os"
	"testing"
)

// TestMain keeps a single place for test bootstrap. Use it as TestMain in
// packages with device specific tests.
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
