package integration

import (
	"os"
	"testing"
)

// TestMain terminates the shared containers once every test has run
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainers()
	os.Exit(code)
}
