// Package testing switches binaries into test mode when imported for side
// effects from a test, so that main packages can be exercised without
// Postgres or Redis.
package testing

import "os"

func init() {
	_ = os.Setenv("LAWREGISTRY_TEST_MODE", "1")
}
