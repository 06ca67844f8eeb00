// Package testing prepares the environment shared by package tests: test
// mode on and quiet logs.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"

	_ "github.com/maasra-erp/maasra/internal/testing/guard"
)

var once sync.Once

func ensureTestEnv() {
	once.Do(func() {
		if os.Getenv("LOG_LEVEL") == "" {
			_ = os.Setenv("LOG_LEVEL", "error")
		}
	})
}

func init() {
	ensureTestEnv()
}

// TestMain can be assigned from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	ensureTestEnv()
	os.Exit(m.Run())
}
