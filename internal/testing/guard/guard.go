// Package guard switches the application into test mode when imported by a
// test binary.
package guard

import "os"

func init() {
	if _, ok := os.LookupEnv("MAASRA_TEST_MODE"); !ok {
		_ = os.Setenv("MAASRA_TEST_MODE", "1")
	}
}
