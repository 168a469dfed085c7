// Command wordnews runs the daily article generation queue. It serves the
// admin HTTP API and offers operator commands for migrations, enqueueing,
// draining and seeding.
package main

import (
	"fmt"
	"os"

	// Business dates are computed in a named zone; embed the database so
	// minimal images resolve it.
	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
