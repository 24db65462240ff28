// Command reviewpulse is the ReviewPulse command-line interface.
package main

import (
	"fmt"
	"os"

	"github.com/caldera-labs/reviewpulse/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
