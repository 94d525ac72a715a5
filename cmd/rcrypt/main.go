// Command rcrypt encrypts and decrypts local files in place, producing
// name.ext.enc outputs that rot can upload as-is.
package main

import (
	"fmt"
	"os"

	"github.com/ravenoss/rot/internal/commands"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := commands.NewCryptCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
