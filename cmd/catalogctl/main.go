// Command catalogctl inspects and edits a catalog stored in a bolt or
// sqlite file.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "catalogctl: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}
