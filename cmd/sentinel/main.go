// Command sentinel is the CLI front end for the file-organizer core: it
// wraps the programmatic scan/plan/commit/execute/recovery entry points
// in cobra subcommands, following jra3-linear-fuse's cmd/root.go split of
// a package-level rootCmd plus one file per subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/sentinelfs/sentinel/cmd/sentinel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
