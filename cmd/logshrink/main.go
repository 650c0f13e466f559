// Package main is the entry point for logshrink, a syslog collection
// and compact-archival engine.
package main

import (
	"fmt"
	"os"

	"github.com/brask/logshrink/cmd/logshrink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(commands.ExitCodeFor(err))
	}
}
