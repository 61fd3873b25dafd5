// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dslqueue/dslqueue/internal/cli/commands"
)

var version = "dev" // Set by build system

func main() {
	root := &cobra.Command{
		Use:   "dslqueue",
		Short: "HTTP work queue for DSL-driven test sessions",
		Long: `dslqueue feeds a test runner one DSL payload at a time over HTTP.

Payloads come from a browser form (interactive mode) or from files given
on the command line (seeded mode). The runner polls a single endpoint and
receives the next payload, a 204 when the queue is empty, or a configured
exit command once a oneshot queue is exhausted.`,
		Version: version,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().StringP("config", "c", "dslqueue.yaml", "Path to configuration file")

	root.AddCommand(commands.NewServeCommand())
	root.AddCommand(commands.NewSendCommand())
	root.AddCommand(commands.NewStatusCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
