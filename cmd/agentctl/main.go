// Package main provides the CLI entry point for agentctl, a demo
// harness over the memory-augmented agent.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentctl",
		Short: "Drive the memory-augmented tool-calling agent from a terminal",
	}
	cmd.AddCommand(buildChatCmd())
	return cmd
}
