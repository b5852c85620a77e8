// Package main is the entry point for the Notewire CLI.
// It wires authentication, cached reads and the posts workflow into a
// single command-line interface.
package main

import (
	"notewire/cli/cmd"
)

// main initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
