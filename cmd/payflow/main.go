// Package main is the entry point for the Payflow CLI.
package main

import (
	"os"

	"github.com/sidrisov/payflow-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
