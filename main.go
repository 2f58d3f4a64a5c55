// Package main is the entry point for the Nightscout report server
package main

import (
	"os"

	"github.com/mrcode/nightscout-report/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
