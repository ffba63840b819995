package main

import (
	"os"

	"github.com/wonny/fundwatch/cmd/fundwatch/commands"
)

// main is the entry point for the fundwatch CLI
// ⭐ Unified CLI entry point: go run ./cmd/fundwatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
