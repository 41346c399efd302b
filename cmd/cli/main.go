// Package main provides the entry point for the gitseek command-line client.
package main

import (
	"os"

	"gitseek/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
