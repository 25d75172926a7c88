// Package main is the entry point for the treediff CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/treediff/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
