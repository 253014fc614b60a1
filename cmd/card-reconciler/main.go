// Package main is the entry point for the card-reconciler CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/card-reconciler/cmd/card-reconciler/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
