// Package main is the entry point for the tabcanvas application.
package main

import (
	"os"

	"github.com/jmylchreest/tabcanvas/cmd/tabcanvas/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
