// Package main is the entry point for the dotafights CLI tool, which parses
// Dota 2 replay files and reconstructs deaths, fights and objective timings.
package main

import "github.com/mfriera/go-dota-fights/cmd"

func main() {
	cmd.Execute()
}
