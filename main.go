// Package main is the entry point for the nrstats CLI tool, which imports
// Netrunner tournament results and computes identity and side statistics.
package main

import "github.com/pable/nrstats/cmd"

func main() {
	cmd.Execute()
}
