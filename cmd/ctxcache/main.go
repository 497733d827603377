// Package main provides the entry point for the ctxcache CLI.
package main

import (
	"os"

	"github.com/timbuchinger/context-cache/cmd/ctxcache/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
