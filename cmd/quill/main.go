// Package main provides the quill command.
package main

import (
	"os"

	"github.com/quill-lang/quill/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
