package main

import (
	_ "embed"
	"os"
	"strings"

	"junkfactory/pkg/log"
)

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	if err := newRootCommand(strings.TrimSpace(Version)).Execute(); err != nil {
		os.Exit(1)
	}
}
