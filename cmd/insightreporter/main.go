// Command insightreporter turns a company metrics CSV into a breaking-news
// brief and three recommendations for the CEO.
//
// Usage:
//
//	insightreporter serve [--migrations=<dir>]
//	insightreporter run [source...] [--json] [--logs] [--progress] [--parallel=N]
//	insightreporter analyze [source] [--rows=N] [--json]
//	insightreporter keys create --name=<name> [--scope=briefing]
//	insightreporter keys list
//	insightreporter keys revoke <id>
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
