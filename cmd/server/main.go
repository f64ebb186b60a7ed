// Package main implements the entry point for the MelodySnap API server,
// which turns uploaded photos into songs and renders short share videos.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
