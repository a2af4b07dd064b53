// maskroute generates escape routing for pad arrays on photomask layouts,
// routes single connections around obstacles and checks layouts against
// per-layer design rules.
//
// Build:
//
//	go build -o maskroute ./cmd/maskroute
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
