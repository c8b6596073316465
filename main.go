package main

import (
	"os"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
