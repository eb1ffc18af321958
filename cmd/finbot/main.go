package main

import (
	"os"

	"finbot/cmd/finbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
