package main

import (
	"os"

	"github.com/opfleet/fleethealth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
