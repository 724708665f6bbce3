package main

import (
	"os"

	"github.com/solidprinciples/solid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
