package main

import (
	"os"

	"github.com/subsidiematch/subsidiematch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
