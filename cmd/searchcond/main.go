package main

import (
	"os"

	"github.com/solatis/searchcond/cmd/searchcond/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
