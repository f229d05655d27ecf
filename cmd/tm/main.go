package main

import (
	"fmt"
	"os"

	"task-manager/internal/cli"
)

func main() {
	root := cli.NewRootCommand(newApp)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
