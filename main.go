package main

import (
	"fmt"
	"os"

	"github.com/kilianp07/dockflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dockflow:", err)
		os.Exit(1)
	}
}
