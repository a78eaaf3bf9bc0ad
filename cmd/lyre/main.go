package main

import (
	"fmt"
	"os"

	"lyre-server/cmd/lyre/cmd"
	"lyre-server/internal/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cmd.Execute()
}
