package main

import (
	"fmt"
	"os"
	"strings"

	"automl-orchestrator/internal/cli/commands"
	"automl-orchestrator/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown command") {
			ui.PrintError("%s", errMsg)
			fmt.Println("\nRun 'automlctl --help' for usage.")
		}
		os.Exit(1)
	}
}
