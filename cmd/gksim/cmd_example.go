package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gksim/withdrawal-simulator/internal/config"
)

const defaultExamplePath = "gksim.yaml"

var exampleCmd = &cobra.Command{
	Use:   "example [path]",
	Short: "Write an example configuration file",
	Long: `Example writes a complete, commented-by-defaults configuration to the
given path (default ` + defaultExamplePath + `) as a starting point for a plan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExample,
}

func runExample(cmd *cobra.Command, args []string) error {
	path := defaultExamplePath
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %s", path)
	}
	if err := config.SaveConfig(config.ExampleConfig(), path); err != nil {
		return err
	}
	fmt.Printf("Wrote example configuration to %s\n", path)
	fmt.Println("Edit it, then run: gksim simulate --config " + path)
	return nil
}
