package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
)

// datasetsCmd groups dataset commands
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "manage the training, validation and test datasets",
}

var datasetsRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "register the train, validate and test CSV files as tabular datasets",
	Long: `Register the three delimited files named by DATA_TRAIN_URL, DATA_VALIDATE_URL and
DATA_TEST_URL as tabular datasets, coercing DATA_FLOAT_COLUMNS to floating point.
Registration stops at the first failure.`,
	Example: `  $ automlctl datasets register
  $ DATA_DATASET_PREFIX=bank automlctl datasets register`,
	Args: cobra.NoArgs,
	RunE: runDatasetsRegister,
}

func init() {
	datasetsRegisterCmd.SilenceUsage = true
	datasetsCmd.AddCommand(datasetsRegisterCmd)
}

func runDatasetsRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	ui.PrintInfo("Registering datasets with prefix '%s'...", a.cfg.Data.DatasetPrefix)

	specs := a.datasetSources().Specs()
	set, err := a.datasets.RegisterAll(ctx, specs)
	if err != nil {
		ui.PrintError("failed to register datasets: %v", err)
		return fmt.Errorf("dataset registration failed")
	}

	fmt.Println()
	fmt.Println(ui.RenderDatasets(set))
	fmt.Println()
	ui.PrintSuccess("Registered %d datasets", len(specs))
	return nil
}
