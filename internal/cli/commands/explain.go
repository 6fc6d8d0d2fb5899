package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
)

var (
	explainTop     int
	explainSkipRaw bool
)

// explainCmd is the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <run-id>",
	Short: "show the featurization summary and feature importance of a run",
	Long: `Download the featurization summary of an AutoML child run, save it under
DATA_OUTPUT_DIR and print it together with the global feature importance over
engineered features and raw columns.`,
	Example: `  $ automlctl explain AutoML_0b7c_3
  $ automlctl explain AutoML_0b7c_3 --top 20`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().IntVar(&explainTop, "top", 10, "Number of features to show per importance table")
	explainCmd.Flags().BoolVar(&explainSkipRaw, "engineered-only", false, "Skip raw feature importance")
	explainCmd.SilenceUsage = true
}

func runExplain(cmd *cobra.Command, args []string) error {
	runID := args[0]

	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	summary, path, err := a.explain.FeaturizationSummary(ctx, runID)
	if err != nil {
		ui.PrintError("failed to get featurization summary: %v", err)
		return fmt.Errorf("explain failed")
	}
	fmt.Println()
	ui.PrintBold("Featurization summary")
	fmt.Println(ui.RenderFeaturization(summary))
	fmt.Println(ui.Styles.Muted.Render("saved to " + path))

	engineered, err := a.explain.FeatureImportance(ctx, runID, false)
	if err != nil {
		ui.PrintError("failed to get engineered feature importance: %v", err)
		return fmt.Errorf("explain failed")
	}
	fmt.Println()
	ui.PrintBold("Engineered feature importance")
	fmt.Println(ui.RenderImportance(engineered, explainTop))

	if !explainSkipRaw {
		raw, err := a.explain.FeatureImportance(ctx, runID, true)
		if err != nil {
			ui.PrintError("failed to get raw feature importance: %v", err)
			return fmt.Errorf("explain failed")
		}
		fmt.Println()
		ui.PrintBold("Raw feature importance")
		fmt.Println(ui.RenderImportance(raw, explainTop))
	}

	fmt.Println()
	return nil
}
