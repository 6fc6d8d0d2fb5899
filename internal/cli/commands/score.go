package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
	"automl-orchestrator/internal/core/domain"
)

var (
	scoreTarget string
	scoreData   string
	scoreShow   int
)

// scoreCmd is the score command
var scoreCmd = &cobra.Command{
	Use:   "score <service>",
	Short: "score a CSV file against a deployed web service",
	Long: `Load a delimited file, split off the label column and POST the remaining
records to the service as {"data": [...]}. Predictions are compared with the
labels and the accuracy and confusion matrix are printed.

The file defaults to DATA_TEST_URL and may be an http(s) URL or a local path.`,
	Example: `  $ automlctl score automl-distributed-svc
  $ automlctl score automl-distributed-svc --data ./holdout.csv --show 20`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreTarget, "target", "t", "", "Deployment target: platform or kserve (default from DEPLOY_TARGET)")
	scoreCmd.Flags().StringVarP(&scoreData, "data", "d", "", "CSV file or URL to score (default from DATA_TEST_URL)")
	scoreCmd.Flags().IntVar(&scoreShow, "show", 10, "Number of predictions to print")
	scoreCmd.SilenceUsage = true
}

func runScore(cmd *cobra.Command, args []string) error {
	name := args[0]

	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	target, err := a.deployTarget(scoreTarget)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	ws, err := a.deploy.Get(ctx, target, name)
	if err != nil {
		ui.PrintError("failed to get web service '%s': %v", name, err)
		return fmt.Errorf("service lookup failed")
	}
	if !ws.IsHealthy() {
		ui.PrintError("web service '%s' is %s", name, ws.State)
		return domain.ErrServiceNotReady
	}

	location := scoreData
	if location == "" {
		location = a.cfg.Data.TestURL
	}

	ui.PrintInfo("Scoring '%s' against %s...", location, ws.ScoringURI)
	result, err := a.scoring.ScoreTestSet(ctx, ws, location, a.tableOptions())
	if result != nil {
		fmt.Println()
		fmt.Println(ui.RenderPredictions(result.Predictions, result.Labels, scoreShow))
	}
	if err != nil {
		if errors.Is(err, domain.ErrPredictionCountMismatch) {
			ui.PrintWarning("%v", err)
			return err
		}
		ui.PrintError("scoring failed: %v", err)
		return fmt.Errorf("scoring failed")
	}

	if result.Evaluation != nil {
		fmt.Println()
		ui.PrintSuccessBox("Test set scoring", ui.RenderEvaluation(result.Evaluation))
	}
	return nil
}
