package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
	output "automl-orchestrator/internal/core/ports/output"
)

var (
	historyStatus     string
	historyExperiment string
	historyService    string
	historyLimit      int
	historyOffset     int
)

// historyCmd is the history command
var historyCmd = &cobra.Command{
	Use:   "history [pipeline-id]",
	Short: "list recorded pipelines, or show one",
	Long: `List pipelines recorded in the ledger, newest first. With a pipeline id, show
that pipeline in full. Requires DATABASE_ENABLED=true.`,
	Example: `  $ automlctl history
  $ automlctl history --status failed --limit 5
  $ automlctl history 6f1c0e1e-9b7a-4f5e-8f0e-2d8f4c3b9a10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyStatus, "status", "s", "", "Filter by status (running, succeeded, failed, cleaned_up)")
	historyCmd.Flags().StringVarP(&historyExperiment, "experiment", "e", "", "Filter by experiment name")
	historyCmd.Flags().StringVar(&historyService, "service", "", "Filter by web service name")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of pipelines to list")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "Number of pipelines to skip")
	historyCmd.SilenceUsage = true
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newLedgerApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			ui.PrintError("invalid pipeline id: %s", args[0])
			return fmt.Errorf("invalid pipeline id")
		}
		p, err := a.ledger.Get(ctx, id)
		if err != nil {
			ui.PrintError("failed to get pipeline: %v", err)
			return err
		}
		fmt.Println(ui.RenderPipeline(p))
		return nil
	}

	pipelines, total, err := a.ledger.List(ctx, output.PipelineFilter{
		Status:      historyStatus,
		Experiment:  historyExperiment,
		ServiceName: historyService,
		Limit:       historyLimit,
		Offset:      historyOffset,
	})
	if err != nil {
		ui.PrintError("failed to list pipelines: %v", err)
		return err
	}

	fmt.Println()
	fmt.Println(ui.RenderPipelines(pipelines))
	fmt.Println(ui.Styles.Muted.Render(fmt.Sprintf("\nShowing %d of %d pipelines", len(pipelines), total)))
	return nil
}
