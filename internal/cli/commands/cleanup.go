package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
	"automl-orchestrator/internal/core/services"
)

var (
	cleanupTarget        string
	cleanupForce         bool
	cleanupDeleteCompute bool
)

// cleanupCmd is the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup <pipeline-id|service>",
	Short: "delete a deployed web service",
	Long: `Delete the web service a pipeline deployed. The argument is either a pipeline
id from 'automlctl history' or a web service name. With a ledger configured the
pipeline record is marked CLEANED_UP. A service that is already gone is not an
error.

By default, you will be prompted to confirm the deletion. Use --force to skip confirmation.`,
	Example: `  $ automlctl cleanup automl-distributed-svc
  $ automlctl cleanup 6f1c0e1e-9b7a-4f5e-8f0e-2d8f4c3b9a10 --delete-compute
  $ automlctl cleanup automl-distributed-svc --force`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVarP(&cleanupTarget, "target", "t", "", "Deployment target when cleaning up by service name (default from DEPLOY_TARGET)")
	cleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "Skip confirmation prompt")
	cleanupCmd.Flags().BoolVar(&cleanupDeleteCompute, "delete-compute", false, "Also delete the compute cluster")
	cleanupCmd.SilenceUsage = true
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	target, err := a.deployTarget(cleanupTarget)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	if !cleanupForce {
		msg := fmt.Sprintf("Delete web service for '%s'?", args[0])
		if cleanupDeleteCompute {
			msg = fmt.Sprintf("Delete web service and compute cluster for '%s'?", args[0])
		}
		confirm := false
		if err := survey.AskOne(&survey.Confirm{Message: msg}, &confirm); err != nil {
			return fmt.Errorf("confirmation prompt failed: %w", err)
		}
		if !confirm {
			ui.PrintInfo("Cleanup cancelled")
			return nil
		}
	}

	record, err := a.pipeline.Cleanup(ctx, services.CleanupRequest{
		Target:        args[0],
		DeployTarget:  target,
		DeleteCompute: cleanupDeleteCompute,
		ComputeName:   a.cfg.Compute.Name,
	})
	if err != nil {
		ui.PrintError("cleanup failed: %v", err)
		return fmt.Errorf("cleanup failed")
	}

	if record != nil {
		ui.PrintSuccessBox("Cleaned up", ui.RenderPipeline(record))
		return nil
	}
	ui.PrintSuccess("Successfully cleaned up '%s'", args[0])
	return nil
}
