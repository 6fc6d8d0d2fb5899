package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
)

var computeDeleteForce bool

// computeCmd groups compute cluster commands
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "manage the AutoML compute cluster",
}

var computeEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "get or create the compute cluster and wait until it is provisioned",
	Long: `Look up the configured compute cluster and create it when it does not exist.
Waits for provisioning to finish and fails if the cluster ends in a failed state.`,
	Example: `  $ automlctl compute ensure
  $ COMPUTE_MAX_NODES=4 automlctl compute ensure`,
	Args: cobra.NoArgs,
	RunE: runComputeEnsure,
}

var computeDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "delete the compute cluster",
	Example: `  $ automlctl compute delete
  $ automlctl compute delete cpu-cluster --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComputeDelete,
}

func init() {
	computeDeleteCmd.Flags().BoolVarP(&computeDeleteForce, "force", "f", false, "Skip confirmation prompt")

	computeEnsureCmd.SilenceUsage = true
	computeDeleteCmd.SilenceUsage = true

	computeCmd.AddCommand(computeEnsureCmd)
	computeCmd.AddCommand(computeDeleteCmd)
}

func runComputeEnsure(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	spec := a.computeSpec()
	ui.PrintInfo("Ensuring compute cluster '%s' (%s, %d..%d nodes)...", spec.Name, spec.VMSize, spec.MinNodes, spec.MaxNodes)

	target, err := a.compute.GetOrCreate(ctx, spec)
	if err != nil {
		ui.PrintError("failed to provision compute: %v", err)
		return fmt.Errorf("compute provisioning failed")
	}

	ui.PrintSuccessBox("Compute ready", ui.RenderCompute(target))
	return nil
}

func runComputeDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	name := a.cfg.Compute.Name
	if len(args) == 1 {
		name = args[0]
	}

	if !computeDeleteForce {
		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete compute cluster '%s' in workspace '%s'?", name, a.ref.Name),
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return fmt.Errorf("confirmation prompt failed: %w", err)
		}
		if !confirm {
			ui.PrintInfo("Deletion cancelled")
			return nil
		}
	}

	ui.PrintInfo("Deleting compute cluster '%s'...", name)
	if err := a.compute.Delete(ctx, name); err != nil {
		ui.PrintError("failed to delete compute: %v", err)
		return fmt.Errorf("deletion failed")
	}

	ui.PrintSuccess("Successfully deleted compute cluster '%s'", name)
	return nil
}
