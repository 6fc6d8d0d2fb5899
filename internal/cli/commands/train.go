package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
)

var trainNoWait bool

// trainCmd is the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "submit distributed AutoML classification and wait for the best run",
	Long: `Bind the workspace, ensure the compute cluster, register the datasets and
submit a distributed AutoML classification run. By default the command waits
for the run to finish and prints the best child run.

A timeout while waiting does not cancel the remote run.`,
	Example: `  $ automlctl train
  $ automlctl train --no-wait
  $ AUTOML_ALLOWED_MODELS=LightGBM,XGBoostClassifier automlctl train`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().BoolVar(&trainNoWait, "no-wait", false, "Return once the run is submitted")
	trainCmd.SilenceUsage = true
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	_, exp, err := a.workspace.Bind(ctx, a.ref, a.cfg.Workspace.Experiment)
	if err != nil {
		ui.PrintError("failed to bind workspace: %v", err)
		return fmt.Errorf("workspace binding failed")
	}

	target, err := a.compute.GetOrCreate(ctx, a.computeSpec())
	if err != nil {
		ui.PrintError("failed to provision compute: %v", err)
		return fmt.Errorf("compute provisioning failed")
	}

	set, err := a.datasets.RegisterAll(ctx, a.datasetSources().Specs())
	if err != nil {
		ui.PrintError("failed to register datasets: %v", err)
		return fmt.Errorf("dataset registration failed")
	}

	cfg := a.automlConfig()
	cfg.TrainingDataID = set.Training.ID
	if set.Validation != nil {
		cfg.ValidationDataID = set.Validation.ID
	}

	run, err := a.training.Submit(ctx, exp.Name, &cfg, target)
	if err != nil {
		ui.PrintError("failed to submit AutoML run: %v", err)
		return fmt.Errorf("submission failed")
	}
	ui.PrintSuccess("Submitted AutoML run '%s' to experiment '%s'", run.ID, exp.Name)

	if trainNoWait {
		return nil
	}

	ui.PrintInfo("Waiting for run '%s' to finish...", run.ID)
	finished, err := a.training.Wait(ctx, run.ID)
	if err != nil {
		if finished != nil {
			fmt.Println(ui.RenderRun(finished, cfg.PrimaryMetric))
		}
		ui.PrintError("AutoML run did not complete: %v", err)
		return fmt.Errorf("training failed")
	}

	best, err := a.training.BestRun(ctx, finished.ID, cfg.PrimaryMetric)
	if err != nil {
		ui.PrintError("failed to retrieve best run: %v", err)
		return fmt.Errorf("best run retrieval failed")
	}

	ui.PrintSuccessBox("Best run", ui.RenderRun(best, cfg.PrimaryMetric))
	return nil
}
