package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
)

var (
	deployTargetFlag  string
	deployServiceName string
	deployModelName   string
	deployEntryScript string
)

// deployCmd is the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy <run-id>",
	Short: "register a run's model and deploy it as a web service",
	Long: `Register the model produced by an AutoML child run and deploy it as a web
service. The scoring script the run generated is downloaded and used as the
entry script unless --entry-script is given. The command waits for the
service to become healthy and prints its deployment logs if it does not.`,
	Example: `  $ automlctl deploy AutoML_0b7c_3
  $ automlctl deploy AutoML_0b7c_3 --target kserve --service-name bank-svc
  $ automlctl deploy AutoML_0b7c_3 --entry-script ./score.py`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployTargetFlag, "target", "t", "", "Deployment target: platform or kserve (default from DEPLOY_TARGET)")
	deployCmd.Flags().StringVar(&deployServiceName, "service-name", "", "Web service name (default from DEPLOY_SERVICE_NAME)")
	deployCmd.Flags().StringVar(&deployModelName, "model-name", "", "Registered model name (default from DEPLOY_MODEL_NAME)")
	deployCmd.Flags().StringVar(&deployEntryScript, "entry-script", "", "Local entry script to use instead of the generated one")
	deployCmd.SilenceUsage = true
}

func runDeploy(cmd *cobra.Command, args []string) error {
	runID := args[0]

	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	target, err := a.deployTarget(deployTargetFlag)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	run, err := a.training.Get(ctx, runID)
	if err != nil {
		ui.PrintError("failed to get run '%s': %v", runID, err)
		return fmt.Errorf("run lookup failed")
	}

	modelName := deployModelName
	if modelName == "" {
		modelName = a.cfg.Deploy.ModelName
	}
	model, err := a.deploy.Register(ctx, run, modelName, map[string]string{"experiment": run.ExperimentName})
	if err != nil {
		ui.PrintError("failed to register model: %v", err)
		return fmt.Errorf("model registration failed")
	}
	ui.PrintSuccess("Registered model '%s' version %d", model.Name, model.Version)

	spec := a.deploySpec(target, deployServiceName)
	spec.ModelIDs = []string{model.ID}
	spec.ModelURI = model.URI

	if deployEntryScript != "" {
		spec.EntryScriptPath = deployEntryScript
	} else {
		script, path, err := a.deploy.FetchEntryScript(ctx, run.ID)
		if err != nil {
			ui.PrintError("failed to download scoring script: %v", err)
			return fmt.Errorf("entry script download failed")
		}
		spec.EntryScript = script
		spec.EntryScriptPath = path
	}

	ui.PrintInfo("Deploying web service '%s' to %s...", spec.Name, target)
	ws, err := a.deploy.Deploy(ctx, spec)
	if err != nil {
		content := err.Error()
		if ws != nil {
			if logs, logErr := a.deploy.Logs(ctx, target, ws.Name); logErr == nil && logs != "" {
				content += "\n\n" + logs
			}
		}
		ui.PrintErrorBox("Deployment failed", content)
		return fmt.Errorf("deployment failed")
	}

	ui.PrintSuccessBox("Web service healthy", ui.KeyValues(
		[2]string{"Name", ws.Name},
		[2]string{"Target", string(ws.Target)},
		[2]string{"Model", fmt.Sprintf("%s:%d", model.Name, model.Version)},
		[2]string{"Scoring URI", ws.ScoringURI},
		[2]string{"Swagger URI", ws.SwaggerURI},
	))
	return nil
}
