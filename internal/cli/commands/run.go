package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
	"automl-orchestrator/internal/core/services"
)

var (
	runTarget      string
	runServiceName string
	runModelName   string
	runSkipDeploy  bool
	runKeepService bool
	runTop         int
	runLabels      map[string]string
)

// runCmd is the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the whole AutoML pipeline end to end",
	Long: `Run every step in order and stop at the first failure:

  1. bind the workspace and experiment
  2. get or create the compute cluster and wait until it is provisioned
  3. register the train, validate and test datasets
  4. submit distributed AutoML classification and wait for it
  5. retrieve the best child run
  6. download the featurization summary
  7. fetch raw and engineered feature importance
  8. register the best model
  9. deploy it as a web service
 10. score the test set and report accuracy
 11. delete the web service

The web service is deleted at the end unless --keep-service is given.`,
	Example: `  # Run with defaults from the environment
  $ automlctl run

  # Deploy to KServe instead of the platform and keep the endpoint
  $ automlctl run --target kserve --keep-service

  # Train and register only
  $ automlctl run --skip-deploy --label owner=ml-team`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVarP(&runTarget, "target", "t", "", "Deployment target: platform or kserve (default from DEPLOY_TARGET)")
	runCmd.Flags().StringVar(&runServiceName, "service-name", "", "Web service name (default from DEPLOY_SERVICE_NAME)")
	runCmd.Flags().StringVar(&runModelName, "model-name", "", "Registered model name (default from DEPLOY_MODEL_NAME)")
	runCmd.Flags().BoolVar(&runSkipDeploy, "skip-deploy", false, "Stop after registering the model")
	runCmd.Flags().BoolVar(&runKeepService, "keep-service", false, "Leave the web service running after scoring")
	runCmd.Flags().IntVar(&runTop, "top", 10, "Number of features to show per importance table")
	runCmd.Flags().StringToStringVarP(&runLabels, "label", "l", nil, "Label recorded on the pipeline (key=value, repeatable)")

	runCmd.SilenceUsage = true
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	defer a.Close()

	target, err := a.deployTarget(runTarget)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	modelName := runModelName
	if modelName == "" {
		modelName = a.cfg.Deploy.ModelName
	}

	req := services.PipelineRequest{
		Workspace:   a.ref,
		Experiment:  a.cfg.Workspace.Experiment,
		Compute:     a.computeSpec(),
		Datasets:    a.datasetSources(),
		AutoML:      a.automlConfig(),
		ModelName:   modelName,
		ModelTags:   map[string]string{"experiment": a.cfg.Workspace.Experiment},
		Service:     a.deploySpec(target, runServiceName),
		SkipDeploy:  runSkipDeploy,
		KeepService: runKeepService,
		Labels:      runLabels,
	}

	ui.PrintInfo("Running AutoML pipeline in workspace '%s', experiment '%s'...", a.ref.Name, req.Experiment)

	res, err := a.pipeline.Run(ctx, req)
	if res != nil {
		printPipelineResult(res, a.cfg.AutoML.PrimaryMetric, runTop)
	}
	if err != nil {
		content := err.Error()
		if res != nil && res.Pipeline != nil {
			content = fmt.Sprintf("%s\n\nPipeline %s stopped at step '%s'.", content, res.Pipeline.ID, res.Pipeline.Stage)
		}
		ui.PrintErrorBox("Pipeline failed", content)
		return fmt.Errorf("pipeline failed")
	}

	ui.PrintSuccessBox("Pipeline succeeded", ui.RenderPipeline(res.Pipeline))
	return nil
}

// printPipelineResult prints whatever the pipeline produced, in step order.
func printPipelineResult(res *services.PipelineResult, metric string, top int) {
	section := func(title, body string) {
		fmt.Println()
		ui.PrintBold(title)
		fmt.Println(body)
	}

	if res.Compute != nil {
		section("Compute", ui.RenderCompute(res.Compute))
	}
	if res.Datasets != nil {
		section("Datasets", ui.RenderDatasets(res.Datasets))
	}
	if res.Run != nil {
		section("AutoML run", ui.RenderRun(res.Run, metric))
	}
	if res.BestRun != nil {
		section("Best run", ui.RenderRun(res.BestRun, metric))
	}
	if res.Featurization != nil {
		section("Featurization summary", ui.RenderFeaturization(res.Featurization))
		if res.FeaturizationPath != "" {
			fmt.Println(ui.Styles.Muted.Render("saved to " + res.FeaturizationPath))
		}
	}
	if res.RawImportance != nil {
		section("Raw feature importance", ui.RenderImportance(res.RawImportance, top))
	}
	if res.EngineeredImportance != nil {
		section("Engineered feature importance", ui.RenderImportance(res.EngineeredImportance, top))
	}
	if res.Model != nil {
		section("Registered model", ui.KeyValues(
			[2]string{"Name", res.Model.Name},
			[2]string{"Version", fmt.Sprint(res.Model.Version)},
			[2]string{"ID", res.Model.ID},
		))
	}
	if res.Service != nil {
		section("Web service", ui.KeyValues(
			[2]string{"Name", res.Service.Name},
			[2]string{"Target", string(res.Service.Target)},
			[2]string{"State", string(res.Service.State)},
			[2]string{"Scoring URI", res.Service.ScoringURI},
			[2]string{"Error", res.Service.Error},
		))
	}
	if res.Scoring != nil && res.Scoring.Evaluation != nil {
		section("Test set scoring", ui.RenderEvaluation(res.Scoring.Evaluation))
	}
	fmt.Println()
}
