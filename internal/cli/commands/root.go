package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"automl-orchestrator/internal/cli/ui"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0"

var (
	configFile      string
	workspaceConfig string
	logLevel        string
)

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "automlctl",
	Short:   "Distributed AutoML classification on a managed ML platform",
	Version: version,
	Long: `A command-line tool that drives a managed ML platform end to end: binds a
workspace and experiment, provisions a compute cluster, registers the bank
marketing datasets, runs distributed AutoML classification, explains the best
model, deploys it as a web service, scores the test set and cleans up.`,
	Example: `  # Run the whole pipeline with the workspace config.json in the current directory
  $ automlctl run

  # Keep the web service running after scoring
  $ automlctl run --keep-service

  # Inspect a finished run
  $ automlctl explain AutoML_0b7c_3

  # Delete a deployed service
  $ automlctl cleanup automl-distributed-svc`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (yaml, json or toml) overlaid on the environment")
	rootCmd.PersistentFlags().StringVarP(&workspaceConfig, "workspace-config", "w", "", "Path to the workspace config.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

func formatVersion() string {
	return fmt.Sprintf("automlctl version %s\n", version)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the automlctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), formatVersion())
	},
}
