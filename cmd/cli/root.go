package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/cli/agent"
	configcmd "github.com/techwm-project/techwm/cmd/cli/config"
	"github.com/techwm-project/techwm/cmd/cli/job"
	"github.com/techwm-project/techwm/cmd/cli/resource"
	"github.com/techwm-project/techwm/cmd/cli/serve"
	"github.com/techwm-project/techwm/cmd/cli/version"
	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/pkg/config"
	"github.com/techwm-project/techwm/pkg/logger"
	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/system"
	"github.com/techwm-project/techwm/pkg/telemetry"
)

type RootOptions struct {
	RepoPath string
	APIHost  string
	APIPort  int
}

func NewRootCmd() *cobra.Command {
	options := &RootOptions{}
	if repoPath, err := util.DefaultRepoPath(); err == nil {
		options.RepoPath = repoPath
	}
	if mode, err := logger.ParseLogMode(os.Getenv("LOG_TYPE")); err == nil {
		util.LoggingMode = mode
	}
	util.Caller = models.Caller{Username: util.DefaultUsername(), AccountType: models.AccountTypeDefault}

	rootCmd := &cobra.Command{
		Use:           "techwm",
		Short:         "Share a pool of CPUs and GPUs between jobs",
		Long:          "Register hardware resources and run jobs on them, first come first served.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			logger.ConfigureLogging(util.LoggingMode)

			cfg, err := util.LoadConfig(options.RepoPath, util.Overrides{Host: options.APIHost, Port: options.APIPort})
			if err != nil {
				return err
			}

			cm := system.NewCleanupManager()
			cm.RegisterCallbackWithContext(telemetry.Cleanup)

			ctx = context.WithValue(ctx, util.SystemManagerKey, cm)
			ctx = context.WithValue(ctx, util.ConfigKey, cfg)
			ctx = context.WithValue(ctx, util.RepoPathKey, options.RepoPath)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			// the command context may already be cancelled by a signal
			timeout := util.GetConfig(cmd.Context()).Server.ShutdownTimeout.AsTimeDuration()
			if timeout <= 0 {
				timeout = config.DefaultShutdownTimeout
			}
			ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), timeout)
			defer cancel()
			util.GetCleanupManager(cmd.Context()).Cleanup(ctx)
		},
	}

	rootCmd.AddCommand(serve.NewCmd())
	rootCmd.AddCommand(resource.NewCmd())
	rootCmd.AddCommand(job.NewCmd())
	rootCmd.AddCommand(agent.NewCmd())
	rootCmd.AddCommand(version.NewCmd())
	rootCmd.AddCommand(configcmd.NewCmd())

	rootCmd.PersistentFlags().StringVar(&options.RepoPath, "repo", options.RepoPath,
		`The directory holding config.yaml and the database. Defaults to $TECHWM_DIR or ~/.techwm.`)
	rootCmd.PersistentFlags().StringVar(&options.APIHost, "api-host", options.APIHost,
		`The host for the client and server to communicate on (via REST). Overrides Server.Host.`)
	rootCmd.PersistentFlags().IntVar(&options.APIPort, "api-port", options.APIPort,
		`The port for the client and server to communicate on (via REST). Overrides Server.Port.`)
	rootCmd.PersistentFlags().Var(flags.LoggingFlag(&util.LoggingMode), "log-mode",
		`Log format: 'default','json','combined'`)
	rootCmd.PersistentFlags().StringVar(&util.Caller.Username, "user", util.Caller.Username,
		`The username jobs are submitted and cancelled as. Defaults to $TECHWM_USER or the login name.`)
	rootCmd.PersistentFlags().Var(flags.AccountTypeFlag(&util.Caller.AccountType), "account-type",
		`The account type deciding which resources a job may request: 'default','research','root'`)

	return rootCmd
}

func Execute() {
	rootCmd := NewRootCmd()

	// Ensure commands are able to stop cleanly if someone presses ctrl+c
	ctx, cancel := signal.NotifyContext(context.Background(), util.ShutdownSignals...)
	defer cancel()
	rootCmd.SetContext(ctx)

	// Use stdout, not stderr for cmd.Print output, so that
	// e.g. ID=$(techwm job submit --id-only ...) works
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		util.Fatal(rootCmd, err, 1)
	}
}
