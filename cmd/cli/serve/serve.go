package serve

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/cmd/util/flags"
	"github.com/techwm-project/techwm/pkg/config/types"
	"github.com/techwm-project/techwm/pkg/publicapi"
	"github.com/techwm-project/techwm/pkg/telemetry"
)

type ServeOptions struct {
	StoreType    types.StorageType
	ServerConfig publicapi.Config
}

func NewServeOptions() *ServeOptions {
	return &ServeOptions{
		StoreType:    types.BoltDB,
		ServerConfig: publicapi.DefaultConfig,
	}
}

func NewCmd() *cobra.Command {
	options := NewServeOptions()

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resource catalog, the job scheduler and the API in front of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, options)
		},
	}

	serveCmd.Flags().Var(flags.StorageTypeFlag(&options.StoreType), "store",
		`Where resources and finished jobs are kept: 'BoltDB' or 'InMemory'. Overrides Store.Type.`)
	serveCmd.Flags().DurationVar(&options.ServerConfig.MaxWait, "max-wait", options.ServerConfig.MaxWait,
		`The longest a client may ask the server to hold a job submission until the job runs.`)
	serveCmd.Flags().DurationVar(&options.ServerConfig.RequestHandlerTimeout, "request-timeout",
		options.ServerConfig.RequestHandlerTimeout, `The time budget of a single API request.`)
	serveCmd.Flags().Float64Var(&options.ServerConfig.ThrottleLimit, "throttle-limit",
		options.ServerConfig.ThrottleLimit, `Requests per second allowed per client.`)

	return serveCmd
}

func serve(cmd *cobra.Command, options *ServeOptions) error {
	ctx := cmd.Context()
	cm := util.GetCleanupManager(ctx)
	cfg := util.GetConfig(ctx)
	if cmd.Flags().Changed("store") {
		cfg.Store.Type = options.StoreType
	}
	if options.ServerConfig.MaxWait > options.ServerConfig.RequestHandlerTimeout {
		return fmt.Errorf("--max-wait %s must not exceed --request-timeout %s",
			options.ServerConfig.MaxWait, options.ServerConfig.RequestHandlerTimeout)
	}

	telemetry.SetupErrorHandler()
	telemetry.SetupMeterProvider(telemetry.ReadersFromEnv(ctx)...)

	node, err := NewNode(ctx, cfg, options.ServerConfig, cm)
	if err != nil {
		return fmt.Errorf("error creating node: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- node.APIServer.ListenAndServe(ctx, cm)
	}()

	cmd.Printf("TechWM is serving on %s (store: %s)\n", node.APIServer.GetURI(), cfg.Store.Type)

	select {
	case <-ctx.Done():
		log.Ctx(ctx).Info().Msg("shutting down")
		return nil
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	}
}
