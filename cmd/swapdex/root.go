package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/config"
	logpkg "github.com/kailas-cloud/swapdex/internal/logger"
	"github.com/kailas-cloud/swapdex/internal/version"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	env     string
	envFile string
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "swapdex",
		Short:         "Alias-addressed search index manager with zero-downtime hot swaps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", "", "environment name, selects config/<env>.yaml (default $ENV or local)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(
		newServeCmd(opts),
		newReindexCmd(opts),
		newResolveCmd(opts),
		newDeleteCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) load() error {
	// Missing .env is fine; real deployments inject the environment directly.
	_ = godotenv.Load(o.envFile)

	if o.env == "" {
		o.env = config.GetEnv()
	}
	cfg, err := config.Load(o.env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(o.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}
