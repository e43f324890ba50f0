package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tabscript/pkg/config"
	"tabscript/pkg/observability"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// cli carries what the persistent pre-run prepares for subcommands.
type cli struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "tabscript",
		Short:         "Run page scripts against a headless reference host.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadViper(c.v, c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = observability.NewLogger(cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
			c.logger.Debug("configuration loaded", zap.String("file", c.v.ConfigFileUsed()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (default is ./tabscript.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = c.v.BindPFlag("logger.level", root.PersistentFlags().Lookup("log-level"))
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	root.AddCommand(newRunCmd(c), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}
