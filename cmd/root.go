package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisdamba/foodmatch/internal/logging"
	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *models.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "foodmatch",
		Short: "Ranks nearby campus food vendors for what you feel like eating",
		Long: `foodmatch turns a food intent (a suggestion such as "coffee", free text, or explicit
filters) and a location into a ranked list of nearby vendors with a match score and
a short reason. Vendors come from a JSON catalog or PostgreSQL/PostGIS and can be
seeded with synthetic campus data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := models.LoadConfig(a.v, a.cfgFile)
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			a.cfg = cfg
			a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log)
			if used := a.v.ConfigFileUsed(); used != "" {
				a.logger.Debug("using config file", "path", used)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./foodmatch.yaml or $HOME/.foodmatch.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("catalog", "", "catalog source (file, postgres)")
	flags.String("catalog-file", "", "path of the JSON catalog")
	a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	a.v.BindPFlag("catalog.source", flags.Lookup("catalog"))
	a.v.BindPFlag("catalog.file", flags.Lookup("catalog-file"))

	rootCmd.AddCommand(newRankCmd(a), newBatchCmd(a), newSeedCmd(a))
	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
