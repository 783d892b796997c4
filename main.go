package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bjorngylling/flowviz/config"
	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}

// app carries the loaded configuration to subcommands.
type app struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "flowviz",
		Short:         "Serve flow, topology, time-series and calendar charts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "log as JSON")

	root.AddCommand(newServeCmd(a), newAnnotateCmd(a), newRenderCmd(a))
	return root
}

// load reads configuration and binds the flags of cmd that name config keys.
func (a *app) load(cmd *cobra.Command) error {
	v, err := config.New(a.configFile)
	if err != nil {
		return err
	}
	bindings := map[string]string{
		"log-level":   "log.level",
		"log-json":    "log.json",
		"listen-addr": "server.listen_addr",
		"flow-file":   "flow.file",
		"source":      "flow.source",
		"brokers":     "kafka.brokers",
	}
	for flag, key := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "bind flag %s", flag)
			}
		}
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
		return err
	}
	a.v, a.cfg = v, cfg
	return nil
}
