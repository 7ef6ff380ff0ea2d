package main

import (
	"github.com/spf13/cobra"

	"github.com/zeusync/dataconverter/internal/config"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "dataconverter",
		Short:         "Migrate versioned game records to newer data versions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML)")
	flags.String("log-level", "", "log level, overrides log.level")
	flags.Bool("disable-command-converter", false, "leave command strings untouched")

	root.AddCommand(
		newConvertCmd(a),
		newServeCmd(a),
		newTypesCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration, then applies flags the user set explicitly.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("disable-command-converter") {
		cfg.Converter.DisableCommandConverter, _ = flags.GetBool("disable-command-converter")
	}
	if flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("workers") {
		cfg.Migrator.Workers, _ = flags.GetInt("workers")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}
