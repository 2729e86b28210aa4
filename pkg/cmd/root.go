package cmd

import (
	"github.com/lab47/dispatch/pkg/config"
	"github.com/lab47/dispatch/pkg/scenario"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Used for flags.
	cfgFile string

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:           "dispatch-trace",
		Short:         "Trace synchronous event dispatch scenarios",
		Long:          ``,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}

func bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dispatch.yaml)")
	fs.String("log-level", "info", "log level: trace, debug, info, warn, error")

	v.BindPFlag("log_level", fs.Lookup("log-level"))
}

func loadConfig() (*config.Config, error) {
	if err := config.Prepare(v, cfgFile); err != nil {
		return nil, err
	}

	return config.Load(v)
}

// loadScenarios prefers file, then the configured scenario file, then the
// builtin scenarios.
func loadScenarios(cfg *config.Config, file string) ([]scenario.Scenario, error) {
	if file == "" {
		file = cfg.ScenarioFile
	}

	if file == "" {
		return scenario.Builtin(), nil
	}

	return scenario.LoadFile(file)
}
