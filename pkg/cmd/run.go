package cmd

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/lab47/dispatch/pkg/event"
	"github.com/lab47/dispatch/pkg/scenario"
	"github.com/spf13/cobra"
)

var (
	runFile string
	runDump bool

	runCmd = &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios and check their outcome",
		Long:  ``,
		RunE:  run,
	}
)

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "scenario file to run instead of the builtin scenarios")
	runCmd.Flags().BoolVar(&runDump, "dump", false, "dump the dispatched events")
}

func run(c *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	L := cfg.Logger()

	scs, err := loadScenarios(cfg, runFile)
	if err != nil {
		return err
	}

	scs, err = scenario.Select(scs, args...)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()

	r := event.Renderer{Out: out}
	ctx := r.WithContext(context.Background(), event.WithLogger(L.Named("render")))

	results, err := scenario.NewRunner(L.Named("runner")).RunAll(ctx, scs)

	if runDump {
		for _, res := range results {
			fmt.Fprintf(out, "%s:\n%s", res.Name, spew.Sdump(res.Event))
		}
	}

	return err
}
