package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	listFile string

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  list,
	}
)

func init() {
	listCmd.Flags().StringVarP(&listFile, "file", "f", "", "scenario file to list instead of the builtin scenarios")
}

func list(c *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scs, err := loadScenarios(cfg, listFile)
	if err != nil {
		return err
	}

	for _, sc := range scs {
		var sets []string
		for _, p := range sc.Providers {
			sets = append(sets, "["+strings.Join(p, " ")+"]")
		}

		kind := sc.Event
		if kind == "" {
			kind = "plain"
		}

		fmt.Fprintf(c.OutOrStdout(), "%-20s %-10s %s\n", sc.Name, kind, strings.Join(sets, " "))
	}

	return nil
}
