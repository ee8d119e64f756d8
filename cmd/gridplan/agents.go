package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/gridplan/navigation"
)

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the available agent types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range navigation.Kinds() {
				v, err := navigation.Lookup(string(k))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", k, v.DisplayName)
			}
			return nil
		},
	}
}
