package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/gridplan/trace"
)

var errRunsDiffer = errors.New("runs differ")

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <run-a> <run-b>",
		Short: "Compare two exported run folders",
		Long: `Compares agent trajectories and maps of two run folders. Visited order
must match exactly; explored cells compare as sets; planning time is ignored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := trace.CompareFolders(args[0], args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if c.Equal() {
				fmt.Fprintln(w, "runs are identical")
				return nil
			}
			if !c.AgentsEqual {
				fmt.Fprintf(w, "agent records differ (-a +b):\n%s\n", c.AgentDiff)
			}
			if !c.MapsEqual {
				fmt.Fprintf(w, "maps differ (-a +b):\n%s\n", c.MapDiff)
			}
			return errRunsDiffer
		},
	}
}
