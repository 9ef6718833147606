package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [start]",
		Short: "Print the commit graph as a Graphviz digraph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := "HEAD"
			if len(args) > 0 {
				start = args[0]
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			nodes, err := r.Log(start)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "digraph gritlog{")
			fmt.Fprintln(out, "  node[shape=rect]")
			for _, n := range nodes {
				label := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(n.Summary)
				fmt.Fprintf(out, "  c_%s [label=\"%s: %s\"];\n", n.Hash, n.Hash[:7], label)
				for _, parent := range n.Parents {
					fmt.Fprintf(out, "  c_%s -> c_%s;\n", n.Hash, parent)
				}
			}
			fmt.Fprintln(out, "}")
			return nil
		},
	}
}
