package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			idx, err := r.ReadIndex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if branch, ok, err := r.ActiveBranch(); err != nil {
				return err
			} else if ok {
				fmt.Fprintf(out, "On branch %s.\n", branch)
			} else {
				head, _, err := r.Head()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "HEAD detached at %s\n", head)
			}

			staged, err := r.StatusHeadIndex(idx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Changes to be committed:")
			for _, name := range staged.Added {
				fmt.Fprintf(out, "  added:       %s\n", name)
			}
			for _, name := range staged.Modified {
				fmt.Fprintf(out, "  modified:    %s\n", name)
			}
			for _, name := range staged.Deleted {
				fmt.Fprintf(out, "  deleted:     %s\n", name)
			}

			work, err := r.StatusIndexWorktree(idx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Changes not staged for commit:")
			for _, name := range work.Modified {
				fmt.Fprintf(out, "  modified:    %s\n", name)
			}
			for _, name := range work.Deleted {
				fmt.Fprintf(out, "  deleted:     %s\n", name)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Untracked files:")
			for _, name := range work.Untracked {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
