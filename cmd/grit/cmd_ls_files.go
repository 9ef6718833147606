package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newLsFilesCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List staged files",
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
			if verbose {
				fmt.Fprintf(out, "index file format v%d, containing %d entries\n", idx.Version, len(idx.Entries))
			}
			for _, e := range idx.Entries {
				fmt.Fprintln(out, e.Name)
				if verbose {
					fmt.Fprintf(out, "  %04b with perms %o\n", e.ModeType, e.ModePerms)
					fmt.Fprintf(out, "  blob %s\n", e.Hash)
					fmt.Fprintf(out, "  created %d.%d, modified %d.%d\n", e.CTimeSec, e.CTimeNsec, e.MTimeSec, e.MTimeNsec)
					fmt.Fprintf(out, "  device %d, inode %d\n", e.Dev, e.Ino)
					fmt.Fprintf(out, "  user %d, group %d\n", e.UID, e.GID)
					fmt.Fprintf(out, "  flags: stage=%d assume_valid=%v\n", e.Stage, e.AssumeValid)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show entry metadata")
	return cmd
}
