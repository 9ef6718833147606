package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var annotate bool
	var message string

	cmd := &cobra.Command{
		Use:   "tag [name] [object]",
		Short: "List tags, or create a lightweight or annotated tag",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if len(args) == 0 {
				tags, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, t := range tags {
					fmt.Fprintln(cmd.OutOrStdout(), t.Name)
				}
				return nil
			}

			target := "HEAD"
			if len(args) == 2 {
				target = args[1]
			}
			return r.CreateTag(args[0], target, annotate, message)
		},
	}

	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "create an annotated tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "annotated tag message")
	return cmd
}
