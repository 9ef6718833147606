package main

import (
	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var objType string

	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Print the serialized content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			sha, err := r.Find(args[0], object.Type(objType), true)
			if err != nil {
				return err
			}

			obj, err := r.Store.Read(sha)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(obj.Serialize())
			return err
		},
	}

	cmd.Flags().StringVarP(&objType, "type", "t", "", "peel to this object type")
	return cmd
}
