package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newHashObjectCmd() *cobra.Command {
	var objType string
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t type] <file>",
		Short: "Compute an object hash, optionally storing the object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			obj, err := objectFromData(object.Type(objType), data)
			if err != nil {
				return err
			}

			var h object.Hash
			if write {
				r, err := repo.Open(".")
				if err != nil {
					return err
				}
				h, err = r.Store.Write(obj)
				if err != nil {
					return err
				}
			} else {
				// Dry run: the hash never needs a store.
				h = object.HashObject(obj)
			}

			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&objType, "type", "t", "blob", "object type (blob, tree, commit, tag)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the store")
	return cmd
}

// objectFromData decodes raw bytes as the requested object type.
func objectFromData(t object.Type, data []byte) (object.Object, error) {
	switch t {
	case object.TypeBlob:
		return object.UnmarshalBlob(data)
	case object.TypeTree:
		return object.UnmarshalTree(data)
	case object.TypeCommit:
		return object.UnmarshalCommit(data)
	case object.TypeTag:
		return object.UnmarshalTag(data)
	default:
		return nil, fmt.Errorf("%w: %q", object.ErrUnknownType, t)
	}
}
