package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	var sign bool
	var keyPath string

	cmd := &cobra.Command{
		Use:   "commit -m <message>",
		Short: "Record the staged tree as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var signer repo.CommitSigner
			if sign {
				signer, _, err = newSSHCommitSigner(keyPath)
				if err != nil {
					return err
				}
			}

			h, err := r.Commit(message, signer)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "committed %s\n", h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "s", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&keyPath, "key", "", "SSH private key path (default: ~/.ssh/id_*)")
	return cmd
}
