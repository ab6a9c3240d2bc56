package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewpaige1/engcard-api/cloudsync"
)

func newSyncCmd(a *app) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Back up or restore cards through an encrypted gist",
	}
	cmd.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "encryption passphrase, never stored")

	service := func() (*cloudsync.Service, error) {
		cards, err := a.openStore()
		if err != nil {
			return nil, err
		}
		client := cloudsync.NewGistClient(a.env.GitHubAPIURL, a.env.GitHubToken, nil)
		return cloudsync.NewService(cards, client, a.env.GistID), nil
	}

	push := &cobra.Command{
		Use:   "push",
		Short: "Encrypt every card and upload it",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service()
			if err != nil {
				return err
			}
			res, err := svc.Upload(cmd.Context(), passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d cards to gist %s\n", res.Cards, res.GistID)
			if res.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "set GIST_ID=%s to sync other devices\n", res.GistID)
			}
			return nil
		},
	}

	pull := &cobra.Command{
		Use:   "pull",
		Short: "Download, decrypt and import cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service()
			if err != nil {
				return err
			}
			n, err := svc.Download(cmd.Context(), passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards\n", n)
			return nil
		},
	}

	cmd.AddCommand(push, pull)
	return cmd
}
