package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/andrewpaige1/engcard-api/quiz"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every card as a JSON array",
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.openStore()
			if err != nil {
				return err
			}
			data, err := cards.ExportAll(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return errors.Wrapf(err, "write %s", out)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert cards from a JSON array, such as an export or a seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrapf(err, "read %s", file)
			}
			cards, err := a.openStore()
			if err != nil {
				return err
			}
			n, err := cards.ImportAll(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file to import")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newResetMissesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-misses",
		Short: "Set wrongCount back to 0 on every card",
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.openStore()
			if err != nil {
				return err
			}
			n, err := cards.ResetAllWrongCounts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d cards\n", n)
			return nil
		},
	}
}

func newGenresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genre labels with their card counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.openStore()
			if err != nil {
				return err
			}
			counts, err := cards.GenreCounts(cmd.Context())
			if err != nil {
				return err
			}
			favorites, err := cards.CountFavorites(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if favorites > 0 {
				fmt.Fprintf(tw, "%s\t%d\n", quiz.FavoritesGenre, favorites)
			}
			for _, gc := range counts {
				fmt.Fprintf(tw, "%s\t%d\n", gc.Label, gc.Count)
			}
			return tw.Flush()
		},
	}
}
