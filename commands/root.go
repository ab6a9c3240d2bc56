package commands

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/andrewpaige1/engcard-api/config"
	"github.com/andrewpaige1/engcard-api/store"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	v   *viper.Viper
	env *config.Environment
	db  *gorm.DB
}

func (a *app) openStore() (*store.CardStore, error) {
	if a.db == nil {
		db, err := config.Connect(a.env)
		if err != nil {
			return nil, err
		}
		a.db = db
	}
	return store.NewCardStore(a.db), nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.db = nil
}

// NewRootCmd builds the engcard command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "engcard",
		Short:         "Japanese to English sentence flashcards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.env = config.Load(a.v)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("db-driver", "", "database driver: sqlite or postgres (env DB_DRIVER)")
	flags.String("db-path", "", "sqlite database file (env DB_PATH)")
	flags.String("db-url", "", "postgres DSN (env DB_URL)")
	for key, flag := range map[string]string{
		"DB_DRIVER": "db-driver",
		"DB_PATH":   "db-path",
		"DB_URL":    "db-url",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(errors.Wrapf(err, "bind flag %s", flag))
		}
	}

	root.AddCommand(
		newServeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newResetMissesCmd(a),
		newGenresCmd(a),
		newTokenCmd(a),
		newSyncCmd(a),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "engcard: %v\n", err)
		os.Exit(1)
	}
}
