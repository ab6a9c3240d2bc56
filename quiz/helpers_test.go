package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/engcard-api/config"
	"github.com/andrewpaige1/engcard-api/store"
)

func newTestStore(t *testing.T) *store.CardStore {
	t.Helper()
	db, err := config.Connect(&config.Environment{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.NewCardStore(db)
}
