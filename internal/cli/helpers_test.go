package cli

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func bumpVersion(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, err = db.Exec("PRAGMA user_version = 2")
	require.NoError(t, err)
}
