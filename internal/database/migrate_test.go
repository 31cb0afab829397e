package database

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	v, err := src.First()
	require.NoError(t, err)
	for {
		up, _, err := src.ReadUp(v)
		require.NoErrorf(t, err, "missing up migration for version %d", v)
		body, err := io.ReadAll(up)
		require.NoError(t, err)
		_ = up.Close()
		assert.NotEmpty(t, strings.TrimSpace(string(body)))

		down, _, err := src.ReadDown(v)
		require.NoErrorf(t, err, "missing down migration for version %d", v)
		_ = down.Close()

		next, err := src.Next(v)
		if err != nil {
			assert.ErrorIs(t, err, os.ErrNotExist)
			break
		}
		v = next
	}
}

func TestInitialSchemaCreatesEveryTable(t *testing.T) {
	body, err := migrationsFS.ReadFile("migrations/000001_init_schema.up.sql")
	require.NoError(t, err)
	for _, table := range []string{
		"users", "refresh_tokens", "parking_lots", "parking_spots",
		"reservations", "payments", "transactions", "system_stats",
	} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, string(body), "uq_reservations_open_spot")
	assert.Contains(t, string(body), "uq_reservations_open_user")
}

func TestDSN(t *testing.T) {
	o := Options{User: "park", Pass: "secret", Host: "db", Port: "3306", Name: "parking"}
	assert.Equal(t, "park:secret@tcp(db:3306)/parking?charset=utf8mb4&parseTime=true&loc=UTC", o.DSN())

	o.Pass = ""
	o.MultiStatements = true
	assert.Equal(t, "park@tcp(db:3306)/parking?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=true", o.DSN())
}
