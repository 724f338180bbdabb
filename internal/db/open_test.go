package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/db/models"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	db, err := Open(config.EngineSQLite, config.DB{Path: ":memory:"}, false)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.Entry{}))
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open(config.EngineRedis, config.DB{}, false)
	assert.ErrorIs(t, err, ErrUnsupportedEngine)
}
