package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

func TestNew_SQLiteMigratesModels(t *testing.T) {
	svc, err := New(config.Database{
		Driver:   "sqlite",
		Path:     "file:database_test?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	db := svc.GetDB()
	for _, m := range []any{&models.User{}, &models.Thread{}, &models.Reply{}, &models.Vote{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Vote{}, "idx_votes_thread_user"))

	health := svc.Health(context.Background())
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, "sqlite", health["driver"])
	assert.NotContains(t, health, "schema_version")
}

func TestHealth_DownAfterClose(t *testing.T) {
	svc, err := New(config.Database{
		Driver:   "sqlite",
		Path:     "file:health_closed?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	health := svc.Health(context.Background())
	assert.Equal(t, "down", health["status"])
	assert.NotEmpty(t, health["error"])
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(config.Database{Driver: "oracle"})
	require.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("silent"))
	assert.Equal(t, logger.Info, logLevel("INFO"))
	assert.Equal(t, logger.Error, logLevel("error"))
	assert.Equal(t, logger.Warn, logLevel(""))
}
