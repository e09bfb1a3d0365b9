// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"ChatEduca/internal/config"
	"ChatEduca/internal/initial"
	"ChatEduca/pkg/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory sqlite database private to the test,
// including the chat_memory table.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", util.GenerateShortUUID())
	db, err := initial.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, initial.AutoMigrate(db, true))
	t.Cleanup(func() { initial.CloseDatabase(db) })
	return db
}
