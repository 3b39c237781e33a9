package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"qawala/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type contentChange struct {
	kind, id, action string
}

type recordingContentNotifier struct {
	mu      sync.Mutex
	changes []contentChange
}

func (n *recordingContentNotifier) ContentChanged(_ context.Context, kind, id, action string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, contentChange{kind, id, action})
}

func longText(n int) string {
	return strings.Repeat("a", n)
}
