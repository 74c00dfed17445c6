// Package databasetest opens throwaway in-memory SQLite stores for tests.
package databasetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
)

var counter atomic.Int64

// NewGateway returns a migrated in-memory store closed at test cleanup
func NewGateway(t testing.TB) *database.Gateway {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:phmtest_%d?mode=memory&cache=shared", counter.Add(1)),
	}

	gw, err := database.ConnectWithTimeout(cfg, 5*time.Second)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = gw.Close() })

	if err := gw.CreateTables(context.Background()); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return gw
}
