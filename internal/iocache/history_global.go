package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/fwchore/internal/contract"
	"github.com/huangsam/fwchore/schema"
)

// HistoryStoreManager manages the build history store instance.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the history store.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Global Manager instance for main logic.
var (
	Manager   = &HistoryStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetHistoryDBFilePath returns the path to the SQLite DB file for build history.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// InitHistory initializes the global history manager.
// backend can be NoneBackend to disable history tracking.
func InitHistory(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		store, err := NewHistoryStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize build history: %w", err)
			return
		}

		Manager.Lock()
		Manager.history = store
		Manager.Unlock()
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseHistory should be called on application shutdown.
func CloseHistory() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearHistory clears the build history for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, buildRunsTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, buildRunsTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
