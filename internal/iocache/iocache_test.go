package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/fwchore/schema"
)

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"fwchore_build_runs"`},
		{schema.PostgreSQLBackend, `"fwchore_build_runs"`},
		{schema.MySQLBackend, "`fwchore_build_runs`"},
	}
	for _, tt := range tests {
		if got := quoteTableName(buildRunsTable, tt.backend); got != tt.want {
			t.Errorf("quoteTableName(%s) = %s, want %s", tt.backend, got, tt.want)
		}
	}
}

func TestHistoryStoreSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	if err != nil {
		t.Fatalf("Failed to create history store: %v", err)
	}
	defer func() { _ = store.Close() }()

	start := time.Now().UTC().Truncate(time.Millisecond)
	runID, err := store.BeginRun(schema.BuildRunRecord{
		Target:     "9117-a0",
		Options:    "chip=9117 rev=a0",
		Name:       "nightly",
		CommitHash: "commit111",
		TreeHash:   "tree111",
		Status:     string(schema.StatusPending),
		StartTime:  start,
	})
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if runID == 0 {
		t.Fatal("BeginRun returned zero ID")
	}

	size := int64(1537024)
	artifact := "/tmp/out/9117-a0_abc1234.rps"
	end := start.Add(3 * time.Minute)
	if err := store.EndRun(runID, end, string(schema.StatusSuccess), &size, &artifact); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}

	t.Run("last success for tree", func(t *testing.T) {
		rec, err := store.LastSuccessForTree("tree111", "9117-a0")
		if err != nil {
			t.Fatalf("LastSuccessForTree failed: %v", err)
		}
		if rec == nil {
			t.Fatal("Expected a record, got nil")
		}
		if rec.RunID != runID {
			t.Errorf("RunID = %d, want %d", rec.RunID, runID)
		}
		if rec.ImageSize == nil || *rec.ImageSize != size {
			t.Errorf("ImageSize = %v, want %d", rec.ImageSize, size)
		}
		if !rec.StartTime.Equal(start) {
			t.Errorf("StartTime = %v, want %v", rec.StartTime, start)
		}
		if rec.EndTime == nil || !rec.EndTime.Equal(end) {
			t.Errorf("EndTime = %v, want %v", rec.EndTime, end)
		}
	})

	t.Run("no match for other tree", func(t *testing.T) {
		rec, err := store.LastSuccessForTree("tree999", "9117-a0")
		if err != nil {
			t.Fatalf("LastSuccessForTree failed: %v", err)
		}
		if rec != nil {
			t.Fatalf("Expected nil record, got %+v", rec)
		}
	})

	t.Run("list runs newest first", func(t *testing.T) {
		second, err := store.BeginRun(schema.BuildRunRecord{
			Target:     "9117-b0",
			Options:    "chip=9117 rev=b0",
			CommitHash: "commit222",
			TreeHash:   "tree222",
			Status:     string(schema.StatusPending),
			StartTime:  start.Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}

		runs, err := store.ListRuns(10)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("Expected 2 runs, got %d", len(runs))
		}
		if runs[0].RunID != second {
			t.Errorf("Newest run first: got %d, want %d", runs[0].RunID, second)
		}
		if runs[1].EndTime == nil {
			t.Error("Completed run lost its end time")
		}
	})

	t.Run("status", func(t *testing.T) {
		status, err := store.GetStatus()
		if err != nil {
			t.Fatalf("GetStatus failed: %v", err)
		}
		if !status.Connected {
			t.Error("Expected connected status")
		}
		if status.TotalRuns != 2 {
			t.Errorf("TotalRuns = %d, want 2", status.TotalRuns)
		}
		if status.LastRunTime.Before(status.OldestRunTime) {
			t.Error("LastRunTime is before OldestRunTime")
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		runs, err := store.ListRuns(10)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("Expected no runs after clear, got %d", len(runs))
		}
	})
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	if err != nil {
		t.Fatalf("Failed to create none-backend store: %v", err)
	}

	runID, err := store.BeginRun(schema.BuildRunRecord{Target: "9117-a0", StartTime: time.Now()})
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if runID != 0 {
		t.Errorf("Expected zero run ID, got %d", runID)
	}

	if err := store.EndRun(0, time.Now(), string(schema.StatusSuccess), nil, nil); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}

	rec, err := store.LastSuccessForTree("tree111", "9117-a0")
	if err != nil {
		t.Fatalf("LastSuccessForTree failed: %v", err)
	}
	if rec != nil {
		t.Fatalf("Expected nil record, got %+v", rec)
	}

	status, err := store.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.Connected {
		t.Error("None backend should not report connected")
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestHistoryGlobal(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "history.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		if err := InitHistory(schema.SQLiteBackend, dbPath); err != nil {
			t.Fatalf("Failed to initialize history: %v", err)
		}
		if Manager.GetHistoryStore() == nil {
			t.Fatal("History store is nil")
		}

		CloseHistory()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Fatal("Database file was not created")
		}
	})

	t.Run("idempotent setup", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "history.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Multiple initializations should be safe (sync.Once)
		if err := InitHistory(schema.SQLiteBackend, dbPath); err != nil {
			t.Fatalf("First init failed: %v", err)
		}
		if err := InitHistory(schema.SQLiteBackend, dbPath); err != nil {
			t.Fatalf("Second init failed: %v", err)
		}

		// Multiple closes should be safe (sync.Once)
		CloseHistory()
		CloseHistory()
	})
}

func TestClearHistorySQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	if err != nil {
		t.Fatalf("Failed to create history store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := ClearHistory(schema.SQLiteBackend, dbPath, ""); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("Database file still exists after clear")
	}

	// Clearing a missing file is not an error.
	if err := ClearHistory(schema.SQLiteBackend, dbPath, ""); err != nil {
		t.Fatalf("ClearHistory on missing file failed: %v", err)
	}
}
