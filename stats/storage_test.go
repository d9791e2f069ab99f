package stats

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestStorage(t *testing.T, dir string) *Storage {
	t.Helper()
	storage, err := NewStorage(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return storage
}

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := newTestStorage(t, tempDir)
	defer storage.Shutdown()

	t.Run("RecordAudit", func(t *testing.T) {
		storage.RecordAudit(800)
		storage.RecordAudit(1200)

		stats := storage.GetCurrentStats()
		if stats.Audits != 2 {
			t.Errorf("Expected 2 audits, got %d", stats.Audits)
		}
		if stats.TotalLoadTimeMs != 2000 {
			t.Errorf("Expected 2000ms total load time, got %d", stats.TotalLoadTimeMs)
		}
		if avg := stats.AverageLoadTimeMs(); avg != 1000 {
			t.Errorf("Expected 1000ms average, got %v", avg)
		}
	})

	t.Run("RecordFailure", func(t *testing.T) {
		storage.RecordFailure("NotFound")
		storage.RecordFailure("NotFound")
		storage.RecordFailure("")

		stats := storage.GetCurrentStats()
		if stats.Failures != 3 {
			t.Errorf("Expected 3 failures, got %d", stats.Failures)
		}
		want := map[string]int{"NotFound": 2, "Unknown": 1}
		if !reflect.DeepEqual(stats.FailuresByKind, want) {
			t.Errorf("FailuresByKind = %v, want %v", stats.FailuresByKind, want)
		}
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		stats := storage.GetCurrentStats()
		stats.FailuresByKind["NotFound"] = 99

		if got := storage.GetCurrentStats().FailuresByKind["NotFound"]; got != 2 {
			t.Errorf("stored counters changed through a copy: %d", got)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}

		storage2 := newTestStorage(t, tempDir)
		defer storage2.Shutdown()

		stats := storage2.GetCurrentStats()
		if stats.Audits != 2 || stats.FailuresByKind["NotFound"] != 2 {
			t.Errorf("Expected counters after reload, got %+v", stats)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		now := time.Now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		previousMonth := first.AddDate(0, -1, 0).Format(monthLayout)
		oldMonth := first.AddDate(0, -2, 0).Format(monthLayout)

		storage.mutex.Lock()
		storage.stats[previousMonth] = &MonthlyStats{Audits: 5}
		storage.stats[oldMonth] = &MonthlyStats{Audits: 100}
		storage.mutex.Unlock()

		storage.Cleanup(2)

		if _, exists := storage.GetMonthlyStats(oldMonth); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if _, exists := storage.GetMonthlyStats(previousMonth); !exists {
			t.Error("Previous month should be retained with retainMonths=2")
		}

		storage.Cleanup(1)
		if _, exists := storage.GetMonthlyStats(previousMonth); exists {
			t.Error("Previous month should be dropped with retainMonths=1")
		}
		if _, exists := storage.GetMonthlyStats(CurrentMonth()); !exists {
			t.Error("Current month must always be retained")
		}
	})

	t.Run("GetAllMonths", func(t *testing.T) {
		storage.mutex.Lock()
		storage.stats["2001-01"] = &MonthlyStats{}
		storage.stats["2001-03"] = &MonthlyStats{}
		storage.mutex.Unlock()

		months := storage.GetAllMonths()
		if months[0] != CurrentMonth() {
			t.Errorf("Expected newest month first, got %v", months)
		}
		if n := len(months); months[n-2] != "2001-03" || months[n-1] != "2001-01" {
			t.Errorf("Expected descending order, got %v", months)
		}
	})
}

func TestStorageShutdownFlushes(t *testing.T) {
	dir := t.TempDir()
	storage := newTestStorage(t, dir)
	storage.RecordAudit(500)

	if err := storage.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := storage.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.json"))
	if err != nil {
		t.Fatalf("Failed to read stats file: %v", err)
	}
	var persisted map[string]MonthlyStats
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("stats file is not valid JSON: %v", err)
	}
	if persisted[CurrentMonth()].Audits != 1 {
		t.Errorf("Expected 1 persisted audit, got %+v", persisted)
	}
	if _, err := os.Stat(filepath.Join(dir, "stats.json.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after a write")
	}
}

func TestStorageCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stats.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStorage(dir, nil); err == nil {
		t.Fatal("expected error for corrupt stats file")
	}
}
