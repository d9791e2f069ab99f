package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	monthLayout   = "2006-01"
	flushInterval = 5 * time.Minute
)

// MonthlyStats holds the audit counters of one calendar month.
type MonthlyStats struct {
	Audits          int            `json:"audits"`
	Failures        int            `json:"failures"`
	FailuresByKind  map[string]int `json:"failures_by_kind"`
	TotalLoadTimeMs int64          `json:"total_load_time_ms"`
	LastUpdated     time.Time      `json:"last_updated"`
}

// AverageLoadTimeMs is the mean page load time of successful audits.
func (m MonthlyStats) AverageLoadTimeMs() float64 {
	if m.Audits == 0 {
		return 0
	}
	return float64(m.TotalLoadTimeMs) / float64(m.Audits)
}

func (m *MonthlyStats) clone() MonthlyStats {
	c := *m
	c.FailuresByKind = make(map[string]int, len(m.FailuresByKind))
	for k, v := range m.FailuresByKind {
		c.FailuresByKind[k] = v
	}
	return c
}

// Storage persists monthly audit counters as JSON in the data directory.
// Writes happen on a background goroutine until Shutdown is called.
type Storage struct {
	mutex       sync.RWMutex
	saveMutex   sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	stopOnce    sync.Once
	logger      *slog.Logger
}

// NewStorage loads dataDir/stats.json if present and starts the background writer.
func NewStorage(dataDir string, logger *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		logger:      logger,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes the counters through a temporary file so readers never see a
// partial document.
func (s *Storage) save() error {
	s.saveMutex.Lock()
	defer s.saveMutex.Unlock()

	s.mutex.RLock()
	data, err := json.MarshalIndent(s.stats, "", "  ")
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (s *Storage) backgroundWriter() {
	defer close(s.stopped)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
		case <-ticker.C:
		case <-s.done:
			return
		}
		if err := s.save(); err != nil {
			s.logger.Error("failed to persist statistics", "path", s.filePath, "error", err)
		}
	}
}

// CurrentMonth returns the YYYY-MM key statistics are recorded under.
func CurrentMonth() string {
	return time.Now().Format(monthLayout)
}

func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// month returns the counters for key, creating them. Callers hold the write lock.
func (s *Storage) month(key string) *MonthlyStats {
	m, ok := s.stats[key]
	if !ok {
		m = &MonthlyStats{}
		s.stats[key] = m
	}
	if m.FailuresByKind == nil {
		m.FailuresByKind = make(map[string]int)
	}
	return m
}

// touch marks the month updated and schedules a write at most once a minute.
func (s *Storage) touch(m *MonthlyStats) {
	m.LastUpdated = time.Now()
	if time.Since(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = time.Now()
	}
}

// RecordAudit counts a completed audit and its page load time.
func (s *Storage) RecordAudit(loadTimeMs int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m := s.month(CurrentMonth())
	m.Audits++
	m.TotalLoadTimeMs += loadTimeMs
	s.touch(m)
}

// RecordFailure counts a failed audit under its error kind.
func (s *Storage) RecordFailure(kind string) {
	if kind == "" {
		kind = "Unknown"
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	m := s.month(CurrentMonth())
	m.Failures++
	m.FailuresByKind[kind]++
	s.touch(m)
}

// GetCurrentStats returns a copy of this month's counters.
func (s *Storage) GetCurrentStats() MonthlyStats {
	stats, _ := s.GetMonthlyStats(CurrentMonth())
	return stats
}

// GetMonthlyStats returns a copy of the counters for a "YYYY-MM" key.
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return stats.clone(), true
	}
	return MonthlyStats{FailuresByKind: map[string]int{}}, false
}

// GetAllMonths lists the months with statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}

// Cleanup drops every month older than the last retainMonths months,
// the current month included. Values below 1 keep only the current month.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	oldest := firstOfMonth.AddDate(0, -(retainMonths - 1), 0).Format(monthLayout)

	s.mutex.Lock()
	removed := 0
	for key := range s.stats {
		if key < oldest {
			delete(s.stats, key)
			removed++
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
	s.logger.Debug("pruned statistics", "oldestRetained", oldest, "removed", removed)
}

// Flush writes the counters to disk immediately.
func (s *Storage) Flush() error {
	return s.save()
}

// Shutdown stops the background writer and flushes once more. It is safe to
// call more than once.
func (s *Storage) Shutdown() error {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.stopped

	if err := s.save(); err != nil {
		return fmt.Errorf("failed to flush stats: %w", err)
	}
	return nil
}
