package stats

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	visitorWindow = 24 * time.Hour
	// maxTrackedURLs bounds the popular URL table. When it is full the
	// least requested half is dropped.
	maxTrackedURLs = 5000
)

// URLCount is an audited URL and how often it was requested.
type URLCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// Snapshot is the public view of the traffic counters.
type Snapshot struct {
	UniqueVisitors24h int        `json:"uniqueVisitors24h"`
	TotalRequests     int        `json:"totalRequests"`
	ErrorRate         float64    `json:"errorRate"`
	AverageLoadTime   float64    `json:"averageLoadTime"`
	PopularURLs       []URLCount `json:"popularUrls,omitempty"`
}

// Traffic keeps in-memory request statistics for the running process.
type Traffic struct {
	mutex          sync.RWMutex
	visitors       map[string]time.Time // IP -> last visit
	auditRequests  int
	errorCount     int
	popularURLs    map[string]int
	totalLatencyMs float64
	maxURLs        int
	now            func() time.Time
}

func NewTraffic() *Traffic {
	return &Traffic{
		visitors:    make(map[string]time.Time),
		popularURLs: make(map[string]int),
		maxURLs:     maxTrackedURLs,
		now:         time.Now,
	}
}

// TrackVisitor records a visit from ip.
func (t *Traffic) TrackVisitor(ip string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.now()
	t.visitors[ip] = now

	// Forget stale visitors once the map grows.
	if len(t.visitors) > 10000 {
		cutoff := now.Add(-visitorWindow)
		for k, last := range t.visitors {
			if last.Before(cutoff) {
				delete(t.visitors, k)
			}
		}
	}
}

// TrackAudit records an audit request for target that took latency.
func (t *Traffic) TrackAudit(target string, latency time.Duration, failed bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.auditRequests++
	if cleaned := normalizeURL(target); cleaned != "" {
		if _, seen := t.popularURLs[cleaned]; !seen && len(t.popularURLs) >= t.maxURLs {
			t.prunePopular()
		}
		t.popularURLs[cleaned]++
	}
	if failed {
		t.errorCount++
	}
	t.totalLatencyMs += float64(latency.Milliseconds())
}

// prunePopular keeps the most requested half of the popular URL table.
func (t *Traffic) prunePopular() {
	keep := t.popular(t.maxURLs / 2)
	t.popularURLs = make(map[string]int, t.maxURLs)
	for _, u := range keep {
		t.popularURLs[u.URL] = u.Count
	}
}

// normalizeURL reduces u to scheme, host and path. Local and API URLs are
// not tracked and yield "".
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Host)
	if strings.Contains(host, "localhost") ||
		strings.Contains(host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	cleaned := strings.ToLower(u.Scheme) + "://" + host
	if u.Path != "" && u.Path != "/" {
		cleaned += u.Path
	}
	return strings.TrimSuffix(cleaned, "/")
}

// UniqueVisitors24h counts visitors seen within the last day.
func (t *Traffic) UniqueVisitors24h() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.uniqueVisitors()
}

func (t *Traffic) uniqueVisitors() int {
	cutoff := t.now().Add(-visitorWindow)
	count := 0
	for _, lastVisit := range t.visitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// PopularURLs returns the n most audited URLs, most frequent first.
func (t *Traffic) PopularURLs(n int) []URLCount {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.popular(n)
}

func (t *Traffic) popular(n int) []URLCount {
	urls := make([]URLCount, 0, len(t.popularURLs))
	for u, count := range t.popularURLs {
		urls = append(urls, URLCount{URL: u, Count: count})
	}
	sort.Slice(urls, func(i, j int) bool {
		if urls[i].Count != urls[j].Count {
			return urls[i].Count > urls[j].Count
		}
		return urls[i].URL < urls[j].URL
	})
	if n >= 0 && len(urls) > n {
		urls = urls[:n]
	}
	return urls
}

// ErrorRate is the percentage of audit requests that failed.
func (t *Traffic) ErrorRate() float64 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.errorRate()
}

func (t *Traffic) errorRate() float64 {
	if t.auditRequests == 0 {
		return 0
	}
	return float64(t.errorCount) / float64(t.auditRequests) * 100
}

// Snapshot returns the current counters. Popular URLs are only included when
// withURLs is set since they reveal what other users audited.
func (t *Traffic) Snapshot(withURLs bool) Snapshot {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	snap := Snapshot{
		UniqueVisitors24h: t.uniqueVisitors(),
		TotalRequests:     t.auditRequests,
		ErrorRate:         t.errorRate(),
	}
	if t.auditRequests > 0 {
		snap.AverageLoadTime = t.totalLatencyMs / float64(t.auditRequests)
	}
	if withURLs {
		snap.PopularURLs = t.popular(5)
	}
	return snap
}
