// internal/service/monitor/monitor.go

package monitor

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"misintel/internal/domain/post"
)

// MonitorConfig contains configuration for the social monitor
type MonitorConfig struct {
	// MaxResults caps the merged post list returned per query
	MaxResults int
}

// Monitor aggregates posts about a query from registered platform
// collectors. Collector failures are logged and skipped; the monitor
// never fails a whole collection because one platform is down.
type Monitor struct {
	sources     map[string]post.Source
	sourcesLock sync.RWMutex
	config      MonitorConfig
	logger      zerolog.Logger
}

// NewMonitor creates a new social monitor
func NewMonitor(config MonitorConfig, logger zerolog.Logger) *Monitor {
	if config.MaxResults <= 0 {
		config.MaxResults = 100
	}
	return &Monitor{
		sources: make(map[string]post.Source),
		config:  config,
		logger:  logger.With().Str("component", "monitor").Logger(),
	}
}

// AddSource registers a platform collector
func (m *Monitor) AddSource(source post.Source) {
	m.sourcesLock.Lock()
	defer m.sourcesLock.Unlock()
	m.sources[source.Name()] = source
}

// RemoveSource unregisters a platform collector
func (m *Monitor) RemoveSource(name string) {
	m.sourcesLock.Lock()
	defer m.sourcesLock.Unlock()
	delete(m.sources, name)
}

// SourceNames returns the registered collector names
func (m *Monitor) SourceNames() []string {
	m.sourcesLock.RLock()
	defer m.sourcesLock.RUnlock()

	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CollectPosts fetches posts about the query from every registered
// collector concurrently, merges them and sorts by timestamp descending
func (m *Monitor) CollectPosts(ctx context.Context, query string, maxResults int) []post.Post {
	if maxResults <= 0 || maxResults > m.config.MaxResults {
		maxResults = m.config.MaxResults
	}

	m.sourcesLock.RLock()
	sources := make([]post.Source, 0, len(m.sources))
	for _, s := range m.sources {
		sources = append(sources, s)
	}
	m.sourcesLock.RUnlock()

	if len(sources) == 0 {
		return []post.Post{}
	}

	perSource := maxResults / len(sources)
	if perSource < 1 {
		perSource = 1
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		posts []post.Post
	)

	for _, source := range sources {
		wg.Add(1)
		go func(s post.Source) {
			defer wg.Done()

			fetched, err := s.FetchPosts(ctx, query, perSource)
			if err != nil {
				m.logger.Warn().Err(err).Str("source", s.Name()).Msg("collector failed, skipping")
				return
			}

			mu.Lock()
			posts = append(posts, fetched...)
			mu.Unlock()
		}(source)
	}
	wg.Wait()

	for i := range posts {
		posts[i] = posts[i].Normalized()
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})

	if len(posts) > maxResults {
		posts = posts[:maxResults]
	}

	if len(posts) == 0 {
		return []post.Post{}
	}
	return posts
}
