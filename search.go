package khabar

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSearchDebounce coalesces rapid keystrokes into a single query.
const DefaultSearchDebounce = 500 * time.Millisecond

// Search resolves a filter request: the store applies status, category, date
// range, and ordering; free-text and tag refinement run in memory over the
// fetched set. Empty filters perform no query at all and return nil, which
// callers must keep distinct from "searched, found nothing". Post-filtering
// never re-sorts: result order is whatever the store query produced.
func (f *Feed) Search(ctx context.Context, filters SearchFilters) ([]NewsItem, error) {
	if filters.IsEmpty() {
		return nil, nil
	}
	items, err := f.fetchNews(ctx, searchQuery(filters))
	if err != nil {
		return nil, err
	}
	if filters.Query != "" {
		term := strings.ToLower(filters.Query)
		items = filterItems(items, func(n NewsItem) bool { return matchesText(n, term) })
	}
	if len(filters.Tags) > 0 {
		items = filterItems(items, func(n NewsItem) bool { return matchesTags(n, filters.Tags) })
	}
	return items, nil
}

// matchesText reports whether any of title, content, excerpt, or author
// contains term. term must already be lowercased.
func matchesText(n NewsItem, term string) bool {
	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Content), term) ||
		strings.Contains(strings.ToLower(n.Excerpt), term) ||
		strings.Contains(strings.ToLower(n.Author), term)
}

// matchesTags reports whether any selected tag is a case-insensitive
// substring of any article tag.
func matchesTags(n NewsItem, selected []string) bool {
	for _, want := range selected {
		want = strings.ToLower(want)
		for _, have := range n.Tags {
			if strings.Contains(strings.ToLower(have), want) {
				return true
			}
		}
	}
	return false
}

func filterItems(items []NewsItem, keep func(NewsItem) bool) []NewsItem {
	var out []NewsItem
	for _, n := range items {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// SearchResult is one delivery from a SearchSession. Searched distinguishes
// "not searched yet" (empty filters) from "searched, found nothing".
type SearchResult struct {
	Filters  SearchFilters
	Items    []NewsItem
	Searched bool
	Err      error
}

// SearchSession runs searches for a stream of changing filters, debouncing
// rapid updates so one query fires after a pause instead of one per
// keystroke. Results carry a generation internally: a slow, superseded query
// can never overwrite the result of a newer one, whatever order the store
// answers in. Close is mandatory and idempotent.
type SearchSession struct {
	feed  *Feed
	delay time.Duration

	in      chan SearchFilters
	results chan SearchResult
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	gen     atomic.Int64
}

// NewSearchSession starts a search session. A non-positive delay uses
// DefaultSearchDebounce.
func (f *Feed) NewSearchSession(delay time.Duration) *SearchSession {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	s := &SearchSession{
		feed:    f,
		delay:   delay,
		in:      make(chan SearchFilters, 1),
		results: make(chan SearchResult, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Update submits the latest filters. Pending unexecuted filters are
// replaced, never queued.
func (s *SearchSession) Update(filters SearchFilters) {
	for {
		select {
		case s.in <- filters:
			return
		default:
			select {
			case <-s.in:
			default:
			}
		}
	}
}

// Results delivers search outcomes, latest-wins: an unread result is
// replaced by a newer one rather than queued.
func (s *SearchSession) Results() <-chan SearchResult {
	return s.results
}

// Close stops the session. No result is delivered after Close returns.
func (s *SearchSession) Close() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *SearchSession) run() {
	defer close(s.done)

	var (
		pending  SearchFilters
		armed    bool
		timer    = time.NewTimer(s.delay)
		executed = make(chan searchCompletion, 1)
	)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case filters := <-s.in:
			pending = filters
			armed = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.delay)
		case <-timer.C:
			if !armed {
				continue
			}
			armed = false
			gen := s.gen.Add(1)
			go s.execute(gen, pending, executed)
		case c := <-executed:
			// Drop completions of superseded queries: a slow, stale search
			// must never overwrite a newer result.
			if c.gen == s.gen.Load() {
				s.deliver(c.result)
			}
		}
	}
}

type searchCompletion struct {
	gen    int64
	result SearchResult
}

// execute runs one search on its own goroutine so a slow store never blocks
// newer filter updates.
func (s *SearchSession) execute(gen int64, filters SearchFilters, out chan<- searchCompletion) {
	res := SearchResult{Filters: filters, Searched: !filters.IsEmpty()}
	if res.Searched {
		res.Items, res.Err = s.feed.Search(context.Background(), filters)
	}
	select {
	case out <- searchCompletion{gen: gen, result: res}:
	case <-s.stop:
	}
}

func (s *SearchSession) deliver(res SearchResult) {
	for {
		select {
		case s.results <- res:
			return
		default:
			select {
			case <-s.results:
			default:
			}
		}
	}
}
