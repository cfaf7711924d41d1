package khabar

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/rsaxena/khabar/docstore"
)

// WatchSnapshot is one delivery from a live query: the full current result
// set, or the error that replaced it. Err non-nil means the query failed and
// Items is empty; the watch stays open and recovers on the next change.
type WatchSnapshot struct {
	Items []NewsItem
	Err   error
}

// Watch is a live query held open as an explicit resource. Every delivery on
// Updates replaces the previous state wholesale; snapshots are coalesced
// (latest wins), so a slow consumer only ever skips intermediate states.
// Close must run on every exit path, including when query parameters change
// and a new Watch replaces this one; it is idempotent, and Updates is closed
// once no further delivery can arrive.
type Watch struct {
	ch        chan WatchSnapshot
	cancel    func()
	closeOnce sync.Once
}

// Updates delivers result-set snapshots until Close.
func (w *Watch) Updates() <-chan WatchSnapshot { return w.ch }

// Close tears down the subscription. Safe to call more than once.
func (w *Watch) Close() {
	w.cancel()
}

func (f *Feed) watch(q docstore.Query) *Watch {
	w := &Watch{ch: make(chan WatchSnapshot, 1)}
	cancel, err := f.store.Subscribe(q,
		func(docs []docstore.Document) {
			resolve := f.nav.resolver(context.Background())
			w.push(WatchSnapshot{Items: lo.Map(docs, func(d docstore.Document, _ int) NewsItem {
				return newsFromDoc(d, resolve)
			})})
		},
		func(err error) {
			w.push(WatchSnapshot{Err: err})
		},
	)
	if err != nil {
		// No subscription was established; surface the failure as the one
		// delivery and leave only the channel to tear down.
		w.push(WatchSnapshot{Err: err})
		w.cancel = func() {
			w.closeOnce.Do(func() { close(w.ch) })
		}
		return w
	}
	w.cancel = func() {
		// cancel waits for the delivery goroutine, so closing the channel
		// afterwards cannot race a push.
		cancel()
		w.closeOnce.Do(func() { close(w.ch) })
	}
	return w
}

// push never blocks: it replaces an unread snapshot instead of queueing.
func (w *Watch) push(snap WatchSnapshot) {
	for {
		select {
		case w.ch <- snap:
			return
		default:
			select {
			case <-w.ch:
			default:
			}
		}
	}
}

// WatchLatest opens a live query over the newest published articles.
func (f *Feed) WatchLatest(limit int) *Watch {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	return f.watch(latestQuery(limit))
}

// WatchBreaking opens a live query over breaking articles for the ticker.
func (f *Feed) WatchBreaking(limit int) *Watch {
	if limit <= 0 {
		limit = DefaultBreakingLimit
	}
	return f.watch(breakingQuery(limit))
}

// WatchSlider opens a live query over the home-page slider articles.
func (f *Feed) WatchSlider() *Watch {
	return f.watch(sliderQuery())
}

// WatchCategory opens a live query over a category's published articles.
func (f *Feed) WatchCategory(name string) *Watch {
	return f.watch(categoryQuery(name))
}
