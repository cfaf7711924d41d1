package docstore

import (
	"context"
	"sync"
)

type fetchFunc func(ctx context.Context, q Query) ([]Document, error)

// hub tracks live-query subscriptions. Each subscription runs its own
// delivery goroutine: it fetches the full result set once on subscribe, then
// again after every write to the query's collection. Wakeups are coalesced
// through a buffered channel, so a burst of writes produces one re-delivery
// reflecting a self-consistent result set.
type hub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

type subscription struct {
	q          Query
	onSnapshot func([]Document)
	onError    func(error)

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func newHub() *hub {
	return &hub{subs: make(map[*subscription]struct{})}
}

func (h *hub) subscribe(q Query, fetch fetchFunc, onSnapshot func([]Document), onError func(error)) (func(), error) {
	sub := &subscription{
		q:          q,
		onSnapshot: onSnapshot,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go sub.run(fetch)

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.stop)
		})
		<-sub.done
	}
	return cancel, nil
}

// notify wakes every subscription watching the given collection.
func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.q.Collection != collection {
			continue
		}
		select {
		case sub.wake <- struct{}{}:
		default: // a re-delivery is already pending
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[*subscription]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.stop) })
		<-sub.done
	}
}

func (sub *subscription) run(fetch fetchFunc) {
	defer close(sub.done)
	sub.deliver(fetch)
	for {
		select {
		case <-sub.stop:
			return
		case <-sub.wake:
			// Re-check stop so cancellation wins over a pending wakeup.
			select {
			case <-sub.stop:
				return
			default:
			}
			sub.deliver(fetch)
		}
	}
}

func (sub *subscription) deliver(fetch fetchFunc) {
	docs, err := fetch(context.Background(), sub.q)
	if err != nil {
		if sub.onError != nil {
			sub.onError(err)
		}
		return
	}
	sub.onSnapshot(docs)
}
