// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/regioncache"
//	"github.com/unkn0wn-root/regioncache/hooks/async"
//	"github.com/unkn0wn-root/regioncache/loghooks"
//
// )
//
//	raw := loghooks.New(slog.Default(), loghooks.Options{
//	    RaceLostEvery: 10, // sample logs: ~every 10th lost race
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := regioncache.New[User](regioncache.Options[User]{
//	    Store: st,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	regioncache "github.com/unkn0wn-root/regioncache"
)

type Hooks struct {
	inner regioncache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ regioncache.Hooks = (*Hooks)(nil)

func New(inner regioncache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) AddRaceLost(key, region string, attempt int) {
	h.try(func() { h.inner.AddRaceLost(key, region, attempt) })
}

func (h *Hooks) RetryExhausted(key, region string, attempts int) {
	h.try(func() { h.inner.RetryExhausted(key, region, attempts) })
}

func (h *Hooks) FactoryDeclined(key, region string) {
	h.try(func() { h.inner.FactoryDeclined(key, region) })
}
