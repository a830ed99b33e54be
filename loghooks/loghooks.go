package loghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	regioncache "github.com/unkn0wn-root/regioncache"
)

type Options struct {
	// Sampling to avoid floods on hot keys; 0/1 = log all.
	RaceLostEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	raceLostCtr atomic.Uint64
}

var _ regioncache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) AddRaceLost(key, region string, attempt int) {
	if h.l == nil || !sample(h.opts.RaceLostEvery, &h.raceLostCtr) {
		return
	}
	h.l.Debug("regioncache.add_race_lost",
		"key", h.redact(key),
		"region", region,
		"attempt", attempt)
}

func (h *Hooks) RetryExhausted(key, region string, attempts int) {
	if h.l == nil {
		return
	}
	h.l.Warn("regioncache.retry_exhausted",
		"key", h.redact(key),
		"region", region,
		"attempts", attempts)
}

func (h *Hooks) FactoryDeclined(key, region string) {
	if h.l == nil {
		return
	}
	h.l.Debug("regioncache.factory_declined",
		"key", h.redact(key),
		"region", region)
}
