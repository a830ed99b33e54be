// Package regioncache implements a backend-agnostic cache layer with safe
// get-or-add semantics over stores that only guarantee atomic single-key
// insert. Many callers (threads or processes) may race to create the same
// key; exactly one factory's item wins and every caller observes it.
//
// Components:
//   - Store[V]: the backing store (point lookup + atomic insert-if-absent).
//     In-process (store/memory, store/bigcache) or remote (store/redis).
//   - Item[V]: the cache entry; value plus expiration intent and timestamps.
//   - transfer: converts items to wire-safe transfer records and back without
//     losing type identity or metadata, via a pluggable codec.Codec.
//
// Get-or-add pattern:
//
//	cache, _ := regioncache.New[User](regioncache.Options[User]{Store: st})
//	u, err := cache.GetOrAdd(ctx, "user:42", "", func(ctx context.Context, key, region string) (User, error) {
//	    return loadUser(ctx, key)
//	})
//
// The engine holds no lock across the lookup/insert window. A losing caller's
// factory work is discarded and the winner's item is re-fetched; retries are
// bounded by Options.MaxRetries.
package regioncache
