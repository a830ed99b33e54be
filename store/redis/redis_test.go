package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	rc "github.com/unkn0wn-root/regioncache"
	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/keys"
	redisstore "github.com/unkn0wn-root/regioncache/store/redis"
	"github.com/unkn0wn-root/regioncache/transfer"
)

type user struct {
	ID   string `json:"id" cbor:"id" msgpack:"id"`
	Name string `json:"name" cbor:"name" msgpack:"name"`
}

func newStore(t *testing.T) (*redisstore.Store[user], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	st, err := redisstore.New[user](redisstore.Config{
		Client:      client,
		Codec:       codec.JSON{},
		CloseClient: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st, mr
}

// TestRoundTripThroughRedis: the full byte boundary — value, region, and all
// metadata survive, and the sliding timeout becomes a real TTL.
func TestRoundTripThroughRedis(t *testing.T) {
	ctx := context.Background()
	st, mr := newStore(t)

	it := rc.NewItemIn("u:1", "users", user{ID: "1", Name: "Ada"}).
		WithExpiration(rc.ExpireSliding, 5*time.Minute)

	if ok, err := st.Add(ctx, it); err != nil || !ok {
		t.Fatalf("Add: ok=%v err=%v", ok, err)
	}

	got, ok, err := st.Get(ctx, "u:1", "users")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Value != it.Value || got.Region != "users" {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if got.Mode != rc.ExpireSliding || got.Timeout != 5*time.Minute || got.UsesDefaultExpiration {
		t.Fatalf("expiration metadata lost: %+v", got)
	}
	if got.CreatedUTC.UnixNano() != it.CreatedUTC.UnixNano() {
		t.Fatalf("entry age reset: got %v want %v", got.CreatedUTC, it.CreatedUTC)
	}

	k := keys.Storage("rc", "users", "u:1")
	if ttl := mr.TTL(k); ttl <= 4*time.Minute || ttl > 5*time.Minute {
		t.Fatalf("TTL %v, want ~5m", ttl)
	}
}

func TestAddIsSetNX(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)

	if ok, err := st.Add(ctx, rc.NewItem("k", user{ID: "1"})); err != nil || !ok {
		t.Fatalf("first Add: ok=%v err=%v", ok, err)
	}
	if ok, err := st.Add(ctx, rc.NewItem("k", user{ID: "2"})); err != nil || ok {
		t.Fatalf("second Add must lose: ok=%v err=%v", ok, err)
	}
	got, ok, _ := st.Get(ctx, "k", "")
	if !ok || got.Value.ID != "1" {
		t.Fatalf("loser overwrote winner: %+v", got)
	}
}

// TestAbsoluteTTLMeasuredFromCreation: an item created 9 minutes ago with a
// 10 minute absolute timeout gets roughly one minute of TTL, not ten.
func TestAbsoluteTTLMeasuredFromCreation(t *testing.T) {
	ctx := context.Background()
	st, mr := newStore(t)

	it := rc.NewItem("k", user{ID: "1"}).WithExpiration(rc.ExpireAbsolute, 10*time.Minute)
	it.CreatedUTC = time.Now().UTC().Add(-9 * time.Minute)

	if ok, err := st.Add(ctx, it); err != nil || !ok {
		t.Fatalf("Add: ok=%v err=%v", ok, err)
	}
	ttl := mr.TTL(keys.Storage("rc", "", "k"))
	if ttl <= 0 || ttl > time.Minute+5*time.Second {
		t.Fatalf("TTL %v, want ~1m remaining of the absolute deadline", ttl)
	}
}

func TestNeverExpireHasNoTTL(t *testing.T) {
	ctx := context.Background()
	st, mr := newStore(t)

	if ok, err := st.Add(ctx, rc.NewItem("k", user{}).WithExpiration(rc.ExpireNone, 0)); err != nil || !ok {
		t.Fatalf("Add: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL(keys.Storage("rc", "", "k")); ttl != 0 {
		t.Fatalf("never-expire item got TTL %v", ttl)
	}
}

// TestSlidingWindowRefreshOnGet: each read restarts the sliding TTL; an idle
// key expires.
func TestSlidingWindowRefreshOnGet(t *testing.T) {
	ctx := context.Background()
	st, mr := newStore(t)

	it := rc.NewItem("k", user{ID: "1"}).WithExpiration(rc.ExpireSliding, 100*time.Millisecond)
	if ok, err := st.Add(ctx, it); err != nil || !ok {
		t.Fatalf("Add: ok=%v err=%v", ok, err)
	}

	mr.FastForward(60 * time.Millisecond)
	if _, ok, err := st.Get(ctx, "k", ""); err != nil || !ok {
		t.Fatalf("Get inside window: ok=%v err=%v", ok, err)
	}
	// the refresh must keep millisecond precision, not round up to 1s
	if ttl := mr.TTL(keys.Storage("rc", "", "k")); ttl != 100*time.Millisecond {
		t.Fatalf("refreshed TTL %v, want exactly 100ms", ttl)
	}

	// the read above refreshed the TTL; another 60ms of age is survivable
	mr.FastForward(60 * time.Millisecond)
	if _, ok, err := st.Get(ctx, "k", ""); err != nil || !ok {
		t.Fatalf("sliding window did not restart on read: ok=%v err=%v", ok, err)
	}

	mr.FastForward(200 * time.Millisecond)
	if _, ok, _ := st.Get(ctx, "k", ""); ok {
		t.Fatalf("idle key survived past sliding timeout")
	}
}

// TestCorruptSelfHeal: foreign bytes under our key are deleted and reported
// as a miss, never as an error.
func TestCorruptSelfHeal(t *testing.T) {
	ctx := context.Background()
	st, mr := newStore(t)

	k := keys.Storage("rc", "", "bad")
	if err := mr.Set(k, "garbage"); err != nil {
		t.Fatalf("seed garbage: %v", err)
	}

	if _, ok, err := st.Get(ctx, "bad", ""); err != nil || ok {
		t.Fatalf("corrupt Get: ok=%v err=%v, want clean miss", ok, err)
	}
	if mr.Exists(k) {
		t.Fatalf("corrupt value not self-healed")
	}
}

// TestAnyStorePreservesConcreteType: a user stored through Store[any] comes
// back from Redis as a user.
func TestAnyStorePreservesConcreteType(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	st, err := redisstore.New[any](redisstore.Config{
		Client:      client,
		Codec:       codec.JSON{},
		CloseClient: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer st.Close(ctx)

	transfer.Register[user]()
	if ok, err := st.Add(ctx, rc.NewItem[any]("k", user{ID: "1", Name: "Ada"})); err != nil || !ok {
		t.Fatalf("Add: ok=%v err=%v", ok, err)
	}

	got, ok, err := st.Get(ctx, "k", "")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	u, isUser := got.Value.(user)
	if !isUser || u.Name != "Ada" {
		t.Fatalf("decoded value is %T %+v, want user", got.Value, got.Value)
	}
}
