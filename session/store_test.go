package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/cassandrastore/cassandra"
	castest "github.com/kbukum/cassandrastore/cassandra/testutil"
	"github.com/kbukum/cassandrastore/codec"
	apperrors "github.com/kbukum/cassandrastore/errors"
	"github.com/kbukum/cassandrastore/logger"
)

var epoch = time.Unix(1_700_000_000, 0)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, opts ...Option) (*Store, *castest.Cluster, *testClock) {
	t.Helper()
	clk := &testClock{now: epoch}
	cluster := castest.NewCluster(castest.WithNow(clk.Now))
	opts = append([]Option{WithLogger(logger.Nop()), WithClock(clk.Now)}, opts...)
	return New(cluster, opts...), cluster, clk
}

func TestSetGetNoExpiry(t *testing.T) {
	store, _, clk := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "saml2", "abc", "hello", time.Time{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	clk.Advance(365 * 24 * time.Hour)

	v, found, err := store.Get(ctx, "saml2", "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || v != "hello" {
		t.Errorf("Get = (%v, %v), want (hello, true)", v, found)
	}
}

func TestSetWithExpiry(t *testing.T) {
	store, cluster, clk := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "t", "k", map[string]any{"n": 1}, epoch.Add(10*time.Second)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got := cluster.Statements()
	if len(got) != 1 {
		t.Fatalf("executed %d statements, want 1", len(got))
	}
	if got[0].Statement.CQL() != "INSERT INTO session (type, key, value) VALUES (?, ?, ?) USING TTL ?" {
		t.Errorf("statement = %q", got[0].Statement.CQL())
	}
	if got[0].Args[3] != int64(10) {
		t.Errorf("ttl = %v, want 10", got[0].Args[3])
	}

	clk.Advance(9 * time.Second)
	if _, found, _ := store.Get(ctx, "t", "k"); !found {
		t.Fatal("value should still be present before expiry")
	}
	clk.Advance(time.Second)
	if v, found, _ := store.Get(ctx, "t", "k"); found {
		t.Errorf("value should be gone after expiry, got %v", v)
	}
}

func TestSetRoundsTTLUp(t *testing.T) {
	store, cluster, _ := newTestStore(t)

	if err := store.Set(context.Background(), "t", "k", 1, epoch.Add(1500*time.Millisecond)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := cluster.Statements()[0].Args[3]; ttl != int64(2) {
		t.Errorf("ttl = %v, want 2", ttl)
	}
}

func TestSetPastExpirySkipsWrite(t *testing.T) {
	store, cluster, _ := newTestStore(t)

	for _, exp := range []time.Time{epoch.Add(-time.Second), epoch} {
		if err := store.Set(context.Background(), "t", "k", "v", exp); err != nil {
			t.Fatalf("Set(%v): %v", exp, err)
		}
	}
	if n := len(cluster.Statements()); n != 0 {
		t.Errorf("executed %d statements, want none", n)
	}
}

func TestSetRejectsRelativeExpiry(t *testing.T) {
	store, cluster, _ := newTestStore(t)

	for _, secs := range []int64{1, 3600, MinExpiry} {
		err := store.Set(context.Background(), "t", "k", "v", time.Unix(secs, 0))
		if !apperrors.IsPrecondition(err) {
			t.Errorf("Set(expiry=%d) = %v, want precondition error", secs, err)
		}
	}
	if n := len(cluster.Statements()); n != 0 {
		t.Errorf("executed %d statements, want none", n)
	}
}

func TestEmptyTypeRejected(t *testing.T) {
	store, cluster, _ := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Get(ctx, "", "k"); !apperrors.IsPrecondition(err) {
		t.Errorf("Get: %v", err)
	}
	if err := store.Set(ctx, "", "k", "v", time.Time{}); !apperrors.IsPrecondition(err) {
		t.Errorf("Set: %v", err)
	}
	if err := store.Delete(ctx, "", "k"); !apperrors.IsPrecondition(err) {
		t.Errorf("Delete: %v", err)
	}
	if n := len(cluster.Statements()); n != 0 {
		t.Errorf("executed %d statements, want none", n)
	}
}

func TestUnencodableValue(t *testing.T) {
	store, cluster, _ := newTestStore(t)

	for _, v := range []any{func() {}, map[string]any{"attrs": map[string]any{"ch": make(chan int)}}} {
		err := store.Set(context.Background(), "t", "k", v, time.Time{})
		if !apperrors.IsPrecondition(err) {
			t.Errorf("Set(%T) = %v, want precondition error", v, err)
		}
	}
	if n := len(cluster.Statements()); n != 0 {
		t.Errorf("executed %d statements, want none", n)
	}
}

func TestDelete(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "t", "k", "v", time.Time{})
	if err := store.Delete(ctx, "t", "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, "t", "k"); found {
		t.Error("value should be gone after Delete")
	}
	if err := store.Delete(ctx, "t", "never-existed"); err != nil {
		t.Errorf("Delete of missing row: %v", err)
	}
}

func TestLongKeysAreNormalized(t *testing.T) {
	store, cluster, _ := newTestStore(t)
	ctx := context.Background()
	long := strings.Repeat("k", 80)

	store.Set(ctx, "t", long, "v", time.Time{})
	if key := cluster.Statements()[0].Args[1]; key != codec.NormalizeKey(long) {
		t.Errorf("stored key = %v, want digest", key)
	}
	if v, found, _ := store.Get(ctx, "t", long); !found || v != "v" {
		t.Errorf("Get(long key) = (%v, %v)", v, found)
	}
}

func TestUndecodableValueIsNotFound(t *testing.T) {
	store, cluster, _ := newTestStore(t)
	ctx := context.Background()

	insert := cassandra.NewUpsert("session", []string{"type", "key", "value"})
	cluster.Execute(ctx, insert, "t", "k", "%ZZnot-msgpack")

	v, found, err := store.Get(ctx, "t", "k")
	if err != nil || found || v != nil {
		t.Errorf("Get = (%v, %v, %v), want (nil, false, nil)", v, found, err)
	}
}

func TestFalseRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, _, _ := newTestStore(t)
	store.Set(ctx, "t", "k", false, time.Time{})
	if v, found, _ := store.Get(ctx, "t", "k"); !found || v != false {
		t.Errorf("Get(false) = (%v, %v), want (false, true)", v, found)
	}

	legacy, _, _ := newTestStore(t, WithCodec(codec.New(codec.WithLegacyFalseAsAbsent())))
	legacy.Set(ctx, "t", "k", false, time.Time{})
	if _, found, _ := legacy.Get(ctx, "t", "k"); found {
		t.Error("legacy codec should report stored false as absent")
	}
}

func TestQuorumConsistency(t *testing.T) {
	store, cluster, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "t", "k", "v", time.Time{})
	store.Get(ctx, "t", "k")
	store.Delete(ctx, "t", "k")

	for _, e := range cluster.Statements() {
		if e.Statement.Consistency != cassandra.Quorum {
			t.Errorf("%s ran at %q, want QUORUM", e.Statement.CQL(), e.Statement.Consistency)
		}
	}

	other, cluster2, _ := newTestStore(t, WithConsistency(cassandra.LocalQuorum))
	other.Delete(ctx, "t", "k")
	if c := cluster2.Statements()[0].Statement.Consistency; c != cassandra.LocalQuorum {
		t.Errorf("consistency = %q, want LOCAL_QUORUM", c)
	}
}

func TestClusterFailureIsTransient(t *testing.T) {
	store, cluster, _ := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("unavailable")

	cluster.FailNext(boom)
	_, _, err := store.Get(ctx, "t", "k")
	if !errors.Is(err, apperrors.ErrTransient) {
		t.Fatalf("Get error = %v, want transient storage error", err)
	}
	if !errors.Is(err, boom) {
		t.Error("driver error should be wrapped")
	}

	cluster.FailNext(boom)
	if err := store.Set(ctx, "t", "k", "v", time.Time{}); !errors.Is(err, apperrors.ErrTransient) {
		t.Errorf("Set error = %v", err)
	}
	cluster.FailNext(boom)
	if err := store.Delete(ctx, "t", "k"); !errors.Is(err, apperrors.ErrTransient) {
		t.Errorf("Delete error = %v", err)
	}

	// no internal retry: one attempt per call
	if n := len(cluster.Statements()); n != 3 {
		t.Errorf("executed %d statements, want 3", n)
	}
}
