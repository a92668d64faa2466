package metadata

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCacheLoadOrFill(t *testing.T) {
	c := NewCache()
	calls := 0
	fill := func() (map[string]Metadata, error) {
		calls++
		return map[string]Metadata{"a": {"x": 1}}, nil
	}

	if _, ok := c.Load("s"); ok {
		t.Fatal("empty cache should miss")
	}
	for i := 0; i < 3; i++ {
		got, err := c.LoadOrFill("s", fill)
		if err != nil || len(got) != 1 {
			t.Fatalf("LoadOrFill = (%v, %v)", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("fill called %d times, want 1", calls)
	}
}

func TestCacheFailedFillNotStored(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")

	if _, err := c.LoadOrFill("s", func() (map[string]Metadata, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after failed fill, want 0", c.Len())
	}
}

func TestCacheNilFillStoredAsEmpty(t *testing.T) {
	c := NewCache()
	got, err := c.LoadOrFill("s", func() (map[string]Metadata, error) { return nil, nil })
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("LoadOrFill = (%v, %v), want empty non-nil map", got, err)
	}
}

func TestCacheSlowFillDoesNotBlockOtherSets(t *testing.T) {
	c := NewCache()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		c.LoadOrFill("slow", func() (map[string]Metadata, error) {
			close(started)
			<-release
			return map[string]Metadata{}, nil
		})
	}()
	<-started

	filled := make(chan error, 1)
	go func() {
		_, err := c.LoadOrFill("fast", func() (map[string]Metadata, error) {
			return map[string]Metadata{"b": {}}, nil
		})
		filled <- err
	}()

	select {
	case err := <-filled:
		if err != nil {
			t.Errorf("LoadOrFill(fast): %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fill of another set waited behind the slow fill")
	}
	if _, ok := c.Load("slow"); ok {
		t.Error("in-flight fill should be a miss")
	}
	close(release)
	<-done
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheWaitersShareFill(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.LoadOrFill("s", func() (map[string]Metadata, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				<-release
				return nil, boom
			})
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("fill called %d times, want 1", calls)
	}
	for i, err := range errs {
		if !errors.Is(err, boom) {
			t.Errorf("caller %d err = %v, want %v", i, err, boom)
		}
	}
	if _, err := c.LoadOrFill("s", func() (map[string]Metadata, error) { return map[string]Metadata{}, nil }); err != nil {
		t.Errorf("fill after failure: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCachePanickingFillReleasesWaiters(t *testing.T) {
	c := NewCache()
	func() {
		defer func() { recover() }()
		c.LoadOrFill("s", func() (map[string]Metadata, error) { panic("fill") })
	}()
	if c.Len() != 0 {
		t.Errorf("Len = %d after panicking fill, want 0", c.Len())
	}
	got, err := c.LoadOrFill("s", func() (map[string]Metadata, error) { return map[string]Metadata{"a": {}}, nil })
	if err != nil || len(got) != 1 {
		t.Errorf("LoadOrFill after panic = (%v, %v)", got, err)
	}
}
