package worker

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestMapEmpty(t *testing.T) {
	outcomes := Map(nil, 2, func(s string) (string, error) {
		return s, nil
	})
	if outcomes != nil {
		t.Errorf("expected nil outcomes for empty input, got %v", outcomes)
	}
}

func TestMapPreservesOrder(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	outcomes := Map(items, 4, func(s string) (string, error) {
		return "loaded-" + s, nil
	})

	if len(outcomes) != len(items) {
		t.Fatalf("expected %d outcomes, got %d", len(items), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Err != nil {
			t.Errorf("outcome[%d] unexpected error: %v", i, o.Err)
		}
		if want := "loaded-" + items[i]; o.Value != want {
			t.Errorf("outcome[%d] = %q, expected %q", i, o.Value, want)
		}
		if o.Index != i {
			t.Errorf("outcome[%d].Index = %d, expected %d", i, o.Index, i)
		}
	}
}

func TestMapCapturesErrors(t *testing.T) {
	items := []string{"ok", "fail", "ok", "fail"}

	outcomes := Map(items, 2, func(s string) (int, error) {
		if s == "fail" {
			return 0, fmt.Errorf("failed on %s", s)
		}
		return 1, nil
	})

	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Err != nil || outcomes[0].Value != 1 {
		t.Errorf("outcome[0] should succeed, got err=%v val=%d", outcomes[0].Err, outcomes[0].Value)
	}
	if outcomes[1].Err == nil {
		t.Error("outcome[1] should have error")
	}
	if outcomes[3].Err == nil {
		t.Error("outcome[3] should have error")
	}
}

func TestMapRunsConcurrently(t *testing.T) {
	var maxConcurrent int64
	var current int64
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}

	outcomes := Map(items, 4, func(s string) (int, error) {
		c := atomic.AddInt64(&current, 1)
		for {
			old := atomic.LoadInt64(&maxConcurrent)
			if c <= old || atomic.CompareAndSwapInt64(&maxConcurrent, old, c) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond) // Simulate I/O
		atomic.AddInt64(&current, -1)
		return 1, nil
	})

	if len(outcomes) != 20 {
		t.Fatalf("expected 20 outcomes, got %d", len(outcomes))
	}
	if peak := atomic.LoadInt64(&maxConcurrent); peak < 2 {
		t.Errorf("expected concurrent execution (peak=%d), got sequential", peak)
	}
}

func TestMapDefaultConcurrency(t *testing.T) {
	outcomes := Map([]string{"only"}, 0, func(s string) (string, error) {
		return "done-" + s, nil
	})
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Value != "done-only" {
		t.Errorf("expected done-only, got %s", outcomes[0].Value)
	}
}

func TestMapMoreWorkersThanItems(t *testing.T) {
	outcomes := Map([]string{"a", "b"}, 100, func(s string) (string, error) {
		return s + "!", nil
	})
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Value != "a!" || outcomes[1].Value != "b!" {
		t.Errorf("unexpected values: %v, %v", outcomes[0].Value, outcomes[1].Value)
	}
}

// --- Benchmarks ---

func BenchmarkMap(b *testing.B) {
	items := make([]string, 100)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Map(items, 4, func(s string) (string, error) {
			return s + "-done", nil
		})
	}
}
