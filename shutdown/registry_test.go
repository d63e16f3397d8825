package shutdown

import (
	"context"
	"errors"
	"testing"
)

func TestRegistryRunsInPriorityOrder(t *testing.T) {
	registry := NewRegistry()

	var order []string
	record := func(name string) Func {
		return func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	registry.Register("database", 30, record("database"))
	registry.Register("logger", 5, record("logger"))
	registry.Register("server", 10, record("server"))

	errs := registry.Shutdown(context.Background())
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	want := []string{"logger", "server", "database"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestRegistryContinuesPastFailures(t *testing.T) {
	registry := NewRegistry()

	ran := false
	registry.Register("failing", 1, func(ctx context.Context) error {
		return errors.New("boom")
	})
	registry.Register("after", 2, func(ctx context.Context) error {
		ran = true
		return nil
	})

	errs := registry.Shutdown(context.Background())
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one error", errs)
	}
	if !ran {
		t.Error("later cleanup skipped after a failure")
	}
}

func TestRegistryShutdownIsIdempotent(t *testing.T) {
	registry := NewRegistry()

	calls := 0
	registry.Register("once", 1, func(ctx context.Context) error {
		calls++
		return nil
	})

	registry.Shutdown(context.Background())
	if errs := registry.Shutdown(context.Background()); errs != nil {
		t.Fatalf("second Shutdown = %v, want nil", errs)
	}
	if calls != 1 {
		t.Errorf("cleanup ran %d times, want 1", calls)
	}

	// Late registration is a no-op.
	registry.Register("late", 1, func(ctx context.Context) error {
		t.Error("late registration executed")
		return nil
	})
	if registry.Count() != 1 {
		t.Errorf("count = %d, want 1", registry.Count())
	}
}

func TestRegistryNames(t *testing.T) {
	registry := NewRegistry()
	registry.Register("b", 2, func(ctx context.Context) error { return nil })
	registry.Register("a", 1, func(ctx context.Context) error { return nil })

	names := registry.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v", names)
	}
}
