package shutdown

import (
	"context"
	"errors"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_ReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"catalog", "watcher", "http"} {
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	h.Trigger()
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if got := strings.Join(order, ","); got != "http,watcher,catalog" {
		t.Errorf("hook order = %s, want http,watcher,catalog", got)
	}
}

func TestHandler_ErrorsAreJoinedAndNamed(t *testing.T) {
	h := NewHandler(time.Second)
	errListener := errors.New("listener busy")

	ran := false
	h.OnShutdown("catalog", func(context.Context) error {
		ran = true
		return nil
	})
	h.OnShutdown("http", func(context.Context) error { return errListener })

	h.Trigger()
	err := h.Wait()
	if !errors.Is(err, errListener) {
		t.Fatalf("Wait() error = %v, want it to wrap %v", err, errListener)
	}
	if !strings.Contains(err.Error(), "stop http") {
		t.Errorf("error does not name the hook: %v", err)
	}
	if !ran {
		t.Error("a failing hook stopped the ones after it")
	}
}

func TestHandler_SharedDeadline(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)

	h.OnShutdown("slow", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			return errors.New("hook context has no deadline")
		}
		if time.Until(deadline) > 50*time.Millisecond {
			return errors.New("deadline beyond the handler timeout")
		}
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger()
	if err := h.Wait(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestHandler_TriggerTwice(t *testing.T) {
	h := NewHandler(time.Second)

	calls := 0
	h.OnShutdown("catalog", func(context.Context) error {
		calls++
		return nil
	})

	h.Trigger()
	h.Trigger()
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("hook ran %d times, want 1", calls)
	}
}

func TestWithSignals(t *testing.T) {
	h := NewHandler(time.Second, WithSignals(syscall.SIGUSR1))
	if len(h.signals) != 1 || h.signals[0] != syscall.SIGUSR1 {
		t.Errorf("signals = %v", h.signals)
	}
}

func TestHandler_ConcurrentRegistration(t *testing.T) {
	h := NewHandler(time.Second)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("hook", func(context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hooks) != 50 {
		t.Errorf("registered %d hooks, want 50", len(h.hooks))
	}
}
