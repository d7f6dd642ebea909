package registry

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/iockit/errors"
)

func populate(t *testing.T, r *Registry, log *[]string, names ...string) {
	t.Helper()
	for _, name := range names {
		name := name
		_, err := r.Get(context.Background(), name, func(context.Context) (any, error) {
			r.RegisterDisposable(name, func(context.Context) error {
				*log = append(*log, name)
				return nil
			})
			return name, nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestDestroySingletons_ReverseOrder(t *testing.T) {
	r := New()
	var log []string
	populate(t, r, &log, "a", "b", "c")

	r.DestroySingletons(context.Background())
	if got := strings.Join(log, ","); got != "c,b,a" {
		t.Errorf("expected c,b,a, got %s", got)
	}
	if r.Len() != 0 || !r.IsDestroyed() {
		t.Error("expected an empty, destroyed registry")
	}
}

func TestDestroySingletons_DependentsFirst(t *testing.T) {
	r := New()
	var log []string
	// Registered after its dependency would normally be destroyed later.
	populate(t, r, &log, "service", "db", "cache")
	r.RegisterDependent("db", "service")
	r.RegisterDependent("cache", "db")

	r.DestroySingletons(context.Background())
	if got := strings.Join(log, ","); got != "service,db,cache" {
		t.Errorf("expected service,db,cache, got %s", got)
	}
}

func TestDestroySingletons_ExactlyOnceAndIdempotent(t *testing.T) {
	r := New()
	var log []string
	populate(t, r, &log, "a", "b")
	r.RegisterDependent("a", "b")
	r.RegisterDependent("b", "a")

	r.DestroySingletons(context.Background())
	r.DestroySingletons(context.Background())

	if len(log) != 2 {
		t.Errorf("expected each callback once, got %v", log)
	}
	if _, err := r.Get(context.Background(), "a", nil); !errors.HasCode(err, errors.ErrCodeScopeNotActive) {
		t.Errorf("expected SCOPE_NOT_ACTIVE after destroy, got %v", err)
	}
	if err := r.RegisterDestructionCallback(context.Background(), "z", nil); err == nil {
		t.Error("expected registration on a destroyed registry to fail")
	}
}

func TestDestroySingletons_FailureDoesNotStopTeardown(t *testing.T) {
	r := New()
	var log []string
	populate(t, r, &log, "a")
	_, _ = r.Get(context.Background(), "bad", func(context.Context) (any, error) {
		r.RegisterDisposable("bad", func(context.Context) error {
			log = append(log, "bad")
			return stderrors.New("close failed")
		})
		return "bad", nil
	})
	_, _ = r.Get(context.Background(), "panics", func(context.Context) (any, error) {
		r.RegisterDisposable("panics", func(context.Context) error { panic("boom") })
		return "p", nil
	})

	r.DestroySingletons(context.Background())
	if got := strings.Join(log, ","); got != "bad,a" {
		t.Errorf("expected teardown to continue past failures, got %s", got)
	}
}

func TestRemove_DiscardsCallback(t *testing.T) {
	r := New()
	var log []string
	populate(t, r, &log, "a", "b")

	v, err := r.Remove(context.Background(), "a")
	if err != nil || v != "a" {
		t.Fatalf("expected removed instance, got %v, %v", v, err)
	}
	if v, _ := r.Remove(context.Background(), "a"); v != nil {
		t.Errorf("expected nil for an absent name, got %v", v)
	}
	if strings.Join(r.Names(), ",") != "b" {
		t.Errorf("unexpected names %v", r.Names())
	}

	r.DestroySingletons(context.Background())
	if got := strings.Join(log, ","); got != "b" {
		t.Errorf("removed instance must not be destroyed, got %s", got)
	}
}

func TestRegisterDestructionCallback_Scope(t *testing.T) {
	r := New()
	ctx := context.Background()
	runs := 0
	_, _ = r.Get(ctx, "a", func(context.Context) (any, error) { return "a", nil })
	if err := r.RegisterDestructionCallback(ctx, "a", func(context.Context) error {
		runs++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	r.DestroySingletons(ctx)
	if runs != 1 {
		t.Errorf("expected one run, got %d", runs)
	}
	if r.ConversationID(ctx) != "" {
		t.Error("process-wide scope has no conversation id")
	}
}
