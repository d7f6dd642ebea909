package hook

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/iockit/definition"
	"github.com/kbukum/iockit/order"
)

type recorder struct {
	calls []string
}

type tracingHook struct {
	name string
	rec  *recorder
}

func (h *tracingHook) AfterInitialization(_ context.Context, instance any, _ string) (any, error) {
	h.rec.calls = append(h.rec.calls, h.name)
	return instance, nil
}

type priorityHook struct {
	tracingHook
	order int
}

func (h *priorityHook) Order() int       { return h.order }
func (h *priorityHook) PriorityOrdered() {}

type orderedHook struct {
	tracingHook
	order int
}

func (h *orderedHook) Order() int { return h.order }

func TestPipeline_Ordering(t *testing.T) {
	rec := &recorder{}
	h1 := &priorityHook{tracingHook{"H1", rec}, 5}
	h2 := &priorityHook{tracingHook{"H2", rec}, 1}
	h3 := &orderedHook{tracingHook{"H3", rec}, 0}

	p := NewPipeline(h1, h2, h3)
	if _, err := p.ApplyAfterInitialization(context.Background(), "x", "x"); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(rec.calls, ","); got != "H2,H1,H3" {
		t.Errorf("expected H2,H1,H3, got %s", got)
	}
}

func TestPipeline_RegistrationOrderOnTies(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(
		&tracingHook{"u1", rec},
		&orderedHook{tracingHook{"o1", rec}, 10},
		&tracingHook{"u2", rec},
		order.Value{Target: &tracingHook{"o2", rec}, Value: 10},
	)
	_, _ = p.ApplyAfterInitialization(context.Background(), "x", "x")
	if got := strings.Join(rec.calls, ","); got != "o1,o2,u1,u2" {
		t.Errorf("unexpected order %s", got)
	}
	if p.Len() != 4 {
		t.Errorf("expected 4 hooks, got %d", p.Len())
	}
}

func TestPipeline_BeforeInstantiationFirstResultWins(t *testing.T) {
	var calls int
	p := NewPipeline(
		BeforeInstantiationFunc(func(context.Context, reflect.Type, string) (any, error) {
			calls++
			return nil, nil
		}),
		BeforeInstantiationFunc(func(context.Context, reflect.Type, string) (any, error) {
			calls++
			return "short-circuit", nil
		}),
		BeforeInstantiationFunc(func(context.Context, reflect.Type, string) (any, error) {
			calls++
			return "unreached", nil
		}),
	)
	got, err := p.ApplyBeforeInstantiation(context.Background(), nil, "x")
	if err != nil || got != "short-circuit" {
		t.Fatalf("got %v, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}

	empty, err := NewPipeline().ApplyBeforeInstantiation(context.Background(), nil, "x")
	if empty != nil || err != nil {
		t.Errorf("expected nil from empty pipeline, got %v, %v", empty, err)
	}
}

func TestPipeline_AfterInstantiationGate(t *testing.T) {
	var reached bool
	p := NewPipeline(
		AfterInstantiationFunc(func(context.Context, any, string) (bool, error) { return false, nil }),
		AfterInstantiationFunc(func(context.Context, any, string) (bool, error) {
			reached = true
			return true, nil
		}),
	)
	proceed, err := p.ApplyAfterInstantiation(context.Background(), "x", "x")
	if err != nil || proceed {
		t.Fatalf("expected veto, got %v, %v", proceed, err)
	}
	if reached {
		t.Error("hooks after a veto must not run")
	}
}

func TestPipeline_PropertiesNilMeansNoOpinion(t *testing.T) {
	p := NewPipeline(
		PropertiesFunc(func(_ context.Context, props definition.Properties, _ any, _ string) (definition.Properties, error) {
			return props.With("Added", 1), nil
		}),
		PropertiesFunc(func(context.Context, definition.Properties, any, string) (definition.Properties, error) {
			return nil, nil
		}),
	)
	props, err := p.ApplyPostProcessProperties(context.Background(), definition.Properties{{Name: "A", Value: 0}}, "x", "x")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(props.Names(), ",") != "A,Added" {
		t.Errorf("unexpected properties %v", props.Names())
	}
}

func TestPipeline_InitializationWrapping(t *testing.T) {
	type wrapper struct{ inner any }
	var thirdCalled bool
	p := NewPipeline(
		BeforeInitializationFunc(func(_ context.Context, instance any, _ string) (any, error) {
			return wrapper{instance}, nil
		}),
		BeforeInitializationFunc(func(context.Context, any, string) (any, error) {
			return nil, nil
		}),
		BeforeInitializationFunc(func(context.Context, any, string) (any, error) {
			thirdCalled = true
			return "replaced", nil
		}),
	)
	got, err := p.ApplyBeforeInitialization(context.Background(), "raw", "x")
	if err != nil {
		t.Fatal(err)
	}
	if w, ok := got.(wrapper); !ok || w.inner != "raw" {
		t.Errorf("expected wrapper around raw, got %v", got)
	}
	if thirdCalled {
		t.Error("a nil result must end the stage")
	}
}

func TestPipeline_EarlyReference(t *testing.T) {
	p := NewPipeline(
		EarlyReferenceFunc(func(_ context.Context, instance any, _ string) (any, error) {
			return "proxy(" + instance.(string) + ")", nil
		}),
		EarlyReferenceFunc(func(context.Context, any, string) (any, error) {
			return nil, nil
		}),
	)
	got, err := p.ApplyEarlyReference(context.Background(), "a", "a")
	if err != nil || got != "proxy(a)" {
		t.Errorf("got %v, %v", got, err)
	}
	if raw, _ := NewPipeline().ApplyEarlyReference(context.Background(), "a", "a"); raw != "a" {
		t.Errorf("expected the raw instance without hooks, got %v", raw)
	}
}

func TestPipeline_ErrorsNameTheStage(t *testing.T) {
	boom := stderrors.New("boom")
	p := NewPipeline(AfterInitializationFunc(func(context.Context, any, string) (any, error) {
		return nil, boom
	}))
	_, err := p.ApplyAfterInitialization(context.Background(), "x", "x")
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "after-initialization") {
		t.Errorf("expected stage name in %q", err.Error())
	}
}

func TestPipeline_MultiCapabilityHook(t *testing.T) {
	h := &multi{}
	p := NewPipeline(h)
	ctx := context.Background()
	_, _ = p.ApplyBeforeInitialization(ctx, "x", "x")
	_, _ = p.ApplyAfterInitialization(ctx, "x", "x")
	if h.before != 1 || h.after != 1 {
		t.Errorf("expected both stages to dispatch, got before=%d after=%d", h.before, h.after)
	}
	if len(p.Hooks()) != 1 {
		t.Errorf("expected one hook, got %d", len(p.Hooks()))
	}
}

type multi struct{ before, after int }

func (m *multi) BeforeInitialization(_ context.Context, instance any, _ string) (any, error) {
	m.before++
	return instance, nil
}

func (m *multi) AfterInitialization(_ context.Context, instance any, _ string) (any, error) {
	m.after++
	return instance, nil
}
