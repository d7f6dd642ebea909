package di

import (
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/iockit/definition"
)

type settings struct {
	Host    string
	Port    int
	Timeout time.Duration `inject:"timeout"`
	Tags    []string
	Extra   any
	secret  string
}

type setterTarget struct {
	got map[string]any
}

func (s *setterTarget) SetProperty(name string, value any) error {
	if name == "bad" {
		return fmt.Errorf("rejected")
	}
	s.got[name] = value
	return nil
}

func TestApplyProperties(t *testing.T) {
	s := &settings{Host: "old"}
	props := definition.Properties{}.
		With("host", "localhost").
		With("PORT", int32(8080)).
		With("timeout", int64(time.Second)).
		With("tags", []string{"a", "b"}).
		With("extra", 3.5)

	if err := applyProperties(s, props); err != nil {
		t.Fatalf("applyProperties failed: %v", err)
	}
	if s.Host != "localhost" || s.Port != 8080 || s.Timeout != time.Second {
		t.Errorf("unexpected result %+v", s)
	}
	if len(s.Tags) != 2 || s.Extra != 3.5 {
		t.Errorf("unexpected result %+v", s)
	}
}

func TestApplyProperties_Errors(t *testing.T) {
	tests := []struct {
		name     string
		instance any
		props    definition.Properties
	}{
		{"not a pointer", settings{}, definition.Properties{}.With("host", "x")},
		{"nil pointer", (*settings)(nil), definition.Properties{}.With("host", "x")},
		{"pointer to non-struct", new(int), definition.Properties{}.With("host", "x")},
		{"unknown field", &settings{}, definition.Properties{}.With("missing", "x")},
		{"unexported field", &settings{}, definition.Properties{}.With("secret", "x")},
		{"int to string", &settings{}, definition.Properties{}.With("host", 65)},
		{"string to int", &settings{}, definition.Properties{}.With("port", "80")},
		{"setter rejects", &setterTarget{got: map[string]any{}}, definition.Properties{}.With("bad", 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := applyProperties(tc.instance, tc.props); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestApplyProperties_Setter(t *testing.T) {
	s := &setterTarget{got: map[string]any{}}
	if err := applyProperties(s, definition.Properties{}.With("anything", 1)); err != nil {
		t.Fatalf("applyProperties failed: %v", err)
	}
	if s.got["anything"] != 1 {
		t.Errorf("expected the setter to receive the property, got %v", s.got)
	}
}

func TestApplyProperties_NilClearsField(t *testing.T) {
	s := &settings{Host: "old", Tags: []string{"x"}}
	props := definition.Properties{}.With("host", nil).With("tags", nil)
	if err := applyProperties(s, props); err != nil {
		t.Fatalf("applyProperties failed: %v", err)
	}
	if s.Host != "" || s.Tags != nil {
		t.Errorf("expected zero values, got %+v", s)
	}
}

func TestSameInstance(t *testing.T) {
	p := &settings{}
	m := map[string]int{}
	sl := []int{1, 2, 3}
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same pointer", p, p, true},
		{"different pointers", p, &settings{}, false},
		{"equal values", 3, 3, true},
		{"different types", 3, int64(3), false},
		{"same map", m, m, true},
		{"different maps", m, map[string]int{}, false},
		{"same slice", sl, sl, true},
		{"resliced", sl, sl[:2], false},
		{"same func", fn, fn, true},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, p, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sameInstance(tc.a, tc.b); got != tc.want {
				t.Errorf("sameInstance() = %v, want %v", got, tc.want)
			}
		})
	}
}
