package factory

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type sample struct{ A int }

type sampleConf struct {
	A int `json:"a"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestRegistry_Types(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"sqlite", "file", "memory"} {
		if err := reg.Register(n, func(map[string]any) (int, error) { return 0, nil }); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}
	got := reg.Types()
	if len(got) != 3 || got[0] != "file" || got[1] != "memory" || got[2] != "sqlite" {
		t.Fatalf("unexpected types %v", got)
	}
	if !reg.Has("file") || reg.Has("s3") {
		t.Fatal("Has mismatch")
	}
}

func TestDecode_WeakTypes(t *testing.T) {
	var c struct {
		Timeout time.Duration `json:"timeout"`
		Workers int           `json:"workers"`
	}
	if err := Decode(map[string]any{"timeout": "30s", "workers": "8"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Timeout != 30*time.Second || c.Workers != 8 {
		t.Fatalf("unexpected decode %+v", c)
	}
}

func TestRegistry_CreateWrapsFactoryError(t *testing.T) {
	reg := NewRegistry[int]()
	_ = reg.Register("broken", func(conf map[string]any) (int, error) {
		if conf == nil {
			t.Fatal("conf should never be nil")
		}
		return 0, errors.New("boom")
	})
	_, err := reg.Create(ModuleConfig{Type: "broken"})
	if err == nil || !strings.Contains(err.Error(), "broken: boom") {
		t.Fatalf("unexpected error %v", err)
	}
	_, err = reg.Create(ModuleConfig{Type: "missing"})
	if err == nil || !strings.Contains(err.Error(), "registered: broken") {
		t.Fatalf("unexpected error %v", err)
	}
	if err := reg.Register("", func(map[string]any) (int, error) { return 0, nil }); err == nil {
		t.Fatal("expected empty name error")
	}
}
