package runtime

import (
	"context"
	"errors"
	"reflect"
	"testing"

	cfgpkg "github.com/rzbill/memstream/internal/config"
)

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err == nil {
		t.Fatalf("health should fail after close")
	}
}

func TestEnsureStreamAutoCreates(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	s, err := rt.EnsureStream("orders")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	again, err := rt.EnsureStream("orders")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if s != again {
		t.Fatalf("ensure should return the same stream handle")
	}
	if got, err := rt.GetStream("orders"); err != nil || got != s {
		t.Fatalf("get: %v %v", got, err)
	}
}

func TestEnsureStreamRespectsAutoCreateFlag(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.AllowAutoCreateStreams = false
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	if _, err := rt.EnsureStream("orders"); !errors.Is(err, ErrStreamNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	// Explicit creation still works.
	if _, err := rt.CreateStream("orders"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rt.EnsureStream("orders"); err != nil {
		t.Fatalf("ensure after create: %v", err)
	}
}

func TestCreateStreamConflict(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	if _, err := rt.CreateStream("orders"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rt.CreateStream("orders"); !errors.Is(err, ErrStreamExists) {
		t.Fatalf("expected exists error, got %v", err)
	}
}

func TestStreamNameValidation(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	for _, name := range []string{"", "has space", "bad/slash", "näme"} {
		if _, err := rt.CreateStream(name); !errors.Is(err, ErrInvalidStreamName) {
			t.Fatalf("create %q: expected invalid-name error, got %v", name, err)
		}
	}
	for _, name := range []string{"orders", "ns:orders", "a_b-c.d"} {
		if _, err := rt.CreateStream(name); err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}
}

func TestMaxStreamsCap(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MaxStreams = 2
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	for _, name := range []string{"a", "b"} {
		if _, err := rt.CreateStream(name); err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}
	if _, err := rt.CreateStream("c"); !errors.Is(err, ErrTooManyStreams) {
		t.Fatalf("expected cap error, got %v", err)
	}
	// Deleting one frees a slot.
	if !rt.DeleteStream("a") {
		t.Fatalf("delete existing")
	}
	if _, err := rt.CreateStream("c"); err != nil {
		t.Fatalf("create after delete: %v", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	for _, name := range []string{"b", "a"} {
		if _, err := rt.CreateStream(name); err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}
	if got := rt.ListStreams(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("list: %v", got)
	}
	if rt.DeleteStream("missing") {
		t.Fatalf("delete of absent stream reported true")
	}
	if !rt.DeleteStream("b") {
		t.Fatalf("delete of existing stream reported false")
	}
	if got := rt.ListStreams(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("list after delete: %v", got)
	}
	if _, err := rt.GetStream("b"); !errors.Is(err, ErrStreamNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestBadNamePatternRejectedAtOpen(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.StreamNameRegex = "["
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatalf("expected pattern compile error")
	}
}
