package operations

import (
	"context"
	"errors"
	"testing"
)

func noop(ctx context.Context, op *Context, args Args) (any, error) {
	return nil, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "issue"}, noop)
	r.Register(Descriptor{Name: "sendasset"}, noop)

	if _, ok := r.Lookup("issue"); !ok {
		t.Fatal("registered operation not found")
	}
	if _, ok := r.Lookup("doesNotExist"); ok {
		t.Fatal("unknown operation resolved")
	}
	if _, ok := r.Lookup("_private"); ok {
		t.Fatal("private name resolved")
	}
	if _, ok := r.Lookup(ReservedServerName); ok {
		t.Fatal("reserved name resolved")
	}

	all := r.All()
	if len(all) != 2 || all[0].Name != "issue" || all[1].Name != "sendasset" {
		t.Fatalf("All() lost registration order: %v", all)
	}
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestRegisterRejectsBadRegistrations(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "issue"}, noop)

	mustPanic(t, "duplicate", func() { r.Register(Descriptor{Name: "issue"}, noop) })
	mustPanic(t, "private prefix", func() { r.Register(Descriptor{Name: "_hidden"}, noop) })
	mustPanic(t, "reserved", func() { r.Register(Descriptor{Name: ReservedServerName}, noop) })
	mustPanic(t, "empty", func() { r.Register(Descriptor{Name: ""}, noop) })
	mustPanic(t, "nil func", func() { r.Register(Descriptor{Name: "valid"}, nil) })
	mustPanic(t, "bad param", func() {
		r.Register(Descriptor{Name: "other", Params: []ParamSpec{{Name: "1bad"}}}, noop)
	})
	mustPanic(t, "duplicate param", func() {
		r.Register(Descriptor{
			Name:   "another",
			Params: []ParamSpec{{Name: "a", Required: true}, {Name: "a"}},
		}, noop)
	})
}

func TestBindFillsDefaultsAndValidatesShape(t *testing.T) {
	desc := Descriptor{
		Name: "transfer",
		Params: []ParamSpec{
			{Name: "address", Required: true},
			{Name: "fees", Default: "10000"},
		},
	}

	bound, err := desc.Bind(Args{"address": "mytest"})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if bound["address"] != "mytest" || bound["fees"] != "10000" {
		t.Fatalf("unexpected binding: %v", bound)
	}

	bound, err = desc.Bind(Args{"address": "mytest", "fees": "500"})
	if err != nil {
		t.Fatalf("bind with override: %v", err)
	}
	if bound["fees"] != "500" {
		t.Fatalf("override lost: %v", bound)
	}

	var invalid *InvalidParamsError
	if _, err := desc.Bind(Args{"fees": "500"}); !errors.As(err, &invalid) {
		t.Fatalf("missing required: expected InvalidParamsError, got %v", err)
	}
	if _, err := desc.Bind(Args{"address": "x", "bogus": "y"}); !errors.As(err, &invalid) {
		t.Fatalf("unknown name: expected InvalidParamsError, got %v", err)
	}
}

func TestInvokeDoesNotRunOnShapeMismatch(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(Descriptor{
		Name:   "probe",
		Params: []ParamSpec{{Name: "target", Required: true}},
	}, func(ctx context.Context, op *Context, args Args) (any, error) {
		called = true
		return args["target"], nil
	})

	op, _ := r.Lookup("probe")
	if _, err := op.Invoke(context.Background(), nil, Args{}); err == nil {
		t.Fatal("expected shape error")
	}
	if called {
		t.Fatal("operation ran despite shape mismatch")
	}

	result, err := op.Invoke(context.Background(), nil, Args{"target": "tx0"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != "tx0" {
		t.Fatalf("unexpected result %v", result)
	}
}
