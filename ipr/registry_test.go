package ipr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/opertusmundi/ipr-core/ipr"
)

func TestRegistryRegisterGet(t *testing.T) {
	r := ipr.NewRegistry()
	r.Register("noop", func(ctx context.Context, args interface{}) (interface{}, error) {
		return args, nil
	})

	op, err := r.Get("noop")
	if err != nil {
		t.Fatalf("Get(noop): %v", err)
	}
	result, err := op(context.Background(), 42)
	if err != nil {
		t.Fatalf("op invocation: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %v, want 42", result)
	}

	_, err = r.Get("missing")
	if !errors.Is(err, ipr.ErrOperationNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrOperationNotFound", err)
	}
	if !errors.Is(err, ipr.ErrInvalidOption) {
		t.Errorf("Get(missing) error = %v, want it to also match ErrInvalidOption (spec.md §7)", err)
	}
}

func TestRegistryList(t *testing.T) {
	r := ipr.NewRegistry()
	r.Register("a", func(ctx context.Context, args interface{}) (interface{}, error) { return nil, nil })
	r.Register("b", func(ctx context.Context, args interface{}) (interface{}, error) { return nil, nil })

	names := r.List()
	if len(names) != 2 {
		t.Fatalf("List() returned %d names, want 2", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("List() = %v, want to contain both a and b", names)
	}
}

func TestCancelFlag(t *testing.T) {
	var c ipr.CancelFlag
	if c.Canceled() {
		t.Fatal("fresh CancelFlag reports canceled")
	}
	if err := ipr.CheckCanceled(&c); err != nil {
		t.Fatalf("CheckCanceled before Cancel: %v", err)
	}
	c.Cancel()
	if !c.Canceled() {
		t.Fatal("CancelFlag did not report canceled after Cancel")
	}
	if err := ipr.CheckCanceled(&c); !errors.Is(err, ipr.ErrCanceled) {
		t.Fatalf("CheckCanceled after Cancel = %v, want ErrCanceled", err)
	}
	if err := ipr.CheckCanceled(nil); err != nil {
		t.Fatalf("CheckCanceled(nil) = %v, want nil (nil flag never cancels)", err)
	}
}
