package ilvm

import (
	"errors"
	"testing"
)

func TestRegisterAndCallNativeFunction(t *testing.T) {
	p := NewProgram()
	handle := p.Register("double", 1, func(vm *VM, args []Value) (Value, error) {
		return Float64(args[0].Float64() * 2), nil
	})

	vm := New(p)
	result, err := vm.Call(handle, Float64(21))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := result.Float64(); got != 42 {
		t.Errorf("Call(double, 21) = %v, want 42", got)
	}
}

func TestRegisterPropagatesNativeError(t *testing.T) {
	p := NewProgram()
	handle := p.Register("fail", 0, func(vm *VM, args []Value) (Value, error) {
		return Undefined(), errors.New("boom")
	})

	vm := New(p)
	if _, err := vm.Call(handle); err == nil {
		t.Fatal("expected an error from a failing native function")
	}
}

func TestGlobalFieldRoundTrip(t *testing.T) {
	p := NewProgram()
	f := p.AllocField()

	if got := p.GetField(f); !got.IsUndefined() {
		t.Errorf("GetField on a freshly allocated field = %v, want undefined", got)
	}

	p.SetField(f, Str("hello"))
	if got := p.GetField(f).String(); got != "hello" {
		t.Errorf("GetField after SetField = %q, want %q", got, "hello")
	}
}

func TestDistinctFieldsAreIndependent(t *testing.T) {
	p := NewProgram()
	a := p.AllocField()
	b := p.AllocField()

	p.SetField(a, Int32(1))
	p.SetField(b, Int32(2))

	if got := p.GetField(a).Float64(); got != 1 {
		t.Errorf("field a = %v, want 1", got)
	}
	if got := p.GetField(b).Float64(); got != 2 {
		t.Errorf("field b = %v, want 2", got)
	}
}
