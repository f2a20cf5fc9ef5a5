package ilvm

import "testing"

func TestValuePredicates(t *testing.T) {
	tests := []struct {
		name        string
		v           Value
		isUndefined bool
		isNull      bool
		isObject    bool
		isArray     bool
	}{
		{"undefined", Undefined(), true, false, false, false},
		{"null", Null(), false, true, false, false},
		{"bool", Bool(true), false, false, false, false},
		{"int32", Int32(7), false, false, false, false},
		{"float64", Float64(3.5), false, false, false, false},
		{"string", Str("hi"), false, false, false, false},
		{"object", Obj("Widget"), false, false, true, false},
		{"array", Array(3), false, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsUndefined(); got != tt.isUndefined {
				t.Errorf("IsUndefined() = %v, want %v", got, tt.isUndefined)
			}
			if got := tt.v.IsNull(); got != tt.isNull {
				t.Errorf("IsNull() = %v, want %v", got, tt.isNull)
			}
			if got := tt.v.IsObject(); got != tt.isObject {
				t.Errorf("IsObject() = %v, want %v", got, tt.isObject)
			}
			if got := tt.v.IsArray(); got != tt.isArray {
				t.Errorf("IsArray() = %v, want %v", got, tt.isArray)
			}
		})
	}
}

func TestObjFieldsRoundTrip(t *testing.T) {
	o := Obj("Widget")
	o.Set("x", Float64(42))
	o.Set("name", Str("gadget"))

	if got := o.Get("x").Float64(); got != 42 {
		t.Errorf("Get(x).Float64() = %v, want 42", got)
	}
	if got := o.Get("name").String(); got != "gadget" {
		t.Errorf("Get(name).String() = %q, want %q", got, "gadget")
	}
	if got := o.Class(); got != "Widget" {
		t.Errorf("Class() = %q, want %q", got, "Widget")
	}

	names := o.Names()
	if len(names) != 2 || names[0] != "x" || names[1] != "name" {
		t.Errorf("Names() = %v, want [x name] in insertion order", names)
	}
}

func TestGetSetAgainstNonObjectIsNoop(t *testing.T) {
	n := Float64(1)
	n.Set("x", Int32(5))
	if got := n.Get("x"); !got.IsUndefined() {
		t.Errorf("Get on a non-object Value = %v, want undefined", got)
	}
}

func TestArrayElementsAndLen(t *testing.T) {
	a := Array(2)
	if got := a.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	a.SetElem(0, Str("a"))
	a.SetElem(1, Str("b"))
	if got := a.Elem(0).String(); got != "a" {
		t.Errorf("Elem(0) = %q, want %q", got, "a")
	}
	if got := a.Elem(5); !got.IsUndefined() {
		t.Errorf("Elem(out of range) = %v, want undefined", got)
	}
}

func TestArrayPushPop(t *testing.T) {
	a := Array(0)
	a.Push(Int32(1))
	a.Push(Int32(2))
	if got := a.Len(); got != 2 {
		t.Fatalf("Len() after two pushes = %d, want 2", got)
	}

	top := a.Pop()
	if got := top.Float64(); got != 2 {
		t.Errorf("Pop() = %v, want 2", got)
	}
	if got := a.Len(); got != 1 {
		t.Errorf("Len() after Pop = %d, want 1", got)
	}
}

func TestPopEmptyArrayReturnsUndefined(t *testing.T) {
	a := Array(0)
	if got := a.Pop(); !got.IsUndefined() {
		t.Errorf("Pop() on empty array = %v, want undefined", got)
	}
}

func TestBoolTruthiness(t *testing.T) {
	if !Bool(true).Bool() {
		t.Error("Bool(true).Bool() = false")
	}
	if Bool(false).Bool() {
		t.Error("Bool(false).Bool() = true")
	}
	if Undefined().Bool() {
		t.Error("Undefined().Bool() = true, want false")
	}
}
