package ilvm

// Value is the host-facing wrapper around this package's own internal
// runtime representation, crossing package boundaries wherever
// internal/stdproto or pkg/engine needs to construct an argument or read a
// result back — the unexported value type underneath stays a plain
// fixed-size struct so the interpreter's hot path never boxes through an
// interface.
type Value struct {
	v value
}

func Undefined() Value        { return Value{undefined()} }
func Null() Value             { return Value{null()} }
func Bool(b bool) Value       { return Value{boolVal(b)} }
func Int32(n int32) Value     { return Value{i32Val(n)} }
func Uint32(n uint32) Value   { return Value{u32Val(n)} }
func Float64(n float64) Value { return Value{f64Val(n)} }
func Str(s string) Value      { return Value{strVal(s)} }

// Obj wraps a freshly created plain object under class (empty for an
// untyped object literal, a prototype name for a synthesized host class
// instance).
func Obj(class string) Value { return Value{objVal(newObject(class))} }

// Array wraps a freshly created array of n undefined elements, tagged
// with the "Array" class so Value.Class/PrototypeFor route it to
// Array.prototype.
func Array(n int) Value {
	o := newArray(n)
	o.class = "Array"
	return Value{objVal(o)}
}

func (v Value) IsUndefined() bool { return v.v.kind == kUndefined }
func (v Value) IsNull() bool      { return v.v.kind == kNull }
func (v Value) IsObject() bool    { return v.v.kind == kObject }
func (v Value) IsArray() bool     { return v.v.kind == kObject && v.v.obj.elements != nil }

// Class names the prototype an object-kind Value was constructed against
// (e.g. "Array", "Math", or a synthesized host class name); empty for a
// plain object literal or anything non-object.
func (v Value) Class() string {
	if v.v.kind != kObject {
		return ""
	}
	return v.v.obj.class
}

func (v Value) Bool() bool       { return v.v.truthy() }
func (v Value) Float64() float64 { return v.v.toFloat64() }
func (v Value) String() string   { return v.v.toStringValue() }

// Get/Set read and write a named field on an object-kind Value; both are
// no-ops against anything else (an array, a primitive), mirroring
// GetProperty/SetProperty's own silent-against-the-wrong-shape behavior at
// the opcode level.
func (v Value) Get(name string) Value    { return Value{getNamed(v.v, name)} }
func (v Value) Set(name string, val Value) { setNamed(v.v, name, val.v) }

// Elem/SetElem are Get/Set's array-indexed counterparts.
func (v Value) Elem(i int) Value {
	if v.v.kind != kObject || v.v.obj.elements == nil || i < 0 || i >= len(v.v.obj.elements) {
		return Undefined()
	}
	return Value{v.v.obj.elements[i]}
}

func (v Value) SetElem(i int, val Value) {
	if v.v.kind != kObject || v.v.obj.elements == nil || i < 0 || i >= len(v.v.obj.elements) {
		return
	}
	v.v.obj.elements[i] = val.v
}

// Names returns an object-kind Value's own field names in insertion
// order; nil for anything else (an array, a primitive).
func (v Value) Names() []string { return names(v.v) }

func (v Value) Len() int {
	if v.v.kind != kObject || v.v.obj.elements == nil {
		return 0
	}
	return len(v.v.obj.elements)
}

// Push appends to an array-kind Value in place, growing its backing
// slice — the native-function counterpart to StoreArrayElement's own
// grow-on-write behavior (ops.go's opStoreElement).
func (v Value) Push(val Value) {
	if v.v.kind != kObject || v.v.obj.elements == nil {
		return
	}
	v.v.obj.elements = append(v.v.obj.elements, val.v)
}

// Pop removes and returns an array-kind Value's last element, or
// Undefined if it's empty.
func (v Value) Pop() Value {
	if v.v.kind != kObject || v.v.obj.elements == nil || len(v.v.obj.elements) == 0 {
		return Undefined()
	}
	n := len(v.v.obj.elements)
	last := v.v.obj.elements[n-1]
	v.v.obj.elements = v.v.obj.elements[:n-1]
	return Value{last}
}
