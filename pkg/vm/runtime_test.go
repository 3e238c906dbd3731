package vm

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/daimatz/gojni/pkg/classfile"
	"github.com/daimatz/gojni/pkg/jni"
)

// newTestRuntime returns a runtime whose loader serves the given classes.
func newTestRuntime(t *testing.T, classes ...*classfile.Builder) (*Runtime, *MemoryClassLoader) {
	t.Helper()
	cl := NewMemoryClassLoader()
	for _, b := range classes {
		if _, err := cl.Define(b.Bytes()); err != nil {
			t.Fatalf("Define: %v", err)
		}
	}
	r, err := NewRuntime(cl)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return r, cl
}

func TestLoadClassLayout(t *testing.T) {
	r, _ := newTestRuntime(t,
		classfile.NewBuilder("Base").
			Field(0, "id", "I").
			Field(classfile.AccStatic, "COUNT", "I"),
		classfile.NewBuilder("Derived").Extends("Base").
			Field(0, "name", "Ljava/lang/String;").
			Field(0, "id", "J"),
	)

	c, err := r.LoadClass("Derived")
	if err != nil {
		t.Fatalf("LoadClass: %v", err)
	}
	if c.Super == nil || c.Super.Name != "Base" || c.Super.Super != r.objectClass {
		t.Fatalf("super chain: got %v", c.Super)
	}

	want := []InstanceField{
		{Owner: "Base", Name: "id", Descriptor: "I", Kind: classfile.KindInt, Slot: 0},
		{Owner: "Derived", Name: "name", Descriptor: "Ljava/lang/String;", Kind: classfile.KindObject, Slot: 1},
		{Owner: "Derived", Name: "id", Descriptor: "J", Kind: classfile.KindLong, Slot: 2},
	}
	if diff := cmp.Diff(want, c.Fields); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}

	if f, ok := c.LookupField("id", "J"); !ok || f.Owner != "Derived" {
		t.Errorf("LookupField(id, J): got %+v, %v", f, ok)
	}
	if f, ok := c.LookupField("id", "I"); !ok || f.Owner != "Base" {
		t.Errorf("LookupField(id, I): got %+v, %v", f, ok)
	}
	if _, ok := c.LookupField("COUNT", "I"); ok {
		t.Error("LookupField(COUNT): static field must not be part of the layout")
	}

	again, err := r.LoadClass("Derived")
	if err != nil {
		t.Fatal(err)
	}
	if again != c {
		t.Error("expected the loaded class on second LoadClass")
	}
}

func TestLoadClassErrors(t *testing.T) {
	r, _ := newTestRuntime(t,
		classfile.NewBuilder("Orphan").Extends("Missing"),
		classfile.NewBuilder("Loop1").Extends("Loop2"),
		classfile.NewBuilder("Loop2").Extends("Loop1"),
	)

	t.Run("unknown class", func(t *testing.T) {
		_, err := r.LoadClass("Nope")
		if !errors.Is(err, ErrClassNotFound) {
			t.Errorf("got %v, want ErrClassNotFound", err)
		}
	})

	t.Run("missing super class", func(t *testing.T) {
		_, err := r.LoadClass("Orphan")
		if !errors.Is(err, ErrClassNotFound) {
			t.Errorf("got %v, want ErrClassNotFound", err)
		}
		if _, ok := r.classes["Orphan"]; ok {
			t.Error("Orphan must not be registered")
		}
	})

	t.Run("circular hierarchy", func(t *testing.T) {
		if _, err := r.LoadClass("Loop1"); err == nil {
			t.Error("expected error for circular hierarchy, got nil")
		}
	})

	t.Run("define twice", func(t *testing.T) {
		data := classfile.NewBuilder("Once").Bytes()
		if _, err := r.DefineClass(data); err != nil {
			t.Fatalf("DefineClass: %v", err)
		}
		if _, err := r.DefineClass(data); err == nil {
			t.Error("expected error redefining a loaded class, got nil")
		}
	})
}

func TestUnloadClass(t *testing.T) {
	r, cl := newTestRuntime(t,
		classfile.NewBuilder("Base").Field(0, "a", "I"),
		classfile.NewBuilder("Derived").Extends("Base"),
		classfile.NewBuilder("Other"),
	)
	base, _ := r.LoadClass("Base")
	derived, _ := r.LoadClass("Derived")
	other, _ := r.LoadClass("Other")

	if _, err := cl.Define(classfile.NewBuilder("Base").Field(0, "b", "J").Field(0, "a", "I").Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := r.UnloadClass("Base"); err != nil {
		t.Fatalf("UnloadClass: %v", err)
	}

	if !base.Unloaded() || !derived.Unloaded() {
		t.Error("Base and its subclass should be unloaded")
	}
	if other.Unloaded() {
		t.Error("Other should stay loaded")
	}

	reloaded, err := r.LoadClass("Base")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded == base {
		t.Fatal("reload returned the unloaded class")
	}
	if reloaded.Generation <= base.Generation {
		t.Errorf("generation: got %d, want > %d", reloaded.Generation, base.Generation)
	}
	if f, _ := reloaded.LookupField("a", "I"); f.Slot != 1 {
		t.Errorf("reloaded layout: a at slot %d, want 1", f.Slot)
	}

	t.Run("not loaded", func(t *testing.T) {
		if err := r.UnloadClass("Derived"); err == nil {
			t.Error("expected error unloading a class that is not loaded, got nil")
		}
	})

	t.Run("bootstrap", func(t *testing.T) {
		for _, name := range []string{"java/lang/Object", "java/lang/String"} {
			if err := r.UnloadClass(name); err == nil {
				t.Errorf("UnloadClass(%s): expected error, got nil", name)
			}
		}
	})
}

func TestNewObject(t *testing.T) {
	r, _ := newTestRuntime(t,
		classfile.NewBuilder("All").
			Field(0, "z", "Z").Field(0, "i", "I").Field(0, "j", "J").
			Field(0, "f", "F").Field(0, "d", "D").Field(0, "o", "Ljava/lang/Object;"),
		classfile.NewBuilder("Runnable").Field(0, "x", "I"),
	)

	h, err := r.NewObject("All")
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	obj, ok := r.refs[h].(*JObject)
	if !ok {
		t.Fatalf("handle %d: got %T, want *JObject", h, r.refs[h])
	}
	want := []Value{IntValue(0), IntValue(0), LongValue(0), FloatValue(0), DoubleValue(0), NullValue()}
	if diff := cmp.Diff(want, obj.Fields); diff != "" {
		t.Errorf("initial fields mismatch (-want +got):\n%s", diff)
	}

	t.Run("unknown class", func(t *testing.T) {
		if _, err := r.NewObject("Nope"); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("interface", func(t *testing.T) {
		c, _ := r.LoadClass("Runnable")
		c.AccessFlags |= accInterface
		if _, err := r.NewObject("Runnable"); err == nil {
			t.Error("expected error instantiating an interface, got nil")
		}
	})

	t.Run("string class", func(t *testing.T) {
		h, err := r.NewObject("java/lang/String")
		if err != nil {
			t.Fatalf("NewObject: %v", err)
		}
		s, err := r.GoString(jni.String(h))
		if err != nil || s != "" {
			t.Errorf("GoString: got %q, %v; want empty string", s, err)
		}
	})
}

func TestHandles(t *testing.T) {
	r, _ := newTestRuntime(t, classfile.NewBuilder("A"))

	s := r.NewString("hello")
	got, err := r.GoString(s)
	if err != nil || got != "hello" {
		t.Errorf("GoString: got %q, %v; want %q", got, err, "hello")
	}
	if s2 := r.NewString("hello"); r.IsSameObject(jni.Object(s), jni.Object(s2)) {
		t.Error("two NewString calls must give distinct objects")
	}

	a, _ := r.NewObject("A")
	if _, err := r.GoString(jni.String(a)); err == nil {
		t.Error("GoString on a non-string: expected error, got nil")
	}

	cls := r.GetObjectClass(a)
	if name := r.ClassName(cls); name != "A" {
		t.Errorf("ClassName: got %q, want %q", name, "A")
	}
	if cls2 := r.GetObjectClass(a); cls2 != cls {
		t.Errorf("class handle not stable: %d != %d", cls, cls2)
	}
	if c, ok := r.Class(cls); !ok || c.Name != "A" {
		t.Errorf("Class: got %v, %v", c, ok)
	}
	if name := r.ClassName(jni.Class(a)); name != "" {
		t.Errorf("ClassName(object handle): got %q, want empty", name)
	}

	r.DeleteLocalRef(a)
	mustPanic(t, "IsSameObject: invalid object handle", func() { r.IsSameObject(a, jni.Object(s)) })
	mustPanic(t, "IsSameObject: invalid object handle", func() { r.IsSameObject(0, a) })
	mustPanic(t, "IsSameObject: invalid object handle", func() { r.IsSameObject(9999, 9999) })
	if !r.IsSameObject(0, 0) {
		t.Error("null must be the same as null")
	}
	r.DeleteLocalRef(0)
}

func TestDeletedHandleUnchecked(t *testing.T) {
	cl := NewMemoryClassLoader()
	if _, err := cl.Define(classfile.NewBuilder("A").Bytes()); err != nil {
		t.Fatal(err)
	}
	r, err := NewRuntime(cl, WithCheckJNI(false))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := r.NewObject("A")
	b, _ := r.NewObject("A")
	r.DeleteLocalRef(a)

	if r.IsSameObject(a, b) {
		t.Error("deleted handle must not alias a live object")
	}
	if !r.IsSameObject(a, 0) {
		t.Error("deleted handle must compare equal to null")
	}
}

func TestRuntimeOptions(t *testing.T) {
	t.Run("logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		cl := NewMemoryClassLoader()
		if _, err := cl.Define(classfile.NewBuilder("A").Bytes()); err != nil {
			t.Fatal(err)
		}
		r, err := NewRuntime(cl, WithLogger(logger))
		if err != nil {
			t.Fatalf("NewRuntime: %v", err)
		}
		if _, err := r.LoadClass("A"); err != nil {
			t.Fatal(err)
		}
		if err := r.UnloadClass("A"); err != nil {
			t.Fatal(err)
		}

		out := buf.String()
		for _, want := range []string{`msg="class loaded" class=A`, `msg="class unloaded" class=A`} {
			if !strings.Contains(out, want) {
				t.Errorf("log output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("nil logger", func(t *testing.T) {
		if _, err := NewRuntime(nil, WithLogger(nil)); err == nil {
			t.Error("expected error for nil logger, got nil")
		}
	})

	t.Run("nil loader serves bootstrap classes", func(t *testing.T) {
		r, err := NewRuntime(nil, WithCheckJNI(false))
		if err != nil {
			t.Fatalf("NewRuntime: %v", err)
		}
		if r.checked {
			t.Error("WithCheckJNI(false) not applied")
		}
		if _, err := r.NewObject("java/lang/Object"); err != nil {
			t.Errorf("NewObject(java/lang/Object): %v", err)
		}
	})
}
