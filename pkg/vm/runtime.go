package vm

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/daimatz/gojni/pkg/classfile"
	"github.com/daimatz/gojni/pkg/jni"
)

const (
	objectClassName = "java/lang/Object"
	stringClassName = "java/lang/String"
)

// maxClassDepth bounds superclass chains while linking.
const maxClassDepth = 256

// Runtime is an in-process managed runtime: it loads and unloads classes,
// holds objects, and serves them to native code through jni.Env.
//
// Objects are handed out as handles. A handle stays valid until
// DeleteLocalRef; the same object always maps to the same handle.
type Runtime struct {
	loader  ClassLoader
	logger  *slog.Logger
	checked bool

	mu          sync.Mutex
	classes     map[string]*Class
	generation  uint64
	objectClass *Class
	stringClass *Class

	refs  []any // handle -> *JObject, *JString or *Class; 0 is null
	refOf map[any]jni.Object

	fieldIDs  []fieldRef // 0 is the failed lookup
	fieldIDOf map[fieldKey]jni.FieldID
}

type fieldRef struct {
	class *Class
	field InstanceField
}

// fieldKey is keyed by class identity, never by class name: a reloaded class
// with the same name must not see IDs of the old one.
type fieldKey struct {
	class     *Class
	name, sig string
}

// Option configures a Runtime.
type Option func(*Runtime) error

// WithLogger sets the logger for the runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) error {
		if logger == nil {
			return fmt.Errorf("vm: nil logger")
		}
		r.logger = logger
		return nil
	}
}

// WithCheckJNI turns argument checking of field access on or off. When on
// (the default), misuse such as a field ID from another class panics. When
// off, misuse corrupts object state silently, as in an unchecked JVM.
func WithCheckJNI(enabled bool) Option {
	return func(r *Runtime) error {
		r.checked = enabled
		return nil
	}
}

// NewRuntime creates a Runtime loading classes through loader. A nil loader
// serves only the bootstrap classes.
func NewRuntime(loader ClassLoader, options ...Option) (*Runtime, error) {
	if loader == nil {
		loader = NewMemoryClassLoader()
	}
	r := &Runtime{
		loader:    loader,
		checked:   true,
		classes:   make(map[string]*Class),
		refs:      make([]any, 1),
		refOf:     make(map[any]jni.Object),
		fieldIDs:  make([]fieldRef, 1),
		fieldIDOf: make(map[fieldKey]jni.FieldID),
	}
	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	var err error
	if r.objectClass, err = r.bootstrapLocked(objectClassName, ""); err != nil {
		return nil, err
	}
	if r.stringClass, err = r.bootstrapLocked(stringClassName, objectClassName); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) bootstrapLocked(name, super string) (*Class, error) {
	cf, err := classfile.NewBuilder(name).Extends(super).ClassFile()
	if err != nil {
		return nil, fmt.Errorf("vm: bootstrap %s: %w", name, err)
	}
	c, err := r.defineLocked(cf)
	if err != nil {
		return nil, fmt.Errorf("vm: bootstrap %s: %w", name, err)
	}
	return c, nil
}

// LoadClass returns the loaded class with the given name, loading it and its
// superclasses if needed.
func (r *Runtime) LoadClass(name string) (*Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(name, 0)
}

func (r *Runtime) loadLocked(name string, depth int) (*Class, error) {
	if c, ok := r.classes[name]; ok {
		return c, nil
	}
	if depth > maxClassDepth {
		return nil, fmt.Errorf("load %s: class hierarchy deeper than %d (circular?)", name, maxClassDepth)
	}

	cf, err := r.loader.LoadClass(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	got, err := cf.ClassName()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if got != name {
		return nil, fmt.Errorf("load %s: class file defines %s", name, got)
	}
	return r.linkLocked(cf, depth)
}

func (r *Runtime) linkLocked(cf *classfile.ClassFile, depth int) (*Class, error) {
	name, _ := cf.ClassName()
	var super *Class
	if superName := cf.SuperClassName(); superName != "" {
		var err error
		super, err = r.loadLocked(superName, depth+1)
		if err != nil {
			return nil, fmt.Errorf("load %s: super class: %w", name, err)
		}
	} else if name != objectClassName {
		return nil, fmt.Errorf("load %s: no super class", name)
	}

	r.generation++
	c, err := linkClass(cf, super, r.generation)
	if err != nil {
		return nil, err
	}
	r.classes[name] = c
	r.logger.Debug("class loaded", slog.String("class", name), slog.Uint64("generation", c.Generation), slog.Int("fields", len(c.Fields)))
	return c, nil
}

// DefineClass links class bytes directly, without the class loader.
func (r *Runtime) DefineClass(data []byte) (jni.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("define: %w", err)
	}
	c, err := r.defineLocked(cf)
	if err != nil {
		return 0, err
	}
	return jni.Class(r.newRefLocked(c)), nil
}

func (r *Runtime) defineLocked(cf *classfile.ClassFile) (*Class, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, fmt.Errorf("define: %w", err)
	}
	if _, ok := r.classes[name]; ok {
		return nil, fmt.Errorf("define %s: class already loaded", name)
	}
	return r.linkLocked(cf, 0)
}

// UnloadClass unloads the named class and every loaded class extending it.
// Existing instances keep their class; new instances and lookups by name
// see a freshly loaded class.
func (r *Runtime) UnloadClass(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.classes[name]
	if !ok {
		return fmt.Errorf("unload %s: class not loaded", name)
	}
	if c == r.objectClass || c == r.stringClass {
		return fmt.Errorf("unload %s: bootstrap class", name)
	}

	for n, k := range r.classes {
		if !k.IsSubclassOf(c) {
			continue
		}
		delete(r.classes, n)
		k.unloaded = true
		if u, ok := r.loader.(Unloader); ok {
			u.UnloadClass(n)
		}
		r.logger.Debug("class unloaded", slog.String("class", n), slog.Uint64("generation", k.Generation))
	}
	return nil
}

// NewObject creates an instance of the named class with every field zeroed.
func (r *Runtime) NewObject(className string) (jni.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.loadLocked(className, 0)
	if err != nil {
		return 0, fmt.Errorf("new: %w", err)
	}
	if c == r.stringClass {
		return r.newRefLocked(&JString{}), nil
	}
	if c.IsInterface() {
		return 0, fmt.Errorf("new: %s is an interface", className)
	}
	return r.newRefLocked(newObject(c)), nil
}

// NewString creates a java.lang.String.
func (r *Runtime) NewString(s string) jni.String {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.String(r.newRefLocked(&JString{Value: s}))
}

// GoString returns the contents of a java.lang.String.
func (r *Runtime) GoString(s jni.String) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	js, ok := r.refs[r.index(jni.Object(s))].(*JString)
	if !ok {
		return "", fmt.Errorf("vm: handle %d is not a string", s)
	}
	return js.Value, nil
}

// ClassName returns the name of a class handle, or "" if it is not one.
func (r *Runtime) ClassName(cls jni.Class) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.refs[r.index(jni.Object(cls))].(*Class); ok {
		return c.Name
	}
	return ""
}

// Class returns the class behind a class handle.
func (r *Runtime) Class(cls jni.Class) (*Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.refs[r.index(jni.Object(cls))].(*Class)
	return c, ok
}

// IsSameObject reports whether two handles refer to the same object. With
// checking on, a deleted or unknown handle panics; with it off, such a
// handle compares equal to null.
func (r *Runtime) IsSameObject(a, b jni.Object) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked("IsSameObject", a) == r.liveLocked("IsSameObject", b)
}

// liveLocked returns what obj refers to, nil for null.
func (r *Runtime) liveLocked(op string, obj jni.Object) any {
	v := r.refs[r.index(obj)]
	if obj != 0 && v == nil && r.checked {
		panic(fmt.Sprintf("jni: %s: invalid object handle %d", op, obj))
	}
	return v
}

// DeleteLocalRef invalidates a handle. The object itself is unaffected and
// gets a new handle if it is reached again.
func (r *Runtime) DeleteLocalRef(obj jni.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(obj)
	if i == 0 {
		return
	}
	delete(r.refOf, r.refs[i])
	r.refs[i] = nil
}

func (r *Runtime) newRefLocked(v any) jni.Object {
	if h, ok := r.refOf[v]; ok {
		return h
	}
	h := jni.Object(len(r.refs))
	r.refs = append(r.refs, v)
	r.refOf[v] = h
	return h
}

// index maps a handle to its slot in refs; unknown handles map to 0.
func (r *Runtime) index(obj jni.Object) int {
	if obj == 0 || int(obj) >= len(r.refs) {
		return 0
	}
	return int(obj)
}
