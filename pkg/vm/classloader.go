package vm

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/daimatz/gojni/pkg/classfile"
	"github.com/daimatz/gojni/pkg/syserr"
)

// ErrClassNotFound is wrapped by loaders when they have no such class.
var ErrClassNotFound = errors.New("class not found")

// ClassLoader loads class files by internal class name.
type ClassLoader interface {
	LoadClass(name string) (*classfile.ClassFile, error)
}

// Unloader is implemented by loaders that keep loaded classes; UnloadClass
// makes the next LoadClass read the class again.
type Unloader interface {
	UnloadClass(name string)
}

var jmodMagic = []byte("JM\x01\x00")

// ArchiveClassLoader loads classes from a jar or a JDK jmod file.
type ArchiveClassLoader struct {
	Path    string
	Cache   map[string]*classfile.ClassFile
	prefix  string
	entries map[string]*zip.File
}

// NewArchiveClassLoader creates a loader for the archive at path.
func NewArchiveClassLoader(path string) *ArchiveClassLoader {
	return &ArchiveClassLoader{
		Path:  path,
		Cache: make(map[string]*classfile.ClassFile),
	}
}

func (cl *ArchiveClassLoader) open() error {
	if cl.entries != nil {
		return nil
	}

	data, err := os.ReadFile(cl.Path)
	if err != nil {
		return syserr.Check("archive: reading "+cl.Path, err)
	}
	if bytes.HasPrefix(data, jmodMagic) {
		data = data[len(jmodMagic):]
		cl.prefix = "classes/"
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("archive: opening %s: %w", cl.Path, err)
	}
	cl.entries = make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		cl.entries[f.Name] = f
	}
	return nil
}

func (cl *ArchiveClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	if cf, ok := cl.Cache[name]; ok {
		return cf, nil
	}
	if err := cl.open(); err != nil {
		return nil, err
	}

	target := cl.prefix + name + ".class"
	file, ok := cl.entries[target]
	if !ok {
		return nil, fmt.Errorf("archive: %s in %s: %w", name, cl.Path, ErrClassNotFound)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %w", target, err)
	}
	defer rc.Close()

	cf, err := classfile.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: parsing %s: %w", name, err)
	}
	cl.Cache[name] = cf
	return cf, nil
}

func (cl *ArchiveClassLoader) UnloadClass(name string) {
	delete(cl.Cache, name)
}

// DirClassLoader loads classes from a directory, delegating to the parent
// first.
type DirClassLoader struct {
	Dir    string
	Parent ClassLoader
	Cache  map[string]*classfile.ClassFile
}

// NewDirClassLoader creates a new DirClassLoader. parent may be nil.
func NewDirClassLoader(dir string, parent ClassLoader) *DirClassLoader {
	return &DirClassLoader{
		Dir:    dir,
		Parent: parent,
		Cache:  make(map[string]*classfile.ClassFile),
	}
}

func (cl *DirClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	if cf, ok := cl.Cache[name]; ok {
		return cf, nil
	}
	if cl.Parent != nil {
		cf, err := cl.Parent.LoadClass(name)
		if err == nil {
			return cf, nil
		}
		if !errors.Is(err, ErrClassNotFound) {
			return nil, err
		}
	}

	path := filepath.Join(cl.Dir, filepath.FromSlash(name)+".class")
	cf, err := classfile.ParseFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("dir: %s in %s: %w", name, cl.Dir, ErrClassNotFound)
	}
	if err != nil {
		return nil, syserr.Check("dir: loading "+path, err)
	}
	cl.Cache[name] = cf
	return cf, nil
}

func (cl *DirClassLoader) UnloadClass(name string) {
	delete(cl.Cache, name)
	if u, ok := cl.Parent.(Unloader); ok {
		u.UnloadClass(name)
	}
}

// MemoryClassLoader serves class bytes defined at run time. Defining a name
// again replaces its bytes; the runtime sees them after it unloads the old
// class.
type MemoryClassLoader struct {
	classes map[string][]byte
}

// NewMemoryClassLoader creates an empty MemoryClassLoader.
func NewMemoryClassLoader() *MemoryClassLoader {
	return &MemoryClassLoader{classes: make(map[string][]byte)}
}

// Define registers class bytes under the class's own name.
func (cl *MemoryClassLoader) Define(data []byte) (string, error) {
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("memory: %w", err)
	}
	name, err := cf.ClassName()
	if err != nil {
		return "", fmt.Errorf("memory: %w", err)
	}
	cl.classes[name] = bytes.Clone(data)
	return name, nil
}

func (cl *MemoryClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	data, ok := cl.classes[name]
	if !ok {
		return nil, fmt.Errorf("memory: %s: %w", name, ErrClassNotFound)
	}
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("memory: parsing %s: %w", name, err)
	}
	return cf, nil
}
