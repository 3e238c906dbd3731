// Command jnifields prints the instance field layout of classes: the names
// and signatures native code passes to jni.NewField.
//
//	jnifields [-v] <classpath> <class>...
//
// The classpath is a directory, a .jar or a .jmod. Classes outside it are
// looked up in the JDK's java.base.jmod when one can be found.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/daimatz/gojni/pkg/classfile"
	"github.com/daimatz/gojni/pkg/vm"
)

func findJmodPath() string {
	// 1. Explicit env var
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	// 2. JAVA_HOME
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	// 3. Glob fallback
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

func newLoader(classPath, jmodPath string) vm.ClassLoader {
	var bootstrap vm.ClassLoader
	if jmodPath != "" {
		bootstrap = vm.NewArchiveClassLoader(jmodPath)
	}
	switch strings.ToLower(filepath.Ext(classPath)) {
	case ".jar", ".jmod", ".zip":
		chain := chainLoader{vm.NewArchiveClassLoader(classPath)}
		if bootstrap != nil {
			chain = append(chain, bootstrap)
		}
		return chain
	}
	return vm.NewDirClassLoader(classPath, bootstrap)
}

// chainLoader tries each loader in turn until one has the class.
type chainLoader []vm.ClassLoader

func (c chainLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	var err error
	for _, l := range c {
		var cf *classfile.ClassFile
		cf, err = l.LoadClass(name)
		if err == nil || !errors.Is(err, vm.ErrClassNotFound) {
			return cf, err
		}
	}
	return nil, err
}

func printLayout(w io.Writer, c *vm.Class) {
	super := ""
	if c.Super != nil {
		super = " extends " + c.Super.Name
	}
	fmt.Fprintf(w, "%s%s\n", c.Name, super)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range c.Fields {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", f.Slot, f.Name, f.Descriptor, f.Owner)
	}
	tw.Flush()
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jnifields", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "log class loading")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fmt.Fprintf(stderr, "Usage: jnifields [-v] <classpath> <class>...\n")
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	jmodPath := findJmodPath()
	if jmodPath == "" {
		logger.Warn("java.base.jmod not found; only classes on the classpath can be resolved. Set JAVA_HOME or JAVA_BASE_JMOD.")
	}

	rt, err := vm.NewRuntime(newLoader(fs.Arg(0), jmodPath), vm.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	status := 0
	for _, name := range fs.Args()[1:] {
		c, err := rt.LoadClass(strings.ReplaceAll(name, ".", "/"))
		if err != nil {
			fmt.Fprintf(stderr, "Error loading %s: %v\n", name, err)
			status = 1
			continue
		}
		printLayout(stdout, c)
	}
	return status
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
