package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/gojni/pkg/classfile"
)

func writeZip(t *testing.T, path string, header []byte, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(header)
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// fakeJDK writes a java.base.jmod with one class and points the command at it.
func fakeJDK(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "java.base.jmod")
	writeZip(t, path, []byte("JM\x01\x00"), map[string][]byte{
		"classes/java/lang/Number.class": classfile.NewBuilder("java/lang/Number").
			Field(classfile.AccStatic|classfile.AccFinal, "serialVersionUID", "J").Bytes(),
	})
	t.Setenv("JAVA_BASE_JMOD", path)
}

func TestRunDirectory(t *testing.T) {
	fakeJDK(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "org", "example"), 0o755))
	data := classfile.NewBuilder("org/example/Money").Extends("java/lang/Number").
		Field(classfile.AccPrivate, "cents", "J").
		Field(classfile.AccPrivate, "currency", "Ljava/lang/String;").
		Bytes()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "org", "example", "Money.class"), data, 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{dir, "org.example.Money"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	want := "org/example/Money extends java/lang/Number\n" +
		"  0  cents     J                   org/example/Money\n" +
		"  1  currency  Ljava/lang/String;  org/example/Money\n"
	assert.Equal(t, want, stdout.String())
}

func TestRunJar(t *testing.T) {
	fakeJDK(t)
	jar := filepath.Join(t.TempDir(), "app.jar")
	writeZip(t, jar, nil, map[string][]byte{
		"org/example/Flag.class": classfile.NewBuilder("org/example/Flag").Field(0, "on", "Z").Bytes(),
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-v", jar, "org/example/Flag", "org/example/Missing"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "org/example/Flag extends java/lang/Object\n")
	assert.Contains(t, stderr.String(), "Error loading org/example/Missing")
	assert.Contains(t, stderr.String(), `msg="class loaded" class=org/example/Flag`)
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"only-classpath"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: jnifields")
}
