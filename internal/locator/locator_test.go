package locator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/fsops"
)

// writeTree creates every relative path under root as a small file.
func writeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("-- "+p+"\n"), 0644))
	}
}

func paths(files []SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestResolve_RecursivePattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/x.src", "a/b/y.src", "c/z.src", "c/readme.txt")

	l := New(fsops.NewRealFS())
	files, err := l.Resolve(root, "**/*.src")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a", "b", "y.src"),
		filepath.Join(root, "a", "x.src"),
		filepath.Join(root, "c", "z.src"),
	}, paths(files))
	for _, f := range files {
		assert.Equal(t, "**/*.src", f.Pattern)
		assert.True(t, filepath.IsAbs(f.Path))
	}
}

func TestResolve_DoubleStarMatchesZeroDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"src/utils/util_pkg.vhd",
		"src/utils/fifo/fifo.vhd",
		"src/i2c/i2c_master.vhd",
	)

	l := New(fsops.NewRealFS())
	files, err := l.Resolve(root, "src/utils/**/*.vhd")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "src", "utils", "fifo", "fifo.vhd"),
		filepath.Join(root, "src", "utils", "util_pkg.vhd"),
	}, paths(files))
}

func TestResolve_EmptyMatchIsNotAnError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/top.vhd")

	l := New(fsops.NewRealFS())
	files, err := l.Resolve(root, "tb/**/*.vhd")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestResolve_SkipsDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "odd.vhd/inner.vhd")

	l := New(fsops.NewRealFS())
	files, err := l.Resolve(root, "**/*.vhd")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "odd.vhd", "inner.vhd")}, paths(files))
}

func TestResolve_SymlinkedDirectoryCountedOnce(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/real/a.vhd", "src/real/b.vhd", "src/other/c.vhd")
	if err := os.Symlink("real", filepath.Join(root, "src", "alias")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	l := New(fsops.NewRealFS())
	files, err := l.Resolve(root, "src/**/*.vhd")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "src", "alias", "a.vhd"),
		filepath.Join(root, "src", "alias", "b.vhd"),
		filepath.Join(root, "src", "other", "c.vhd"),
	}, paths(files))

	// Naming the real directory directly still finds its files.
	files, err = l.Resolve(root, "src/real/*.vhd")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestResolve_Errors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/top.vhd")
	l := New(fsops.NewRealFS())

	tests := []struct {
		name    string
		root    string
		pattern string
		want    error
	}{
		{name: "missing root", root: filepath.Join(root, "nope"), pattern: "**/*.vhd", want: cfgerr.ErrPath},
		{name: "root is a file", root: filepath.Join(root, "src", "top.vhd"), pattern: "*.vhd", want: cfgerr.ErrPath},
		{name: "empty pattern", root: root, pattern: "  ", want: cfgerr.ErrConfiguration},
		{name: "escaping pattern", root: root, pattern: "../**/*.vhd", want: cfgerr.ErrConfiguration},
		{name: "absolute pattern outside root", root: filepath.Join(root, "src"), pattern: filepath.Join(root, "*.vhd"), want: cfgerr.ErrConfiguration},
		{name: "malformed pattern", root: root, pattern: "src/[.vhd", want: cfgerr.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := l.Resolve(tt.root, tt.pattern)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, files)
		})
	}
}

func TestResolve_AbsolutePatternUnderRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "tb/i2c/tb_i2c.vhd")

	l := New(fsops.NewRealFS())
	pattern := filepath.Join(root, "tb", "i2c", "**", "*.vhd")
	files, err := l.Resolve(root, pattern)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "tb", "i2c", "tb_i2c.vhd"), files[0].Path)
	assert.Equal(t, pattern, files[0].Pattern)
}

// shuffledFS serves a MapFS but lists directories in reverse order.
type shuffledFS struct {
	fstest.MapFS
}

func (s shuffledFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := s.MapFS.ReadDir(name)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}

// memFS is an fsops.FS over an in-memory tree mounted at a fixed root.
type memFS struct {
	root string
	fsys fs.FS
}

func (m memFS) Stat(path string) (os.FileInfo, error) {
	if path != m.root {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return fs.Stat(m.fsys, ".")
}

func (m memFS) Exists(path string) (bool, error)         { return path == m.root, nil }
func (m memFS) EvalSymlinks(path string) (string, error) { return path, nil }
func (m memFS) DirFS(string) fs.FS                       { return m.fsys }
func (m memFS) AtomicWrite(string, []byte, os.FileMode) error {
	return fs.ErrPermission
}

func TestResolve_OrderIndependentOfDirectoryIteration(t *testing.T) {
	tree := fstest.MapFS{
		"a/x.src":   {Data: []byte("x")},
		"a/b/y.src": {Data: []byte("y")},
		"c/z.src":   {Data: []byte("z")},
	}
	root, err := filepath.Abs(string(filepath.Separator) + "proj")
	require.NoError(t, err)

	sorted, err := New(memFS{root: root, fsys: tree}).Resolve(root, "**/*.src")
	require.NoError(t, err)
	reversed, err := New(memFS{root: root, fsys: shuffledFS{tree}}).Resolve(root, "**/*.src")
	require.NoError(t, err)

	assert.Len(t, sorted, 3)
	assert.Equal(t, sorted, reversed)
}

func TestResolveAll_PreservesQueryOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/utils/u.vhd", "src/i2c/i.vhd", "tb/i2c/tb.vhd")

	l := New(fsops.NewRealFS())
	queries := []Query{
		{Root: root, Pattern: "tb/**/*.vhd"},
		{Root: root, Pattern: "src/utils/**/*.vhd"},
		{Root: root, Pattern: "missing/**/*.vhd"},
		{Root: root, Pattern: "src/**/*.vhd"},
	}

	results, err := l.ResolveAll(context.Background(), queries, 3)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, []string{filepath.Join(root, "tb", "i2c", "tb.vhd")}, paths(results[0]))
	assert.Equal(t, []string{filepath.Join(root, "src", "utils", "u.vhd")}, paths(results[1]))
	assert.Empty(t, results[2])
	assert.Equal(t, []string{
		filepath.Join(root, "src", "i2c", "i.vhd"),
		filepath.Join(root, "src", "utils", "u.vhd"),
	}, paths(results[3]))
}

func TestResolveAll_FailsFast(t *testing.T) {
	root := t.TempDir()
	l := New(fsops.NewRealFS())

	_, err := l.ResolveAll(context.Background(), []Query{
		{Root: root, Pattern: "*.vhd"},
		{Root: filepath.Join(root, "gone"), Pattern: "*.vhd"},
	}, 0)
	assert.ErrorIs(t, err, cfgerr.ErrPath)
}

func TestResolveAll_ReportsEarliestFailure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/u.vhd")
	l := New(fsops.NewRealFS())

	queries := []Query{{Root: root, Pattern: "src/*.vhd"}}
	for _, name := range []string{"first", "second", "third", "fourth", "fifth", "sixth"} {
		queries = append(queries, Query{Root: filepath.Join(root, name), Pattern: "*.vhd"})
	}

	for i := 0; i < 20; i++ {
		_, err := l.ResolveAll(context.Background(), queries, len(queries))
		var pathErr *cfgerr.PathError
		require.ErrorAs(t, err, &pathErr)
		assert.Equal(t, filepath.Join(root, "first"), pathErr.Root)
	}
}

func TestResolveAll_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.vhd")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fsops.NewRealFS()).ResolveAll(ctx, []Query{{Root: root, Pattern: "*.vhd"}}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveAll_Empty(t *testing.T) {
	results, err := New(fsops.NewRealFS()).ResolveAll(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
