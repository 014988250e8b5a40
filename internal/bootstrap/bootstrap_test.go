package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, text := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	}
}

func TestParseDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "stdlib")
	writeTree(t, root, map[string]string{
		"universe/universe.lyra":        "package universe\nx = 1\n",
		"universe/universe_test.lyra":   "package universe\nbroken =\n",
		"internal/boolean/boolean.lyra": "package boolean\nbuiltin t : bool\n",
		"universe/notes.txt":            "not source",
	})

	db := NewDatabase(Config{})
	pkgs, err := ParseDir(db, root)
	require.NoError(t, err)

	// Sorted package paths, slash-separated regardless of host
	// convention, rooted below the stdlib marker.
	assert.Equal(t, []string{"internal/boolean", "universe"}, pkgs)

	// Test files and non-source files are not registered.
	assert.Equal(t, []string{"universe/universe.lyra"}, db.PackageFiles("universe"))
}

func TestParseDirWithoutMarker(t *testing.T) {
	root := filepath.Join(t.TempDir(), "src")
	writeTree(t, root, map[string]string{
		"a/a.lyra": "package a\nx = 1\n",
	})

	db := NewDatabase(Config{})
	pkgs, err := ParseDir(db, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, pkgs)
}

func TestInferStdlibDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "stdlib")
	writeTree(t, root, map[string]string{
		"a/a.lyra": "package a\nf = (x) => x\n",
		"b/b.lyra": "package b\nimport \"a\"\nbuiltin x : int\ny = a.f(x: x)\n",
	})

	db := NewDatabase(Config{})
	exports, sems, err := InferStdlibDir(db, root)
	require.NoError(t, err)
	require.Len(t, exports, 2)
	require.Len(t, sems, 2)

	y, ok := exports["b"].Lookup("y")
	require.True(t, ok)
	assert.Equal(t, "int", y.String())
}

func TestCompileStdlibRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "stdlib")
	out := filepath.Join(tmp, "build")
	writeTree(t, src, map[string]string{
		"a/a.lyra":     "package a\nid = (x) => x\nn = id(x: 1)\n",
		"sub/b/b.lyra": "package b\nv = 1.5\n",
	})

	db := NewDatabase(Config{})
	require.NoError(t, CompileStdlib(db, src, out, false))

	// One module per package, mirroring the package layout.
	assert.FileExists(t, filepath.Join(out, "a"+ModuleExt))
	assert.FileExists(t, filepath.Join(out, "sub", "b"+ModuleExt))

	importer, err := Stdlib(out)
	require.NoError(t, err)

	id, ok := importer.Symbol("a", "id")
	require.True(t, ok)
	assert.Equal(t, "a", id.Package)

	pt, err := importer.Import("a")
	require.NoError(t, err)
	assert.Contains(t, pt.String(), "id: (x: A) => A")
	assert.Contains(t, pt.String(), "n: int")

	_, err = importer.Import("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid import path "missing"`)
}

func TestCompileStdlibVectorize(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "stdlib")
	out := filepath.Join(tmp, "build")
	writeTree(t, src, map[string]string{
		"a/a.lyra": "package a\nf = (r) => ({x: r.x})\n",
	})

	db := NewDatabase(Config{})
	require.NoError(t, CompileStdlib(db, src, out, true))

	f, err := os.Open(filepath.Join(out, "a"+ModuleExt))
	require.NoError(t, err)
	defer f.Close()

	m, err := DecodeModule(f)
	require.NoError(t, err)
	require.NotNil(t, m.Code)
}

func TestCompileStdlibVectorizeFailureStopsRun(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "stdlib")
	writeTree(t, src, map[string]string{
		"a/a.lyra": "package a\nf = (a, b) => a\n",
	})

	db := NewDatabase(Config{})
	err := CompileStdlib(db, src, filepath.Join(tmp, "build"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to vectorize")
}
