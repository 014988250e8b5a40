package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"martianoff/lyra/internal/semantic"
	"martianoff/lyra/internal/types"
)

// FileImporter resolves imports against a directory of compiled
// modules, the output of CompileStdlib. Loaded packages are cached.
type FileImporter struct {
	dir   string
	cache map[string]*semantic.PackageExports
}

func NewFileImporter(dir string) *FileImporter {
	return &FileImporter{dir: dir, cache: make(map[string]*semantic.PackageExports)}
}

func (i *FileImporter) load(pkgpath string) (*semantic.PackageExports, error) {
	if exports, ok := i.cache[pkgpath]; ok {
		return exports, nil
	}

	f, err := os.Open(filepath.Join(i.dir, filepath.FromSlash(pkgpath)+ModuleExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &semantic.InvalidImportPathError{Path: pkgpath}
		}
		return nil, err
	}
	defer f.Close()

	m, err := DecodeModule(f)
	if err != nil {
		return nil, fmt.Errorf("loading module %q: %w", pkgpath, err)
	}
	exports, err := semantic.ExportsFromRecord(pkgpath, m.PolyType)
	if err != nil {
		return nil, fmt.Errorf("loading module %q: %w", pkgpath, err)
	}
	i.cache[pkgpath] = exports
	return exports, nil
}

// Import implements semantic.Importer.
func (i *FileImporter) Import(pkgpath string) (types.PolyType, error) {
	exports, err := i.load(pkgpath)
	if err != nil {
		return types.PolyType{}, err
	}
	return exports.Typ(), nil
}

// Symbol implements semantic.Importer.
func (i *FileImporter) Symbol(pkgpath, name string) (semantic.Symbol, bool) {
	exports, err := i.load(pkgpath)
	if err != nil {
		return semantic.Symbol{}, false
	}
	return exports.LookupSymbol(name)
}

// Stdlib returns an importer over a compiled standard library rooted at
// dir, verifying the directory exists up front.
func Stdlib(dir string) (*FileImporter, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return NewFileImporter(dir), nil
}
