package bootstrap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"martianoff/lyra/internal/semantic"
)

const (
	// SourceExt is the Lyra source file extension.
	SourceExt = ".lyra"
	// TestSuffix marks test-only files, excluded from compilation.
	TestSuffix = "_test" + SourceExt
	// ModuleExt is the compiled module file extension.
	ModuleExt = ".lc"

	stdlibMarker = "/stdlib/"
)

// ParseDir walks root recursively and registers every Lyra source file
// with the Database. Test files are skipped. Registry paths use forward
// slashes regardless of host convention; when a path contains a
// "stdlib" directory the registry path starts below it, otherwise it is
// taken relative to root. Returns the registered package paths, sorted.
func ParseDir(db *Database, root string) ([]string, error) {
	pkgs := make(map[string]bool)
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SourceExt) {
			return nil
		}
		if strings.HasSuffix(entry.Name(), TestSuffix) {
			return nil
		}
		text, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		reg, err := registryPath(root, p)
		if err != nil {
			return err
		}
		db.SetSource(reg, string(text))
		pkgs[filepath.ToSlash(filepath.Dir(reg))] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	names := make([]string, 0, len(pkgs))
	for pkg := range pkgs {
		names = append(names, pkg)
	}
	sort.Strings(names)
	return names, nil
}

func registryPath(root, p string) (string, error) {
	norm := filepath.ToSlash(p)
	if i := strings.Index(norm, stdlibMarker); i >= 0 {
		return norm[i+len(stdlibMarker):], nil
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// InferStdlibDir registers every package under root and analyzes each
// one against the configured preludes. The first failing package stops
// the run.
func InferStdlibDir(db *Database, root string) (map[string]*semantic.PackageExports, map[string]*semantic.Package, error) {
	pkgs, err := ParseDir(db, root)
	if err != nil {
		return nil, nil, err
	}

	exports := make(map[string]*semantic.PackageExports, len(pkgs))
	sems := make(map[string]*semantic.Package, len(pkgs))
	for _, pkg := range pkgs {
		exp, sem, err := db.SemanticPackage(pkg)
		if err != nil {
			return nil, nil, fmt.Errorf("analyzing package %q: %w", pkg, err)
		}
		exports[pkg] = exp
		sems[pkg] = sem
	}
	return exports, sems, nil
}

// CompileStdlib analyzes the source tree under srcDir and writes one
// compiled module per package under outDir, mirroring package paths
// with the module extension. With vectorize set, each package's
// functions get their columnar alternates attached before encoding.
func CompileStdlib(db *Database, srcDir, outDir string, vectorize bool) error {
	exports, sems, err := InferStdlibDir(db, srcDir)
	if err != nil {
		return err
	}

	pkgs := make([]string, 0, len(exports))
	for pkg := range exports {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	for _, pkg := range pkgs {
		sem, ok := sems[pkg]
		if !ok || sem == nil {
			return fmt.Errorf("compiled code missing for package %q", pkg)
		}
		if vectorize {
			if err := semantic.VectorizePackage(sem); err != nil {
				return fmt.Errorf("vectorizing package %q: %w", pkg, err)
			}
		}

		m := &Module{PolyType: exports[pkg].Typ(), Code: sem}
		out := filepath.Join(outDir, filepath.FromSlash(pkg)+ModuleExt)
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := m.Encode(f); err != nil {
			f.Close()
			return fmt.Errorf("writing module for %q: %w", pkg, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Debug("compiled package", "pkg", pkg, "out", out)
	}
	return nil
}
