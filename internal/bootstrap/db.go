package bootstrap

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"martianoff/lyra/internal/ast"
	"martianoff/lyra/internal/parser"
	"martianoff/lyra/internal/semantic"
	"martianoff/lyra/internal/types"
	"martianoff/lyra/lyraerr"
)

// opKey identifies one in-flight demand: which operation, for which
// package path. The demand stack of these keys is how reentrancy (an
// import chain returning to a package already being analyzed) is caught
// before it recurses without bound.
type opKey struct {
	op   string
	path string
}

const (
	opSemantic = "semantic"
	opType     = "packageType"
)

// Database is the demand-driven analysis orchestrator. Sources are
// registered up front; AST packages, preludes, and semantic packages are
// computed lazily on first demand and cached for the Database's
// lifetime. Evaluation is single-threaded and pull-based: analyzing a
// package synchronously demands its dependencies through the Database's
// own Importer implementation.
//
// The registry mutex only guards source registration, so the registry
// can be populated from multiple goroutines before queries begin.
// Re-registering a source after analysis has started does not invalidate
// cached results and is unsupported.
type Database struct {
	mu       sync.Mutex
	sources  map[string]string
	packages map[string]bool

	config Config

	stack []opKey

	astCache    map[string]*astResult
	semCache    map[string]*semResult
	internalEnv *preludeResult
	fullEnv     *preludeResult
}

type astResult struct {
	pkg *ast.Package
	err error
}

type semResult struct {
	exports *semantic.PackageExports
	pkg     *semantic.Package
	err     error
}

type preludeResult struct {
	exports *semantic.PackageExports
	err     error
}

func NewDatabase(config Config) *Database {
	return &Database{
		sources:  make(map[string]string),
		packages: make(map[string]bool),
		config:   config,
		astCache: make(map[string]*astResult),
		semCache: make(map[string]*semResult),
	}
}

// SetUsePrelude toggles prelude use for subsequent analyses. Call it
// before the first query; cached results are not recomputed.
func (d *Database) SetUsePrelude(use bool) {
	d.config.UsePrelude = use
}

func (d *Database) SetAnalyzerConfig(config semantic.AnalyzerConfig) {
	d.config.Analyzer = config
}

// SetSource registers one file's text under its registry path. The
// owning package path is the registry path with its final segment
// removed.
func (d *Database) SetSource(fpath, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources[fpath] = text
	d.packages[path.Dir(fpath)] = true
}

// Source returns previously registered text. Querying a path that was
// never registered is caller error.
func (d *Database) Source(fpath string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	text, ok := d.sources[fpath]
	if !ok {
		panic(fmt.Sprintf("source %q was never registered", fpath))
	}
	return text
}

func (d *Database) HasPackage(pkgpath string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.packages[pkgpath]
}

// PackageFiles returns the registry paths of the package's direct
// children, sorted. Files of nested packages are not included. Querying
// a package with no registered files is caller error.
func (d *Database) PackageFiles(pkgpath string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	prefix := pkgpath + "/"
	var files []string
	for fpath := range d.sources {
		rest, ok := strings.CutPrefix(fpath, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		files = append(files, fpath)
	}
	if len(files) == 0 {
		panic(fmt.Sprintf("no files registered for package %q", pkgpath))
	}
	sort.Strings(files)
	return files
}

// ASTPackage parses every file of the package into one AST unit,
// memoized. An unknown package path yields (nil, nil). The package's
// declared name is taken from the first file, in sorted file order; a
// file without a package clause falls back to the path's last segment.
func (d *Database) ASTPackage(pkgpath string) (*ast.Package, error) {
	if cached, ok := d.astCache[pkgpath]; ok {
		return cached.pkg, cached.err
	}
	if !d.HasPackage(pkgpath) {
		d.astCache[pkgpath] = &astResult{}
		return nil, nil
	}

	pkg := &ast.Package{Path: pkgpath}
	for _, fpath := range d.PackageFiles(pkgpath) {
		src := d.Source(fpath)
		file, err := parser.ParseFile(fpath, src)
		if err != nil {
			fe := parseErrors(fpath, src, err)
			d.astCache[pkgpath] = &astResult{err: fe}
			return nil, fe
		}
		pkg.Files = append(pkg.Files, file)
	}
	pkg.Name = path.Base(pkgpath)
	if len(pkg.Files) > 0 && pkg.Files[0].Package != "" {
		pkg.Name = pkg.Files[0].Package
	}

	d.astCache[pkgpath] = &astResult{pkg: pkg}
	return pkg, nil
}

func parseErrors(fpath, src string, err error) *lyraerr.FileErrors {
	fe := &lyraerr.FileErrors{File: fpath, Source: src}
	multi, ok := err.(*lyraerr.MultiError)
	if !ok {
		fe.Append(lyraerr.Position{}, err.Error())
		return fe
	}
	for _, e := range multi.Errors {
		if se, ok := e.(*lyraerr.SyntaxError); ok {
			fe.Append(se.Pos, se.Msg)
			continue
		}
		fe.Append(lyraerr.Position{}, e.Error())
	}
	return fe
}

// SemanticPackage analyzes the package, memoized: select a prelude
// environment, obtain the AST, and run inference with the Database
// itself as the import resolver. A recoverable inference failure is
// returned as a *semantic.AnalysisError carrying partial exports for
// diagnostics; an import cycle is returned as non-recoverable
// *lyraerr.FileErrors naming the ordered cycle.
func (d *Database) SemanticPackage(pkgpath string) (*semantic.PackageExports, *semantic.Package, error) {
	if cached, ok := d.semCache[pkgpath]; ok {
		return cached.exports, cached.pkg, cached.err
	}

	key := opKey{op: opSemantic, path: pkgpath}
	if d.onStack(key) {
		cycle := &semantic.ImportCycleError{Path: pkgpath, Cycle: d.cycleChain(key)}
		fe := &lyraerr.FileErrors{File: pkgpath}
		fe.Append(lyraerr.Position{}, cycle.Error())
		return nil, nil, fe
	}
	d.stack = append(d.stack, key)
	defer func() { d.stack = d.stack[:len(d.stack)-1] }()

	env, err := d.preludeFor(pkgpath)
	if err != nil {
		res := &semResult{err: err}
		d.semCache[pkgpath] = res
		return nil, nil, err
	}

	pkg, err := d.ASTPackage(pkgpath)
	if err == nil && pkg == nil {
		err = fmt.Errorf("package %q not found", pkgpath)
	}
	if err != nil {
		res := &semResult{err: err}
		d.semCache[pkgpath] = res
		return nil, nil, err
	}

	analyzer := semantic.NewAnalyzer(env, d, d.config.Analyzer)
	exports, sem, err := analyzer.AnalyzeASTPackage(pkg)
	res := &semResult{exports: exports, pkg: sem, err: err}
	d.semCache[pkgpath] = res
	return exports, sem, err
}

// preludeFor selects the analysis environment: none for internal-prelude
// members (the prelude cannot depend on itself) or when preludes are
// disabled; the internal prelude for full-prelude members and the
// foundational allow-list; the full prelude for everything else.
func (d *Database) preludeFor(pkgpath string) (*semantic.PackageExports, error) {
	switch {
	case !d.config.UsePrelude, contains(d.config.InternalPrelude, pkgpath):
		return semantic.NewPackageExports(), nil
	case contains(d.config.FullPrelude, pkgpath), contains(d.config.InternalOnly, pkgpath):
		return d.InternalPrelude()
	default:
		return d.Prelude()
	}
}

// InternalPrelude builds the minimal prelude, memoized.
func (d *Database) InternalPrelude() (*semantic.PackageExports, error) {
	if d.internalEnv == nil {
		exports, err := d.buildPrelude(d.config.InternalPrelude)
		d.internalEnv = &preludeResult{exports: exports, err: err}
	}
	return d.internalEnv.exports, d.internalEnv.err
}

// Prelude builds the full prelude, memoized.
func (d *Database) Prelude() (*semantic.PackageExports, error) {
	if d.fullEnv == nil {
		exports, err := d.buildPrelude(d.config.FullPrelude)
		d.fullEnv = &preludeResult{exports: exports, err: err}
	}
	return d.fullEnv.exports, d.fullEnv.err
}

// buildPrelude analyzes each listed package in order and merges its
// exports into the accumulator. Order matters: later entries may use
// exports already merged from earlier ones. A prelude package that fails
// to resolve stops the whole run.
func (d *Database) buildPrelude(list []string) (*semantic.PackageExports, error) {
	acc := semantic.NewPackageExports()
	for _, name := range list {
		exports, _, err := d.SemanticPackage(name)
		if err != nil {
			return nil, fmt.Errorf("prelude package %q: %w", name, err)
		}
		acc.CopyBindingsFrom(exports)
	}
	return acc, nil
}

// PackageType returns the package's overall record type. This is the
// narrow entry point used by import resolution: when it re-enters a
// path already being demanded, it reports a plain invalid-import-path
// error instead of duplicating a full cycle diagnostic.
func (d *Database) PackageType(pkgpath string) (types.PolyType, error) {
	key := opKey{op: opType, path: pkgpath}
	if d.onStack(key) {
		return types.PolyType{}, &semantic.InvalidImportPathError{Path: pkgpath}
	}
	d.stack = append(d.stack, key)
	defer func() { d.stack = d.stack[:len(d.stack)-1] }()

	exports, _, err := d.SemanticPackage(pkgpath)
	if err != nil {
		return types.PolyType{}, err
	}
	return exports.Typ(), nil
}

// Import implements semantic.Importer.
func (d *Database) Import(pkgpath string) (types.PolyType, error) {
	return d.PackageType(pkgpath)
}

// Symbol implements semantic.Importer.
func (d *Database) Symbol(pkgpath, name string) (semantic.Symbol, bool) {
	exports, _, err := d.SemanticPackage(pkgpath)
	if err != nil {
		return semantic.Symbol{}, false
	}
	return exports.LookupSymbol(name)
}

func (d *Database) onStack(key opKey) bool {
	for _, have := range d.stack {
		if have == key {
			return true
		}
	}
	return false
}

// cycleChain renders the demand stack into the ordered package chain of
// an import cycle: take the stack plus the re-entering key, keep only
// entries of the same operation, and drop the final duplicate.
func (d *Database) cycleChain(entering opKey) []string {
	var chain []string
	for _, key := range d.stack {
		if key.op == entering.op {
			chain = append(chain, key.path)
		}
	}
	return chain
}
