package semantic

import (
	"fmt"
	"path"

	"martianoff/lyra/internal/ast"
	"martianoff/lyra/internal/types"
	"martianoff/lyra/lyraerr"
)

// Importer resolves an import path to the imported package's overall
// type. The orchestrator implements it by re-entering its own analysis,
// which is how inter-package dependencies are demanded.
type Importer interface {
	Import(path string) (types.PolyType, error)
	Symbol(path, name string) (Symbol, bool)
}

// AnalyzerConfig carries feature toggles threaded through analysis.
type AnalyzerConfig struct {
	Features []string
}

// Analyzer type-checks one AST package against an environment seeded
// with prelude exports, resolving imports through an Importer.
type Analyzer struct {
	prelude  *PackageExports
	importer Importer
	config   AnalyzerConfig
}

func NewAnalyzer(prelude *PackageExports, importer Importer, config AnalyzerConfig) *Analyzer {
	if prelude == nil {
		prelude = NewPackageExports()
	}
	return &Analyzer{prelude: prelude, importer: importer, config: config}
}

// AnalyzeASTPackage infers types for every binding in the package and
// returns its exports together with its semantic form. Failures are
// reported as an *AnalysisError whose FileErrors bundle holds every
// diagnostic; when partial results exist they ride along on the error.
func (a *Analyzer) AnalyzeASTPackage(pkg *ast.Package) (*PackageExports, *Package, error) {
	inf := &inferencer{
		f:   types.NewFresher(),
		sub: types.Substitution{},
		env: newScope(nil),
		pkg: pkg.Path,
	}
	a.prelude.Bindings(func(sym Symbol, pt types.PolyType) {
		inf.env.bind(sym.Name, binding{sym: sym, poly: pt})
	})

	exports := NewPackageExports()
	semPkg := &Package{Path: pkg.Path, Name: pkg.Name}
	var diags []lyraerr.Diagnostic
	errFile := ""

	for _, file := range pkg.Files {
		inf.diags = nil
		semFile := &File{Name: file.Name}

		for _, imp := range file.Imports {
			pt, err := a.importer.Import(imp.Path)
			if err != nil {
				inf.errorf(imp.P, "%s", err)
				continue
			}
			local := path.Base(imp.Path)
			inf.env.bind(local, binding{sym: NewSymbol(local, imp.Path), poly: pt})
		}

		for _, stmt := range file.Body {
			switch s := stmt.(type) {
			case *ast.BuiltinStmt:
				pt, err := ConvertTypeExpr(s.Ty)
				if err != nil {
					inf.errorf(s.P, "builtin %s: %s", s.Name, err)
					continue
				}
				sym := NewSymbol(s.Name, pkg.Path)
				inf.env.bind(s.Name, binding{sym: sym, poly: pt})
				exports.Add(sym, pt)
				semFile.Body = append(semFile.Body, &Builtin{P: s.P, Name: sym, Typ: pt})
			case *ast.VariableAssignment:
				init, err := inf.inferExpr(s.Init)
				if err != nil {
					inf.errorf(s.P, "%s", err)
					continue
				}
				pt := types.Generalize(inf.envFreeVars(), init.TypeOf().Apply(inf.sub))
				sym := NewSymbol(s.Name, pkg.Path)
				inf.env.bind(s.Name, binding{sym: sym, poly: pt})
				exports.Add(sym, pt)
				semFile.Body = append(semFile.Body, &VariableAssignment{P: s.P, Name: sym, Init: init})
			case *ast.ExpressionStmt:
				expr, err := inf.inferExpr(s.Expr)
				if err != nil {
					inf.errorf(s.P, "%s", err)
					continue
				}
				semFile.Body = append(semFile.Body, &ExpressionStmt{P: s.P, Expr: expr})
			case *ast.ReturnStmt:
				inf.errorf(s.P, "return outside of function body")
			}
		}

		if len(inf.diags) > 0 {
			if errFile == "" {
				errFile = file.Name
			}
			diags = append(diags, inf.diags...)
		}
		semPkg.Files = append(semPkg.Files, semFile)
	}

	// Resolve every node type against the final substitution so the
	// semantic graph carries concrete shapes, not intermediate variables.
	Walk(&typeResolver{sub: inf.sub}, semPkg)
	resolved := NewPackageExports()
	exports.Bindings(func(sym Symbol, pt types.PolyType) {
		resolved.Add(sym, types.PolyType{Vars: pt.Vars, Cons: pt.Cons, Expr: pt.Expr.Apply(inf.sub)})
	})

	if len(diags) > 0 {
		fe := &lyraerr.FileErrors{File: errFile, Diagnostics: diags}
		return nil, nil, &AnalysisError{Err: fe, Exports: resolved, Pkg: semPkg}
	}
	return resolved, semPkg, nil
}

type binding struct {
	sym  Symbol
	poly types.PolyType
}

type scope struct {
	parent *scope
	vars   map[string]binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]binding)}
}

func (s *scope) bind(name string, b binding) {
	s.vars[name] = b
}

func (s *scope) lookup(name string) (binding, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.vars[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

type inferencer struct {
	f     *types.Fresher
	sub   types.Substitution
	env   *scope
	pkg   string
	diags []lyraerr.Diagnostic
}

func (inf *inferencer) errorf(pos ast.Position, format string, args ...any) {
	inf.diags = append(inf.diags, lyraerr.Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (inf *inferencer) unify(l, r types.MonoType) error {
	s2, err := types.Unify(l.Apply(inf.sub), r.Apply(inf.sub), inf.f)
	if err != nil {
		return err
	}
	inf.sub = inf.sub.Compose(s2)
	return nil
}

func (inf *inferencer) envFreeVars() map[types.Tvar]bool {
	free := make(map[types.Tvar]bool)
	for sc := inf.env; sc != nil; sc = sc.parent {
		for _, b := range sc.vars {
			for v := range types.FreeVars(b.poly.Expr.Apply(inf.sub)) {
				free[v] = true
			}
		}
	}
	return free
}

func (inf *inferencer) inferExpr(e ast.Expression) (Expression, error) {
	switch x := e.(type) {
	case *ast.Identifier:
		b, ok := inf.env.lookup(x.Name)
		if !ok {
			return nil, fmt.Errorf("undefined identifier %q", x.Name)
		}
		return &IdentifierExpr{P: x.P, Name: b.sym, Typ: types.Instantiate(b.poly, inf.f)}, nil

	case *ast.IntegerLit:
		return &IntegerLit{P: x.P, Value: x.Value}, nil
	case *ast.FloatLit:
		return &FloatLit{P: x.P, Value: x.Value}, nil
	case *ast.StringLit:
		return &StringLit{P: x.P, Value: x.Value}, nil
	case *ast.BooleanLit:
		return &BooleanLit{P: x.P, Value: x.Value}, nil

	case *ast.ParenExpr:
		return inf.inferExpr(x.Expr)

	case *ast.UnaryExpr:
		operand, err := inf.inferExpr(x.Expr)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{P: x.P, Op: x.Op, Expr: operand, Typ: operand.TypeOf()}, nil

	case *ast.BinaryExpr:
		left, err := inf.inferExpr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := inf.inferExpr(x.Right)
		if err != nil {
			return nil, err
		}
		if err := inf.unify(left.TypeOf(), right.TypeOf()); err != nil {
			return nil, fmt.Errorf("operator %s: %w", x.Op, err)
		}
		typ := left.TypeOf()
		switch x.Op {
		case "==", "!=", "<", "<=", ">", ">=":
			typ = types.Bool
		}
		return &BinaryExpr{P: x.P, Op: x.Op, Left: left, Right: right, Typ: typ}, nil

	case *ast.MemberExpr:
		object, err := inf.inferExpr(x.Object)
		if err != nil {
			return nil, err
		}
		field := inf.f.Fresh()
		row := &types.Record{
			Props: []types.Property{{K: types.ConcreteLabel(x.Property), V: field}},
			Tail:  inf.f.Fresh(),
		}
		if err := inf.unify(object.TypeOf(), row); err != nil {
			return nil, fmt.Errorf("member %s: %w", x.Property, err)
		}
		return &MemberExpr{P: x.P, Object: object, Property: x.Property, Typ: field}, nil

	case *ast.CallExpr:
		callee, err := inf.inferExpr(x.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]*Property, 0, len(x.Args))
		req := make([]types.FuncParam, 0, len(x.Args))
		for _, arg := range x.Args {
			value, err := inf.inferExpr(arg.Value)
			if err != nil {
				return nil, err
			}
			args = append(args, &Property{P: arg.P, Key: arg.Key, Value: value})
			req = append(req, types.FuncParam{Name: arg.Key, V: value.TypeOf()})
		}
		retn := inf.f.Fresh()
		if err := inf.unify(callee.TypeOf(), &types.Function{Req: req, Retn: retn}); err != nil {
			return nil, err
		}
		return &CallExpr{P: x.P, Callee: callee, Args: args, Typ: retn}, nil

	case *ast.ObjectExpr:
		props := make([]*Property, 0, len(x.Properties))
		typProps := make([]types.Property, 0, len(x.Properties))
		for _, p := range x.Properties {
			value, err := inf.inferExpr(p.Value)
			if err != nil {
				return nil, err
			}
			props = append(props, &Property{P: p.P, Key: p.Key, Value: value})
			typProps = append(typProps, types.Property{K: types.ConcreteLabel(p.Key), V: value.TypeOf()})
		}
		return &ObjectExpr{P: x.P, Properties: props, Typ: types.NewRecord(typProps, nil)}, nil

	case *ast.FunctionExpr:
		return inf.inferFunction(x)
	}
	return nil, fmt.Errorf("unsupported expression")
}

func (inf *inferencer) inferFunction(x *ast.FunctionExpr) (Expression, error) {
	inf.env = newScope(inf.env)
	defer func() { inf.env = inf.env.parent }()

	params := make([]*FunctionParam, 0, len(x.Params))
	var req, opt []types.FuncParam
	for _, p := range x.Params {
		tv := inf.f.Fresh()
		inf.env.bind(p.Name, binding{sym: NewSymbol(p.Name, ""), poly: types.PolyType{Expr: tv}})
		param := &FunctionParam{P: p.P, Key: p.Name}
		if p.Default != nil {
			def, err := inf.inferExpr(p.Default)
			if err != nil {
				return nil, err
			}
			if err := inf.unify(tv, def.TypeOf()); err != nil {
				return nil, fmt.Errorf("default for parameter %q: %w", p.Name, err)
			}
			param.Default = def
			opt = append(opt, types.FuncParam{Name: p.Name, V: tv})
		} else {
			req = append(req, types.FuncParam{Name: p.Name, V: tv})
		}
		params = append(params, param)
	}

	var body []Statement
	var retn types.MonoType
	for _, stmt := range x.Body {
		switch s := stmt.(type) {
		case *ast.VariableAssignment:
			init, err := inf.inferExpr(s.Init)
			if err != nil {
				return nil, err
			}
			sym := NewSymbol(s.Name, "")
			inf.env.bind(s.Name, binding{sym: sym, poly: types.PolyType{Expr: init.TypeOf()}})
			body = append(body, &VariableAssignment{P: s.P, Name: sym, Init: init})
		case *ast.ReturnStmt:
			arg, err := inf.inferExpr(s.Argument)
			if err != nil {
				return nil, err
			}
			retn = arg.TypeOf()
			body = append(body, &Return{P: s.P, Argument: arg})
		case *ast.ExpressionStmt:
			expr, err := inf.inferExpr(s.Expr)
			if err != nil {
				return nil, err
			}
			body = append(body, &ExpressionStmt{P: s.P, Expr: expr})
		default:
			return nil, fmt.Errorf("unsupported statement in function body")
		}
	}
	if retn == nil {
		return nil, fmt.Errorf("function body has no return")
	}

	return &FunctionExpr{
		P:      x.P,
		Params: params,
		Body:   body,
		Typ:    &types.Function{Req: req, Opt: opt, Retn: retn},
	}, nil
}

// typeResolver applies the final substitution to every typed node.
type typeResolver struct {
	sub types.Substitution
}

func (r *typeResolver) Visit(Node) bool { return true }

func (r *typeResolver) Done(node Node) {
	switch n := node.(type) {
	case *IdentifierExpr:
		n.Typ = n.Typ.Apply(r.sub)
	case *UnaryExpr:
		n.Typ = n.Typ.Apply(r.sub)
	case *BinaryExpr:
		n.Typ = n.Typ.Apply(r.sub)
	case *MemberExpr:
		n.Typ = n.Typ.Apply(r.sub)
	case *CallExpr:
		n.Typ = n.Typ.Apply(r.sub)
	case *ObjectExpr:
		n.Typ = n.Typ.Apply(r.sub)
	case *FunctionExpr:
		n.Typ = n.Typ.Apply(r.sub)
	}
}
