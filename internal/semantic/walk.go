package semantic

// Node is any semantic graph node reachable from a Package.
type Node any

// Visitor is called around every node during a Walk. Visit fires before
// a node's children are walked; returning false prunes the subtree and
// skips Done. Done fires after the children, giving post-order traversal.
type Visitor interface {
	Visit(Node) bool
	Done(Node)
}

// Walk traverses the semantic graph rooted at node.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if !v.Visit(node) {
		return
	}
	switch n := node.(type) {
	case *Package:
		for _, f := range n.Files {
			Walk(v, f)
		}
	case *File:
		for _, s := range n.Body {
			Walk(v, s)
		}
	case *VariableAssignment:
		Walk(v, n.Init)
	case *Return:
		Walk(v, n.Argument)
	case *ExpressionStmt:
		Walk(v, n.Expr)
	case *UnaryExpr:
		Walk(v, n.Expr)
	case *BinaryExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *MemberExpr:
		Walk(v, n.Object)
	case *CallExpr:
		Walk(v, n.Callee)
		for _, arg := range n.Args {
			Walk(v, arg.Value)
		}
	case *ObjectExpr:
		for _, p := range n.Properties {
			Walk(v, p.Value)
		}
	case *FunctionExpr:
		for _, p := range n.Params {
			Walk(v, p.Default)
		}
		for _, s := range n.Body {
			Walk(v, s)
		}
	}
	v.Done(node)
}
