package tree

// WalkFunc is called for every visited node. Returning a non-nil error
// stops the walk and Walk returns that error.
type WalkFunc func(n *Node) error

// Walk visits root and its descendants in document order. Containers are
// visited too.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	if err := fn(root); err != nil {
		return err
	}
	for _, c := range root.Children {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// FindAll returns every real node under root, root included, for which
// pred returns true, in document order.
func FindAll(root *Node, pred func(*Node) bool) []*Node {
	var out []*Node
	_ = Walk(root, func(n *Node) error {
		if !n.IsContainer() && pred(n) {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// OfKind returns a predicate matching nodes of kind.
func OfKind(kind string) func(*Node) bool {
	return func(n *Node) bool {
		return n.Kind == kind
	}
}
